package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ontoscope/ontoscope/domain/ontology"
	"github.com/ontoscope/ontoscope/domain/suggestions"
	"github.com/ontoscope/ontoscope/internal/config"
	"github.com/ontoscope/ontoscope/pkg/llm"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// Runner executes the analysis job bodies. Each Run* method returns a
// results map that lands in the execution log.
type Runner struct {
	ontology    *ontology.Service
	suggestions *suggestions.Service
	provider    llm.Provider
	cfg         *config.Config
	log         *slog.Logger
}

// NewRunner creates the job runner
func NewRunner(
	ontologySvc *ontology.Service,
	suggestionsSvc *suggestions.Service,
	provider llm.Provider,
	cfg *config.Config,
	log *slog.Logger,
) *Runner {
	return &Runner{
		ontology:    ontologySvc,
		suggestions: suggestionsSvc,
		provider:    provider,
		cfg:         cfg,
		log:         log.With(logger.Scope("analysis")),
	}
}

// Run dispatches a job type to its body
func (r *Runner) Run(ctx context.Context, jobType string) (map[string]any, error) {
	switch jobType {
	case JobFull:
		return r.runFull(ctx)
	case JobInference:
		return r.runInference(ctx)
	case JobDedup:
		return r.runDedup(ctx)
	case JobAutoApprove:
		return r.runAutoApprove(ctx)
	case JobGaps:
		return r.runGaps(ctx)
	default:
		return nil, fmt.Errorf("unknown job type: %s", jobType)
	}
}

// runFull extracts the observed ontology, diffs it against the declared
// schema, validates compliance, and files gap suggestions.
func (r *Runner) runFull(ctx context.Context) (map[string]any, error) {
	extracted, err := r.ontology.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	diff, err := ontology.Diff(r.ontology.GetSchema().NameSet(), extracted.NameSet())
	if err != nil {
		return nil, fmt.Errorf("diff failed: %w", err)
	}

	compliance, err := r.ontology.ValidateCompliance(ctx)
	if err != nil {
		return nil, fmt.Errorf("compliance validation failed: %w", err)
	}

	created, skipped, err := r.fileGapSuggestions(ctx, diff, extracted)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"extractedEntityTypes":   len(extracted.EntityTypes),
		"extractedRelationTypes": len(extracted.RelationTypes),
		"undeclaredEntities":     len(diff.EntitiesOnlyInB),
		"undeclaredRelations":    len(diff.RelationsOnlyInB),
		"complianceScore":        compliance.Score,
		"complianceValid":        compliance.Valid,
		"complianceIssues":       len(compliance.Issues),
		"suggestionsCreated":     created,
		"suggestionsSkipped":     skipped,
	}, nil
}

// runGaps files pending suggestions for observed types missing from the
// declared schema.
func (r *Runner) runGaps(ctx context.Context) (map[string]any, error) {
	extracted, err := r.ontology.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	diff, err := ontology.Diff(r.ontology.GetSchema().NameSet(), extracted.NameSet())
	if err != nil {
		return nil, fmt.Errorf("diff failed: %w", err)
	}

	created, skipped, err := r.fileGapSuggestions(ctx, diff, extracted)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"undeclaredEntities":  len(diff.EntitiesOnlyInB),
		"undeclaredRelations": len(diff.RelationsOnlyInB),
		"suggestionsCreated":  created,
		"suggestionsSkipped":  skipped,
	}, nil
}

// fileGapSuggestions creates one pending suggestion per undeclared
// observed type, skipping names that already have a pending suggestion.
func (r *Runner) fileGapSuggestions(ctx context.Context, diff *ontology.OntologyDiff, extracted *ontology.ExtractedOntology) (created, skipped int, err error) {
	repo := r.suggestions.Repo()

	for _, name := range diff.EntitiesOnlyInB {
		exists, err := repo.HasPendingFor(ctx, suggestions.KindEntity, name)
		if err != nil {
			return created, skipped, err
		}
		if exists {
			skipped++
			continue
		}

		count := 0
		if ext, ok := extracted.EntityTypes[name]; ok {
			count = ext.NodeCount
		}
		suggestion := &suggestions.OntologySuggestion{
			Kind:       suggestions.KindEntity,
			Name:       name,
			Source:     "gap-detection",
			Confidence: gapConfidence(count),
			Reason:     fmt.Sprintf("observed on %d nodes but not declared", count),
		}
		if err := repo.Create(ctx, suggestion); err != nil {
			return created, skipped, err
		}
		created++
	}

	for _, name := range diff.RelationsOnlyInB {
		exists, err := repo.HasPendingFor(ctx, suggestions.KindRelation, name)
		if err != nil {
			return created, skipped, err
		}
		if exists {
			skipped++
			continue
		}

		count := 0
		var from, to []string
		if ext, ok := extracted.RelationTypes[name]; ok {
			count = ext.EdgeCount
			from = ext.FromTypes
			to = ext.ToTypes
		}
		suggestion := &suggestions.OntologySuggestion{
			Kind:       suggestions.KindRelation,
			Name:       name,
			FromTypes:  from,
			ToTypes:    to,
			Source:     "gap-detection",
			Confidence: gapConfidence(count),
			Reason:     fmt.Sprintf("observed on %d edges but not declared", count),
		}
		if err := repo.Create(ctx, suggestion); err != nil {
			return created, skipped, err
		}
		created++
	}

	return created, skipped, nil
}

// gapConfidence scales with instance count: types backed by more
// instances are more likely real.
func gapConfidence(count int) float64 {
	switch {
	case count >= 100:
		return 0.9
	case count >= 10:
		return 0.7
	case count >= 2:
		return 0.5
	default:
		return 0.3
	}
}

// runDedup reports near-duplicate type names in the declared schema
func (r *Runner) runDedup(ctx context.Context) (map[string]any, error) {
	report := FindDuplicates(r.ontology.GetSchema())

	return map[string]any{
		"entityTypesScanned":   report.EntityTypesScanned,
		"relationTypesScanned": report.RelationTypesScanned,
		"duplicateGroups":      report.Groups,
	}, nil
}

// runAutoApprove approves pending suggestions above the configured
// confidence threshold.
func (r *Runner) runAutoApprove(ctx context.Context) (map[string]any, error) {
	result, err := r.suggestions.AutoApprove(ctx, r.cfg.Jobs.AutoApproveThreshold)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"threshold": r.cfg.Jobs.AutoApproveThreshold,
		"approved":  result.Approved,
		"skipped":   result.Skipped,
	}, nil
}

// proposedSuggestion is the JSON shape the inference prompt asks for
type proposedSuggestion struct {
	Kind       string                 `json:"kind"`
	Name       string                 `json:"name"`
	FromTypes  []string               `json:"fromTypes,omitempty"`
	ToTypes    []string               `json:"toTypes,omitempty"`
	Properties []ontology.PropertyDef `json:"properties,omitempty"`
	Confidence float64                `json:"confidence"`
	Reason     string                 `json:"reason"`
}

// runInference asks the LLM to propose schema improvements from the
// declared schema and the observed ontology. Nothing is stored unless
// the whole response decodes.
func (r *Runner) runInference(ctx context.Context) (map[string]any, error) {
	if r.provider == nil || !r.provider.IsConfigured() {
		r.log.Info("inference skipped, no llm provider configured")
		return map[string]any{"skipped": true, "reason": "llm not configured"}, nil
	}

	extracted, err := r.ontology.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	prompt, err := buildInferencePrompt(r.ontology.GetSchema(), extracted)
	if err != nil {
		return nil, err
	}

	llmCtx, cancel := context.WithTimeout(ctx, r.cfg.LLM.Timeout)
	defer cancel()

	raw, err := r.provider.Complete(llmCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("inference completion failed: %w", err)
	}

	proposed, err := parseInferenceResponse(raw)
	if err != nil {
		return nil, err
	}

	repo := r.suggestions.Repo()
	created, skipped := 0, 0
	for _, p := range proposed {
		exists, err := repo.HasPendingFor(ctx, p.Kind, p.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			skipped++
			continue
		}

		var props json.RawMessage
		if len(p.Properties) > 0 {
			props, err = json.Marshal(p.Properties)
			if err != nil {
				return nil, fmt.Errorf("failed to encode proposed properties: %w", err)
			}
		}
		suggestion := &suggestions.OntologySuggestion{
			Kind:       p.Kind,
			Name:       p.Name,
			FromTypes:  p.FromTypes,
			ToTypes:    p.ToTypes,
			Properties: props,
			Source:     "llm-inference",
			Confidence: p.Confidence,
			Reason:     p.Reason,
		}
		if err := repo.Create(ctx, suggestion); err != nil {
			return nil, err
		}
		created++
	}

	r.log.Info("inference completed",
		slog.Int("proposed", len(proposed)),
		slog.Int("created", created),
		slog.Int("skipped", skipped),
	)

	return map[string]any{
		"proposed": len(proposed),
		"created":  created,
		"skipped":  skipped,
	}, nil
}

func buildInferencePrompt(schema *ontology.OntologySchema, extracted *ontology.ExtractedOntology) (string, error) {
	declaredJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}
	observedJSON, err := json.MarshalIndent(extracted, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode extracted ontology: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are an ontology engineer reviewing a knowledge graph schema.\n\n")
	b.WriteString("Declared schema:\n")
	b.Write(declaredJSON)
	b.WriteString("\n\nObserved ontology (extracted from live graph data):\n")
	b.Write(observedJSON)
	b.WriteString("\n\nPropose improvements to the declared schema: missing types, ")
	b.WriteString("missing properties, or relation endpoint constraints the data supports.\n")
	b.WriteString("Respond with ONLY a JSON array of objects with this shape:\n")
	b.WriteString(`[{"kind":"entity|relation","name":"TypeName","fromTypes":[],"toTypes":[],` +
		`"properties":[{"name":"p","type":"string","required":false}],` +
		`"confidence":0.8,"reason":"why"}]` + "\n")
	b.WriteString("Return an empty array if the schema already fits the data.\n")
	return b.String(), nil
}

// parseInferenceResponse decodes the model output, tolerating markdown
// code fences and surrounding prose. A response that does not decode as
// a whole yields no suggestions.
func parseInferenceResponse(raw string) ([]proposedSuggestion, error) {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	// Clamp to the outermost array in case the model added prose
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("inference response contains no JSON array")
	}
	text = text[start : end+1]

	var proposed []proposedSuggestion
	if err := json.Unmarshal([]byte(text), &proposed); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}

	valid := make([]proposedSuggestion, 0, len(proposed))
	for _, p := range proposed {
		if p.Name == "" {
			continue
		}
		if p.Kind != suggestions.KindEntity && p.Kind != suggestions.KindRelation {
			continue
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			p.Confidence = 0.5
		}
		valid = append(valid, p)
	}
	return valid, nil
}
