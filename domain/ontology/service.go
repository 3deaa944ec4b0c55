package ontology

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/uptrace/bun"

	"github.com/ontoscope/ontoscope/domain/graph"
	"github.com/ontoscope/ontoscope/internal/config"
	"github.com/ontoscope/ontoscope/internal/database"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// Service orchestrates the schema store, observer, diff engine and
// compliance validator.
type Service struct {
	store     *SchemaStore
	observer  *Observer
	graphRepo *graph.Repository
	changes   ChangeLogger
	db        bun.IDB
	cfg       *config.Config
	log       *slog.Logger
}

// NewService creates the ontology service
func NewService(
	store *SchemaStore,
	observer *Observer,
	graphRepo *graph.Repository,
	changes ChangeLogger,
	db bun.IDB,
	cfg *config.Config,
	log *slog.Logger,
) *Service {
	return &Service{
		store:     store,
		observer:  observer,
		graphRepo: graphRepo,
		changes:   changes,
		db:        db,
		cfg:       cfg,
		log:       log.With(logger.Scope("ontology")),
	}
}

// Store exposes the schema store for collaborating services
func (s *Service) Store() *SchemaStore {
	return s.store
}

// Observer exposes the graph observer for collaborating services
func (s *Service) Observer() *Observer {
	return s.observer
}

// GetSchema returns the current declared schema snapshot
func (s *Service) GetSchema() *OntologySchema {
	return s.store.Current()
}

// GetStats returns per-type usage stats for the current schema
func (s *Service) GetStats(ctx context.Context) (*UsageStats, error) {
	return s.observer.Usage(ctx, s.store.Current())
}

// ValidateCompliance scans graph instances against the declared schema.
// The scan is bounded by the configured sample size (0 = full scan).
func (s *Service) ValidateCompliance(ctx context.Context) (*ComplianceResult, error) {
	sample := s.cfg.Jobs.ComplianceSampleSize

	objects, err := s.graphRepo.ScanObjects(ctx, sample)
	if err != nil {
		return nil, err
	}
	rels, err := s.graphRepo.ScanRelationships(ctx, sample)
	if err != nil {
		return nil, err
	}

	return Validate(s.store.Current(), objects, rels)
}

// GetDiff extracts the observed ontology and diffs the declared schema
// (side A) against it (side B).
func (s *Service) GetDiff(ctx context.Context) (*OntologyDiff, error) {
	extracted, err := s.observer.Extract(ctx)
	if err != nil {
		return nil, err
	}
	return Diff(s.store.Current().NameSet(), extracted.NameSet())
}

// Extract produces a fresh observed ontology snapshot
func (s *Service) Extract(ctx context.Context) (*ExtractedOntology, error) {
	return s.observer.Extract(ctx)
}

// MergeOptions control how an extracted ontology is folded into the
// declared schema.
type MergeOptions struct {
	MergeProperties bool `json:"mergeProperties"`
	MergeEndpoints  bool `json:"mergeEndpoints"`
	Save            bool `json:"save"`
}

// MergeSummary reports what a merge changed
type MergeSummary struct {
	AddedEntities     []string `json:"addedEntities"`
	AddedRelations    []string `json:"addedRelations"`
	ModifiedEntities  []string `json:"modifiedEntities"`
	ModifiedRelations []string `json:"modifiedRelations"`
	Saved             bool     `json:"saved"`
}

// Merge folds an extracted ontology into the declared schema. New types
// are always added; MergeProperties unions property definitions and
// MergeEndpoints unions relation endpoint sets for types present on both
// sides. Without Save the merged schema is returned as a preview and
// nothing is persisted.
func (s *Service) Merge(ctx context.Context, extracted *ExtractedOntology, opts MergeOptions) (*OntologySchema, *MergeSummary, error) {
	if extracted == nil || extracted.EntityTypes == nil || extracted.RelationTypes == nil {
		extractedFresh, err := s.observer.Extract(ctx)
		if err != nil {
			return nil, nil, err
		}
		extracted = extractedFresh
	}

	summary := &MergeSummary{
		AddedEntities:     []string{},
		AddedRelations:    []string{},
		ModifiedEntities:  []string{},
		ModifiedRelations: []string{},
	}

	apply := func(next *OntologySchema) error {
		for name, ext := range extracted.EntityTypes {
			declared, exists := next.EntityTypes[name]
			if !exists {
				next.EntityTypes[name] = ext.EntityType
				summary.AddedEntities = append(summary.AddedEntities, name)
				continue
			}
			if opts.MergeProperties {
				merged, changed := unionProperties(declared.Properties, ext.Properties)
				if changed {
					declared.Properties = merged
					next.EntityTypes[name] = declared
					summary.ModifiedEntities = append(summary.ModifiedEntities, name)
				}
			}
		}

		for name, ext := range extracted.RelationTypes {
			declared, exists := next.RelationTypes[name]
			if !exists {
				next.RelationTypes[name] = ext.RelationType
				summary.AddedRelations = append(summary.AddedRelations, name)
				continue
			}
			modified := false
			if opts.MergeEndpoints {
				if merged, changed := unionNames(declared.FromTypes, ext.FromTypes); changed {
					declared.FromTypes = merged
					modified = true
				}
				if merged, changed := unionNames(declared.ToTypes, ext.ToTypes); changed {
					declared.ToTypes = merged
					modified = true
				}
			}
			if opts.MergeProperties {
				if merged, changed := unionProperties(declared.Properties, ext.Properties); changed {
					declared.Properties = merged
					modified = true
				}
			}
			if modified {
				next.RelationTypes[name] = declared
				summary.ModifiedRelations = append(summary.ModifiedRelations, name)
			}
		}

		sort.Strings(summary.AddedEntities)
		sort.Strings(summary.AddedRelations)
		sort.Strings(summary.ModifiedEntities)
		sort.Strings(summary.ModifiedRelations)
		return nil
	}

	if !opts.Save {
		preview := s.store.Current()
		if err := apply(preview); err != nil {
			return nil, nil, err
		}
		return preview, summary, nil
	}

	tx, err := database.BeginSafeTx(ctx, s.db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback()

	staged, err := s.store.Stage(ctx, tx, apply)
	if err != nil {
		return nil, nil, err
	}

	err = s.changes.LogChange(ctx, tx, ChangeEntry{
		ChangeType: "merge",
		TargetType: "schema",
		TargetName: fmt.Sprintf("v%d", staged.Next().Version),
		Diff: map[string]any{
			"added":    append(append([]string{}, summary.AddedEntities...), summary.AddedRelations...),
			"removed":  []string{},
			"modified": append(append([]string{}, summary.ModifiedEntities...), summary.ModifiedRelations...),
		},
		Reason: "merge extracted ontology",
		Source: extracted.ExtractedFrom,
	})
	if err != nil {
		staged.Discard()
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		staged.Discard()
		return nil, nil, fmt.Errorf("failed to commit merge: %w", err)
	}
	staged.Publish()
	summary.Saved = true

	return staged.Next(), summary, nil
}

// FindUnused returns declared types with zero live instances
func (s *Service) FindUnused(ctx context.Context) (*UnusedTypes, error) {
	return s.observer.FindUnused(ctx, s.store.Current())
}

// RemoveUnused removes declared types with zero live instances from the
// schema, recording one audit entry per removed type.
func (s *Service) RemoveUnused(ctx context.Context) (*UnusedTypes, error) {
	unused, err := s.FindUnused(ctx)
	if err != nil {
		return nil, err
	}
	if len(unused.Entities) == 0 && len(unused.Relations) == 0 {
		return unused, nil
	}

	tx, err := database.BeginSafeTx(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}
	defer tx.Rollback()

	var removed []ChangeEntry
	staged, err := s.store.Stage(ctx, tx, func(next *OntologySchema) error {
		for _, name := range unused.Entities {
			old := next.EntityTypes[name]
			delete(next.EntityTypes, name)
			removed = append(removed, ChangeEntry{
				ChangeType:    "remove",
				TargetType:    "entity",
				TargetName:    name,
				OldDefinition: old,
				Reason:        "unused type cleanup",
				Source:        "cleanup",
			})
		}
		for _, name := range unused.Relations {
			old := next.RelationTypes[name]
			delete(next.RelationTypes, name)
			removed = append(removed, ChangeEntry{
				ChangeType:    "remove",
				TargetType:    "relation",
				TargetName:    name,
				OldDefinition: old,
				Reason:        "unused type cleanup",
				Source:        "cleanup",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, entry := range removed {
		if err := s.changes.LogChange(ctx, tx, entry); err != nil {
			staged.Discard()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		staged.Discard()
		return nil, fmt.Errorf("failed to commit cleanup: %w", err)
	}
	staged.Publish()

	s.log.Info("removed unused types",
		slog.Int("entities", len(unused.Entities)),
		slog.Int("relations", len(unused.Relations)),
	)
	return unused, nil
}

// unionProperties merges extracted property defs into declared ones by
// name, preserving declared definitions on conflict.
func unionProperties(declared, extracted []PropertyDef) ([]PropertyDef, bool) {
	seen := make(map[string]struct{}, len(declared))
	for _, p := range declared {
		seen[p.Name] = struct{}{}
	}
	merged := append([]PropertyDef(nil), declared...)
	changed := false
	for _, p := range extracted {
		if _, ok := seen[p.Name]; !ok {
			merged = append(merged, p)
			seen[p.Name] = struct{}{}
			changed = true
		}
	}
	return merged, changed
}

// unionNames merges two name lists preserving declared order, appending
// new names sorted.
func unionNames(declared, extracted []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(declared))
	for _, n := range declared {
		seen[n] = struct{}{}
	}
	var added []string
	for _, n := range extracted {
		if _, ok := seen[n]; !ok {
			added = append(added, n)
			seen[n] = struct{}{}
		}
	}
	if len(added) == 0 {
		return declared, false
	}
	sort.Strings(added)
	return append(append([]string(nil), declared...), added...), true
}
