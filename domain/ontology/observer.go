package ontology

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/ontoscope/ontoscope/domain/graph"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// GraphSource is the slice of the instance store the observer reads
type GraphSource interface {
	ObjectCountsByType(ctx context.Context) (map[string]int, error)
	RelationshipCountsByType(ctx context.Context) (map[string]int, error)
	EndpointTriples(ctx context.Context) ([]graph.EndpointTriple, error)
}

// Observer extracts the observed schema from the live graph: the types
// actually present, with instance counts and endpoint combinations. Each
// extraction is a fresh immutable snapshot.
type Observer struct {
	graphRepo GraphSource
	log       *slog.Logger
}

// NewObserver creates a graph observer
func NewObserver(graphRepo GraphSource, log *slog.Logger) *Observer {
	return &Observer{
		graphRepo: graphRepo,
		log:       log.With(logger.Scope("observer")),
	}
}

// Extract queries the live graph and produces an observed ontology
// snapshot: entity types from object counts, relation types from
// relationship counts with endpoint sets from observed triples.
func (o *Observer) Extract(ctx context.Context) (*ExtractedOntology, error) {
	objectCounts, err := o.graphRepo.ObjectCountsByType(ctx)
	if err != nil {
		return nil, err
	}
	relCounts, err := o.graphRepo.RelationshipCountsByType(ctx)
	if err != nil {
		return nil, err
	}
	triples, err := o.graphRepo.EndpointTriples(ctx)
	if err != nil {
		return nil, err
	}

	extracted := &ExtractedOntology{
		EntityTypes:   make(map[string]ExtractedEntityType, len(objectCounts)),
		RelationTypes: make(map[string]ExtractedRelationType, len(relCounts)),
		ExtractedFrom: "graph-instance-store",
		ExtractedAt:   time.Now(),
	}

	for typeName, count := range objectCounts {
		extracted.EntityTypes[typeName] = ExtractedEntityType{
			EntityType: EntityType{
				Name:       typeName,
				Label:      typeName,
				Properties: []PropertyDef{},
			},
			NodeCount: count,
		}
	}

	// Endpoint sets per relation type, from observed triples
	fromSets := map[string]map[string]struct{}{}
	toSets := map[string]map[string]struct{}{}
	for _, t := range triples {
		if fromSets[t.RelType] == nil {
			fromSets[t.RelType] = map[string]struct{}{}
			toSets[t.RelType] = map[string]struct{}{}
		}
		fromSets[t.RelType][t.SrcType] = struct{}{}
		toSets[t.RelType][t.DstType] = struct{}{}
	}

	for typeName, count := range relCounts {
		extracted.RelationTypes[typeName] = ExtractedRelationType{
			RelationType: RelationType{
				Name:       typeName,
				FromTypes:  sortedKeys(fromSets[typeName]),
				ToTypes:    sortedKeys(toSets[typeName]),
				Properties: []PropertyDef{},
			},
			EdgeCount: count,
		}
	}

	o.log.Debug("ontology extracted",
		slog.Int("entity_types", len(extracted.EntityTypes)),
		slog.Int("relation_types", len(extracted.RelationTypes)),
	)
	return extracted, nil
}

// Usage joins observed instance counts onto the declared schema, including
// the unused (declared, zero instances) and notInOntology (observed,
// undeclared) buckets.
func (o *Observer) Usage(ctx context.Context, schema *OntologySchema) (*UsageStats, error) {
	objectCounts, err := o.graphRepo.ObjectCountsByType(ctx)
	if err != nil {
		return nil, err
	}
	relCounts, err := o.graphRepo.RelationshipCountsByType(ctx)
	if err != nil {
		return nil, err
	}

	stats := &UsageStats{
		Types:         []TypeUsage{},
		Unused:        UnusedTypes{Entities: []string{}, Relations: []string{}},
		NotInOntology: []string{},
	}

	for name := range schema.EntityTypes {
		count := objectCounts[name]
		stats.Types = append(stats.Types, TypeUsage{
			Name:     name,
			Kind:     "entity",
			Count:    count,
			Declared: true,
		})
		if count == 0 {
			stats.Unused.Entities = append(stats.Unused.Entities, name)
		}
	}
	for name := range schema.RelationTypes {
		count := relCounts[name]
		stats.Types = append(stats.Types, TypeUsage{
			Name:     name,
			Kind:     "relation",
			Count:    count,
			Declared: true,
		})
		if count == 0 {
			stats.Unused.Relations = append(stats.Unused.Relations, name)
		}
	}

	for name, count := range objectCounts {
		stats.TotalObjects += count
		if _, ok := schema.EntityTypes[name]; !ok {
			stats.Types = append(stats.Types, TypeUsage{
				Name:          name,
				Kind:          "entity",
				Count:         count,
				NotInOntology: true,
			})
			stats.NotInOntology = append(stats.NotInOntology, name)
		}
	}
	for name, count := range relCounts {
		stats.TotalEdges += count
		if _, ok := schema.RelationTypes[name]; !ok {
			stats.Types = append(stats.Types, TypeUsage{
				Name:          name,
				Kind:          "relation",
				Count:         count,
				NotInOntology: true,
			})
			stats.NotInOntology = append(stats.NotInOntology, name)
		}
	}

	sort.Slice(stats.Types, func(i, j int) bool {
		if stats.Types[i].Kind != stats.Types[j].Kind {
			return stats.Types[i].Kind < stats.Types[j].Kind
		}
		return stats.Types[i].Name < stats.Types[j].Name
	})
	sort.Strings(stats.Unused.Entities)
	sort.Strings(stats.Unused.Relations)
	sort.Strings(stats.NotInOntology)

	return stats, nil
}

// FindUnused returns declared types with zero live instances
func (o *Observer) FindUnused(ctx context.Context, schema *OntologySchema) (*UnusedTypes, error) {
	usage, err := o.Usage(ctx, schema)
	if err != nil {
		return nil, err
	}
	return &usage.Unused, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
