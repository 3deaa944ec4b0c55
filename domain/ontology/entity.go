package ontology

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Property value kinds a declared property may take. Values are validated
// as tagged variants at the compliance boundary.
const (
	PropertyString  = "string"
	PropertyNumber  = "number"
	PropertyBoolean = "boolean"
	PropertyList    = "list"
	PropertyNull    = "null"
)

// Wildcard matches any entity type in relation endpoint declarations.
const Wildcard = "*"

// PropertyDef declares a single property on an entity or relation type
type PropertyDef struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Required   bool   `json:"required"`
	Searchable bool   `json:"searchable"`
}

// EntityType is a named category of node with a property definition
type EntityType struct {
	Name                 string        `json:"name"`
	Label                string        `json:"label"`
	Description          string        `json:"description,omitempty"`
	Color                string        `json:"color,omitempty"`
	SharedAcrossProjects bool          `json:"sharedAcrossProjects"`
	Properties           []PropertyDef `json:"properties"`
}

// RelationType is a named category of edge with endpoint constraints.
// FromTypes/ToTypes entries reference entity type names; the wildcard "*"
// matches any type. Endpoint references to undeclared entity types are
// reported by compliance, not rejected, since graph data may lead the
// schema.
type RelationType struct {
	Name       string        `json:"name"`
	Label      string        `json:"label,omitempty"`
	FromTypes  []string      `json:"fromTypes"`
	ToTypes    []string      `json:"toTypes"`
	Properties []PropertyDef `json:"properties"`
}

// QueryPattern is a reusable graph query template
type QueryPattern struct {
	ID          string `json:"id"`
	Cypher      string `json:"cypher"`
	Description string `json:"description"`
}

// OntologySchema is the declared schema: versioned entity and relation
// types plus query patterns. The SchemaStore is the sole writer.
type OntologySchema struct {
	Version       int                     `json:"version"`
	EntityTypes   map[string]EntityType   `json:"entityTypes"`
	RelationTypes map[string]RelationType `json:"relationTypes"`
	QueryPatterns []QueryPattern          `json:"queryPatterns"`
	CreatedAt     time.Time               `json:"createdAt"`
}

// NewEmptySchema returns a version-1 schema with no types
func NewEmptySchema() *OntologySchema {
	return &OntologySchema{
		Version:       1,
		EntityTypes:   map[string]EntityType{},
		RelationTypes: map[string]RelationType{},
		QueryPatterns: []QueryPattern{},
		CreatedAt:     time.Now(),
	}
}

// Clone returns a deep copy of the schema
func (s *OntologySchema) Clone() *OntologySchema {
	if s == nil {
		return nil
	}
	out := &OntologySchema{
		Version:       s.Version,
		EntityTypes:   make(map[string]EntityType, len(s.EntityTypes)),
		RelationTypes: make(map[string]RelationType, len(s.RelationTypes)),
		QueryPatterns: make([]QueryPattern, len(s.QueryPatterns)),
		CreatedAt:     s.CreatedAt,
	}
	for name, et := range s.EntityTypes {
		et.Properties = append([]PropertyDef(nil), et.Properties...)
		out.EntityTypes[name] = et
	}
	for name, rt := range s.RelationTypes {
		rt.FromTypes = append([]string(nil), rt.FromTypes...)
		rt.ToTypes = append([]string(nil), rt.ToTypes...)
		rt.Properties = append([]PropertyDef(nil), rt.Properties...)
		out.RelationTypes[name] = rt
	}
	copy(out.QueryPatterns, s.QueryPatterns)
	return out
}

// ExtractedEntityType is an observed entity type with its instance count
type ExtractedEntityType struct {
	EntityType
	NodeCount int `json:"nodeCount"`
}

// ExtractedRelationType is an observed relation type with its edge count
type ExtractedRelationType struct {
	RelationType
	EdgeCount int `json:"edgeCount"`
}

// ExtractedOntology is an immutable snapshot of the schema actually
// present in the graph, produced fresh on each observation.
type ExtractedOntology struct {
	EntityTypes   map[string]ExtractedEntityType   `json:"entityTypes"`
	RelationTypes map[string]ExtractedRelationType `json:"relationTypes"`
	ExtractedFrom string                           `json:"extractedFrom"`
	ExtractedAt   time.Time                        `json:"extractedAt"`
}

// OntologyDiff partitions two name sets: the three entity (and relation)
// buckets cover the union of both inputs with no overlaps.
type OntologyDiff struct {
	EntitiesOnlyInA  []string `json:"entitiesOnlyInA"`
	EntitiesOnlyInB  []string `json:"entitiesOnlyInB"`
	EntitiesInBoth   []string `json:"entitiesInBoth"`
	RelationsOnlyInA []string `json:"relationsOnlyInA"`
	RelationsOnlyInB []string `json:"relationsOnlyInB"`
	RelationsInBoth  []string `json:"relationsInBoth"`
}

// ComplianceIssue is one distinct violation class with its occurrence count
type ComplianceIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"` // error > warning > info
	Message  string `json:"message"`
	Count    int    `json:"count,omitempty"`
}

// ComplianceStats are the per-axis classification counters
type ComplianceStats struct {
	TotalNodes                int `json:"totalNodes"`
	ValidNodes                int `json:"validNodes"`
	InvalidNodes              int `json:"invalidNodes"`
	UnknownTypeNodes          int `json:"unknownTypeNodes"`
	TotalRelationships        int `json:"totalRelationships"`
	ValidRelationships        int `json:"validRelationships"`
	InvalidRelationships      int `json:"invalidRelationships"`
	UnknownTypeRelationships  int `json:"unknownTypeRelationships"`
	MissingRequiredProperties int `json:"missingRequiredProperties"`
	InvalidPropertyTypes      int `json:"invalidPropertyTypes"`
}

// ComplianceResult scores graph instances against the declared schema
type ComplianceResult struct {
	Valid  bool              `json:"valid"`
	Score  int               `json:"score"`
	Issues []ComplianceIssue `json:"issues"`
	Stats  ComplianceStats   `json:"stats"`
}

// TypeUsage is one declared or observed type with its live instance count
type TypeUsage struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"` // entity | relation
	Count         int    `json:"count"`
	Declared      bool   `json:"declared"`
	NotInOntology bool   `json:"notInOntology"`
}

// UsageStats summarizes per-type usage including the unused and
// not-in-ontology buckets.
type UsageStats struct {
	Types         []TypeUsage `json:"types"`
	Unused        UnusedTypes `json:"unused"`
	NotInOntology []string    `json:"notInOntology"`
	TotalObjects  int         `json:"totalObjects"`
	TotalEdges    int         `json:"totalEdges"`
}

// UnusedTypes lists declared types with zero live instances
type UnusedTypes struct {
	Entities  []string `json:"entities"`
	Relations []string `json:"relations"`
}

// SchemaRecord is the persisted form of an OntologySchema version in
// kb.ontology_schemas. The current schema is the row with the highest
// version.
type SchemaRecord struct {
	bun.BaseModel `bun:"table:kb.ontology_schemas,alias:os"`

	Version       int             `bun:"version,pk" json:"version"`
	EntityTypes   json.RawMessage `bun:"entity_types,type:jsonb,notnull" json:"entityTypes"`
	RelationTypes json.RawMessage `bun:"relation_types,type:jsonb,notnull" json:"relationTypes"`
	QueryPatterns json.RawMessage `bun:"query_patterns,type:jsonb,notnull" json:"queryPatterns"`
	CreatedAt     time.Time       `bun:"created_at,notnull,default:now()" json:"createdAt"`
}

// ToSchema decodes the record into an in-memory schema
func (r *SchemaRecord) ToSchema() (*OntologySchema, error) {
	s := &OntologySchema{
		Version:       r.Version,
		EntityTypes:   map[string]EntityType{},
		RelationTypes: map[string]RelationType{},
		QueryPatterns: []QueryPattern{},
		CreatedAt:     r.CreatedAt,
	}
	if len(r.EntityTypes) > 0 {
		if err := json.Unmarshal(r.EntityTypes, &s.EntityTypes); err != nil {
			return nil, err
		}
	}
	if len(r.RelationTypes) > 0 {
		if err := json.Unmarshal(r.RelationTypes, &s.RelationTypes); err != nil {
			return nil, err
		}
	}
	if len(r.QueryPatterns) > 0 {
		if err := json.Unmarshal(r.QueryPatterns, &s.QueryPatterns); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewSchemaRecord encodes a schema for persistence
func NewSchemaRecord(s *OntologySchema) (*SchemaRecord, error) {
	entities, err := json.Marshal(s.EntityTypes)
	if err != nil {
		return nil, err
	}
	relations, err := json.Marshal(s.RelationTypes)
	if err != nil {
		return nil, err
	}
	patterns, err := json.Marshal(s.QueryPatterns)
	if err != nil {
		return nil, err
	}
	return &SchemaRecord{
		Version:       s.Version,
		EntityTypes:   entities,
		RelationTypes: relations,
		QueryPatterns: patterns,
		CreatedAt:     s.CreatedAt,
	}, nil
}
