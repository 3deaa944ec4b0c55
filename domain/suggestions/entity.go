package suggestions

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"

	"github.com/ontoscope/ontoscope/domain/ontology"
)

// Suggestion lifecycle states. Transitions are one-way and terminal:
// pending -> approved or pending -> rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Suggestion kinds
const (
	KindEntity   = "entity"
	KindRelation = "relation"
)

// OntologySuggestion represents a row in kb.ontology_suggestions: a
// proposed addition or change to the declared schema awaiting approval.
type OntologySuggestion struct {
	bun.BaseModel `bun:"table:kb.ontology_suggestions,alias:osg"`

	ID         string          `bun:"id,pk,type:uuid" json:"id"`
	Kind       string          `bun:"kind,notnull" json:"kind"` // entity | relation
	Name       string          `bun:"name,notnull" json:"name"`
	FromTypes  []string        `bun:"from_types,array" json:"fromTypes,omitempty"`
	ToTypes    []string        `bun:"to_types,array" json:"toTypes,omitempty"`
	Properties json.RawMessage `bun:"properties,type:jsonb" json:"properties,omitempty"`
	Source     string          `bun:"source,notnull" json:"source"`
	Confidence float64         `bun:"confidence,notnull" json:"confidence"`
	Status     string          `bun:"status,notnull" json:"status"`
	Reason     string          `bun:"reason,notnull" json:"reason,omitempty"`
	CreatedAt  time.Time       `bun:"created_at,notnull,default:now()" json:"createdAt"`
	ResolvedAt *time.Time      `bun:"resolved_at" json:"resolvedAt,omitempty"`
}

// Terminal reports whether the suggestion has reached a final state
func (s *OntologySuggestion) Terminal() bool {
	return s.Status == StatusApproved || s.Status == StatusRejected
}

// PropertyDefs decodes the proposed property definitions
func (s *OntologySuggestion) PropertyDefs() []ontology.PropertyDef {
	if len(s.Properties) == 0 {
		return []ontology.PropertyDef{}
	}
	var defs []ontology.PropertyDef
	if err := json.Unmarshal(s.Properties, &defs); err != nil {
		return []ontology.PropertyDef{}
	}
	return defs
}

// EntityType builds the declared entity type a kind=entity suggestion
// proposes.
func (s *OntologySuggestion) EntityType() ontology.EntityType {
	return ontology.EntityType{
		Name:       s.Name,
		Label:      s.Name,
		Properties: s.PropertyDefs(),
	}
}

// RelationType builds the declared relation type a kind=relation
// suggestion proposes.
func (s *OntologySuggestion) RelationType() ontology.RelationType {
	from := s.FromTypes
	if from == nil {
		from = []string{}
	}
	to := s.ToTypes
	if to == nil {
		to = []string{}
	}
	return ontology.RelationType{
		Name:       s.Name,
		FromTypes:  from,
		ToTypes:    to,
		Properties: s.PropertyDefs(),
	}
}

// OntologyChange represents a row in kb.ontology_changes: the append-only
// ledger of applied schema mutations. Rows are never updated or deleted.
type OntologyChange struct {
	bun.BaseModel `bun:"table:kb.ontology_changes,alias:oc"`

	ID            string          `bun:"id,pk,type:uuid" json:"id"`
	ChangeType    string          `bun:"change_type,notnull" json:"changeType"`
	TargetType    string          `bun:"target_type,notnull" json:"targetType"`
	TargetName    string          `bun:"target_name,notnull" json:"targetName"`
	OldDefinition json.RawMessage `bun:"old_definition,type:jsonb" json:"oldDefinition,omitempty"`
	NewDefinition json.RawMessage `bun:"new_definition,type:jsonb" json:"newDefinition,omitempty"`
	Diff          json.RawMessage `bun:"diff,type:jsonb" json:"diff,omitempty"`
	Reason        string          `bun:"reason,notnull" json:"reason,omitempty"`
	Source        string          `bun:"source,notnull" json:"source,omitempty"`
	ChangedAt     time.Time       `bun:"changed_at,notnull,default:now()" json:"changedAt"`
	ChangedBy     string          `bun:"changed_by,notnull" json:"changedBy"`
}
