package graph

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// GraphObject represents a row in kb.graph_objects, the observed instance
// store the reconciliation engine reads from.
type GraphObject struct {
	bun.BaseModel `bun:"table:kb.graph_objects,alias:go"`

	ID         string          `bun:"id,pk,type:uuid" json:"id"`
	Type       string          `bun:"type,notnull" json:"type"`
	Key        *string         `bun:"key" json:"key,omitempty"`
	Properties json.RawMessage `bun:"properties,type:jsonb" json:"properties,omitempty"`
	Labels     []string        `bun:"labels,array" json:"labels,omitempty"`
	Community  *int            `bun:"community" json:"community,omitempty"`
	CreatedAt  time.Time       `bun:"created_at,notnull,default:now()" json:"createdAt"`
	UpdatedAt  time.Time       `bun:"updated_at,notnull,default:now()" json:"updatedAt"`
	DeletedAt  *time.Time      `bun:"deleted_at" json:"deletedAt,omitempty"`
}

// PropertyMap decodes the jsonb properties column. A nil or malformed
// column decodes to an empty map.
func (o *GraphObject) PropertyMap() map[string]any {
	if len(o.Properties) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(o.Properties, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// GraphRelationship represents a row in kb.graph_relationships.
type GraphRelationship struct {
	bun.BaseModel `bun:"table:kb.graph_relationships,alias:gr"`

	ID         string          `bun:"id,pk,type:uuid" json:"id"`
	Type       string          `bun:"type,notnull" json:"type"`
	SrcID      string          `bun:"src_id,notnull,type:uuid" json:"srcId"`
	DstID      string          `bun:"dst_id,notnull,type:uuid" json:"dstId"`
	Properties json.RawMessage `bun:"properties,type:jsonb" json:"properties,omitempty"`
	Weight     *float64        `bun:"weight" json:"weight,omitempty"`
	CreatedAt  time.Time       `bun:"created_at,notnull,default:now()" json:"createdAt"`
	DeletedAt  *time.Time      `bun:"deleted_at" json:"deletedAt,omitempty"`
}

// PropertyMap decodes the jsonb properties column.
func (r *GraphRelationship) PropertyMap() map[string]any {
	if len(r.Properties) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(r.Properties, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// GraphMetadata represents kb.graph_metadata, the key/value store the sync
// coordinator pushes the current schema snapshot into.
type GraphMetadata struct {
	bun.BaseModel `bun:"table:kb.graph_metadata,alias:gm"`

	Key       string          `bun:"key,pk" json:"key"`
	Value     json.RawMessage `bun:"value,type:jsonb,notnull" json:"value"`
	UpdatedAt time.Time       `bun:"updated_at,notnull,default:now()" json:"updatedAt"`
}

// EndpointTriple is an observed (source type, relationship type, target
// type) combination with its occurrence count.
type EndpointTriple struct {
	SrcType string `bun:"src_type" json:"srcType"`
	RelType string `bun:"rel_type" json:"relType"`
	DstType string `bun:"dst_type" json:"dstType"`
	Count   int    `bun:"count" json:"count"`
}
