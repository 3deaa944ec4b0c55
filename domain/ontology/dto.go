package ontology

// MergeRequest is the body for POST /api/ontology/merge. When Extracted is
// omitted a fresh snapshot is taken from the live graph.
type MergeRequest struct {
	Extracted       *ExtractedOntology `json:"extracted,omitempty"`
	MergeProperties bool               `json:"mergeProperties"`
	MergeEndpoints  bool               `json:"mergeEndpoints"`
	Save            bool               `json:"save"`
}

// MergeResponse is the result of a merge preview or save
type MergeResponse struct {
	Schema  *OntologySchema `json:"schema"`
	Summary *MergeSummary   `json:"summary"`
}

// EntityTypesResponse wraps the entity type map
type EntityTypesResponse struct {
	Version     int                   `json:"version"`
	EntityTypes map[string]EntityType `json:"entityTypes"`
}

// RelationTypesResponse wraps the relation type map
type RelationTypesResponse struct {
	Version       int                     `json:"version"`
	RelationTypes map[string]RelationType `json:"relationTypes"`
}

// QueryPatternsResponse wraps the query pattern list
type QueryPatternsResponse struct {
	Version       int            `json:"version"`
	QueryPatterns []QueryPattern `json:"queryPatterns"`
}
