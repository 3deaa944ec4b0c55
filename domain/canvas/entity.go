package canvas

// GraphNode is a renderable node in the canvas scene
type GraphNode struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Label      string         `json:"label"`
	Community  *int           `json:"community,omitempty"`
	Style      NodeStyle      `json:"style"`
	Properties map[string]any `json:"properties,omitempty"`
}

// GraphEdge is a renderable edge in the canvas scene. Source and Target
// always refer to nodes present in the same scene.
type GraphEdge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   string   `json:"type"`
	Weight *float64 `json:"weight,omitempty"`
}

// Scene is the canvas-ready graph with its lookup indices. Building a
// scene is deterministic: the same input always yields the same output.
type Scene struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`

	// NodeIndex maps node id to its position in Nodes
	NodeIndex map[string]int `json:"nodeIndex"`

	// TypeCounts maps node type to its node count
	TypeCounts map[string]int `json:"typeCounts"`

	// Stats from the build pass
	DuplicateNodes int `json:"duplicateNodes"`
	DuplicateEdges int `json:"duplicateEdges"`
	DanglingEdges  int `json:"danglingEdges"`
}
