package canvas

import "fmt"

// Renderer names
const (
	RendererCosmograph = "cosmograph"
	RendererForceGraph = "forcegraph"
)

// Handle is a renderer-specific payload ready for the client library
type Handle struct {
	Renderer string `json:"renderer"`
	Payload  any    `json:"payload"`
}

// Renderer builds a client payload from a scene. Variants differ only
// in payload shape; selection happens once at wiring time.
type Renderer interface {
	Render(scene *Scene) (*Handle, error)
}

// NewRenderer selects a renderer variant by name
func NewRenderer(name string) (Renderer, error) {
	switch name {
	case RendererCosmograph:
		return &cosmographRenderer{}, nil
	case RendererForceGraph:
		return &forceGraphRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown canvas renderer: %s", name)
	}
}

// cosmographRenderer emits flat point and link lists keyed by index,
// the shape the cosmograph client consumes.
type cosmographRenderer struct{}

type cosmographPayload struct {
	PointIDs    []string  `json:"pointIds"`
	PointColors []string  `json:"pointColors"`
	PointSizes  []int     `json:"pointSizes"`
	PointLabels []string  `json:"pointLabels"`
	LinkSources []int     `json:"linkSources"`
	LinkTargets []int     `json:"linkTargets"`
	LinkWeights []float64 `json:"linkWeights"`
}

func (r *cosmographRenderer) Render(scene *Scene) (*Handle, error) {
	payload := cosmographPayload{
		PointIDs:    make([]string, 0, len(scene.Nodes)),
		PointColors: make([]string, 0, len(scene.Nodes)),
		PointSizes:  make([]int, 0, len(scene.Nodes)),
		PointLabels: make([]string, 0, len(scene.Nodes)),
		LinkSources: make([]int, 0, len(scene.Edges)),
		LinkTargets: make([]int, 0, len(scene.Edges)),
		LinkWeights: make([]float64, 0, len(scene.Edges)),
	}

	for _, node := range scene.Nodes {
		payload.PointIDs = append(payload.PointIDs, node.ID)
		payload.PointColors = append(payload.PointColors, node.Style.Color)
		payload.PointSizes = append(payload.PointSizes, node.Style.Size)
		payload.PointLabels = append(payload.PointLabels, node.Label)
	}

	for _, edge := range scene.Edges {
		src, ok := scene.NodeIndex[edge.Source]
		if !ok {
			return nil, fmt.Errorf("edge %s references unknown source %s", edge.ID, edge.Source)
		}
		dst, ok := scene.NodeIndex[edge.Target]
		if !ok {
			return nil, fmt.Errorf("edge %s references unknown target %s", edge.ID, edge.Target)
		}
		weight := 1.0
		if edge.Weight != nil {
			weight = *edge.Weight
		}
		payload.LinkSources = append(payload.LinkSources, src)
		payload.LinkTargets = append(payload.LinkTargets, dst)
		payload.LinkWeights = append(payload.LinkWeights, weight)
	}

	return &Handle{Renderer: RendererCosmograph, Payload: payload}, nil
}

// forceGraphRenderer emits the node/link object shape the force-graph
// client consumes.
type forceGraphRenderer struct{}

type forceGraphNode struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
	Color string `json:"color"`
	Val   int    `json:"val"`
}

type forceGraphLink struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Label  string   `json:"label"`
	Weight *float64 `json:"weight,omitempty"`
}

type forceGraphPayload struct {
	Nodes []forceGraphNode `json:"nodes"`
	Links []forceGraphLink `json:"links"`
}

func (r *forceGraphRenderer) Render(scene *Scene) (*Handle, error) {
	payload := forceGraphPayload{
		Nodes: make([]forceGraphNode, 0, len(scene.Nodes)),
		Links: make([]forceGraphLink, 0, len(scene.Edges)),
	}

	for _, node := range scene.Nodes {
		payload.Nodes = append(payload.Nodes, forceGraphNode{
			ID:    node.ID,
			Name:  node.Label,
			Group: node.Type,
			Color: node.Style.Color,
			Val:   node.Style.Size,
		})
	}

	for _, edge := range scene.Edges {
		payload.Links = append(payload.Links, forceGraphLink{
			Source: edge.Source,
			Target: edge.Target,
			Label:  edge.Type,
			Weight: edge.Weight,
		})
	}

	return &Handle{Renderer: RendererForceGraph, Payload: payload}, nil
}
