package canvas

import (
	"fmt"
	"log/slog"

	"github.com/ontoscope/ontoscope/domain/graph"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// maxLabelLength bounds labels derived from free-text content
const maxLabelLength = 40

// Adapter transforms graph instances into a canvas scene. The transform
// is pure: no I/O, and identical input always yields an identical scene.
type Adapter struct {
	styles *StyleTable
	log    *slog.Logger
}

// NewAdapter creates an adapter with the given style table
func NewAdapter(styles *StyleTable, log *slog.Logger) *Adapter {
	return &Adapter{styles: styles, log: log.With(logger.Scope("canvas"))}
}

// BuildScene produces a canvas scene from graph objects and
// relationships. Duplicate nodes keep the first occurrence; edges whose
// endpoints are missing after node dedup are dropped.
func (a *Adapter) BuildScene(objects []graph.GraphObject, rels []graph.GraphRelationship) *Scene {
	scene := &Scene{
		Nodes:      []GraphNode{},
		Edges:      []GraphEdge{},
		NodeIndex:  map[string]int{},
		TypeCounts: map[string]int{},
	}

	for _, obj := range objects {
		if _, seen := scene.NodeIndex[obj.ID]; seen {
			scene.DuplicateNodes++
			a.log.Debug("dropped duplicate node", slog.String("id", obj.ID))
			continue
		}

		props := obj.PropertyMap()
		node := GraphNode{
			ID:         obj.ID,
			Type:       obj.Type,
			Label:      displayName(obj, props),
			Community:  obj.Community,
			Style:      a.styles.StyleFor(obj.Type),
			Properties: props,
		}
		scene.NodeIndex[obj.ID] = len(scene.Nodes)
		scene.Nodes = append(scene.Nodes, node)
		scene.TypeCounts[obj.Type]++
	}

	seenEdges := make(map[string]struct{}, len(rels))
	for _, rel := range rels {
		id := rel.ID
		if id == "" {
			id = fmt.Sprintf("%s-%s-%s", rel.SrcID, rel.DstID, rel.Type)
		}
		if _, seen := seenEdges[id]; seen {
			scene.DuplicateEdges++
			continue
		}
		seenEdges[id] = struct{}{}

		// Dangling check runs against the deduplicated node set
		_, srcOK := scene.NodeIndex[rel.SrcID]
		_, dstOK := scene.NodeIndex[rel.DstID]
		if !srcOK || !dstOK {
			scene.DanglingEdges++
			continue
		}

		scene.Edges = append(scene.Edges, GraphEdge{
			ID:     id,
			Source: rel.SrcID,
			Target: rel.DstID,
			Type:   rel.Type,
			Weight: rel.Weight,
		})
	}

	return scene
}

// displayName resolves a node label: name, then title, then truncated
// content, then the first label, then the id.
func displayName(obj graph.GraphObject, props map[string]any) string {
	if name, ok := props["name"].(string); ok && name != "" {
		return name
	}
	if title, ok := props["title"].(string); ok && title != "" {
		return title
	}
	if content, ok := props["content"].(string); ok && content != "" {
		return truncate(content, maxLabelLength)
	}
	if len(obj.Labels) > 0 && obj.Labels[0] != "" {
		return obj.Labels[0]
	}
	return obj.ID
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
