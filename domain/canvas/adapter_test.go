package canvas

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoscope/ontoscope/domain/graph"
)

func testAdapter(t *testing.T) *Adapter {
	t.Helper()
	styles, err := LoadStyles()
	require.NoError(t, err)
	return NewAdapter(styles, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func object(id, typ string, props map[string]any) graph.GraphObject {
	raw, _ := json.Marshal(props)
	return graph.GraphObject{ID: id, Type: typ, Properties: raw}
}

func relationship(id, typ, src, dst string) graph.GraphRelationship {
	return graph.GraphRelationship{ID: id, Type: typ, SrcID: src, DstID: dst}
}

func TestBuildScene_Basic(t *testing.T) {
	a := testAdapter(t)

	objects := []graph.GraphObject{
		object("n1", "Person", map[string]any{"name": "Ada"}),
		object("n2", "Company", map[string]any{"name": "Initech"}),
	}
	rels := []graph.GraphRelationship{
		relationship("e1", "WORKS_AT", "n1", "n2"),
	}

	scene := a.BuildScene(objects, rels)

	require.Len(t, scene.Nodes, 2)
	require.Len(t, scene.Edges, 1)
	assert.Equal(t, 0, scene.NodeIndex["n1"])
	assert.Equal(t, 1, scene.NodeIndex["n2"])
	assert.Equal(t, map[string]int{"Person": 1, "Company": 1}, scene.TypeCounts)
	assert.Equal(t, "Ada", scene.Nodes[0].Label)
	assert.Zero(t, scene.DanglingEdges)
}

func TestBuildScene_Deterministic(t *testing.T) {
	a := testAdapter(t)

	objects := []graph.GraphObject{
		object("n1", "Person", map[string]any{"name": "Ada"}),
		object("n2", "Company", map[string]any{"name": "Initech"}),
		object("n3", "Person", map[string]any{"title": "Dr"}),
	}
	rels := []graph.GraphRelationship{
		relationship("e1", "WORKS_AT", "n1", "n2"),
		relationship("e2", "KNOWS", "n1", "n3"),
	}

	first, err := json.Marshal(a.BuildScene(objects, rels))
	require.NoError(t, err)
	second, err := json.Marshal(a.BuildScene(objects, rels))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildScene_NodeDedupFirstWins(t *testing.T) {
	a := testAdapter(t)

	objects := []graph.GraphObject{
		object("n1", "Person", map[string]any{"name": "First"}),
		object("n1", "Person", map[string]any{"name": "Second"}),
	}

	scene := a.BuildScene(objects, nil)

	require.Len(t, scene.Nodes, 1)
	assert.Equal(t, "First", scene.Nodes[0].Label)
	assert.Equal(t, 1, scene.DuplicateNodes)
}

func TestBuildScene_EdgeDedupAndFallbackID(t *testing.T) {
	a := testAdapter(t)

	objects := []graph.GraphObject{
		object("n1", "Person", nil),
		object("n2", "Company", nil),
	}
	rels := []graph.GraphRelationship{
		relationship("e1", "WORKS_AT", "n1", "n2"),
		relationship("e1", "WORKS_AT", "n1", "n2"),
		relationship("", "OWNS", "n1", "n2"),
		relationship("", "OWNS", "n1", "n2"),
	}

	scene := a.BuildScene(objects, rels)

	require.Len(t, scene.Edges, 2)
	assert.Equal(t, 2, scene.DuplicateEdges)
	assert.Equal(t, "n1-n2-OWNS", scene.Edges[1].ID)
}

func TestBuildScene_DanglingEdgesFiltered(t *testing.T) {
	a := testAdapter(t)

	objects := []graph.GraphObject{
		object("n1", "Person", nil),
	}
	rels := []graph.GraphRelationship{
		relationship("e1", "WORKS_AT", "n1", "missing"),
		relationship("e2", "WORKS_AT", "missing", "n1"),
		relationship("e3", "KNOWS", "ghost1", "ghost2"),
	}

	scene := a.BuildScene(objects, rels)

	assert.Empty(t, scene.Edges)
	assert.Equal(t, 3, scene.DanglingEdges)
	assert.Len(t, scene.Edges, len(rels)-scene.DanglingEdges)
}

func TestDisplayName_Priority(t *testing.T) {
	tests := []struct {
		name   string
		obj    graph.GraphObject
		props  map[string]any
		expect string
	}{
		{"name wins", graph.GraphObject{ID: "x"}, map[string]any{"name": "N", "title": "T"}, "N"},
		{"title next", graph.GraphObject{ID: "x"}, map[string]any{"title": "T", "content": "C"}, "T"},
		{"content truncated", graph.GraphObject{ID: "x"},
			map[string]any{"content": "This is a very long piece of content that keeps going"},
			"This is a very long piece of content tha..."},
		{"label next", graph.GraphObject{ID: "x", Labels: []string{"Lab"}}, map[string]any{}, "Lab"},
		{"id last", graph.GraphObject{ID: "x"}, map[string]any{}, "x"},
		{"empty name skipped", graph.GraphObject{ID: "x"}, map[string]any{"name": "", "title": "T"}, "T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, displayName(tt.obj, tt.props))
		})
	}
}

func TestStyleFor_DefaultFallback(t *testing.T) {
	styles, err := LoadStyles()
	require.NoError(t, err)

	person := styles.StyleFor("Person")
	assert.Equal(t, "#4285f4", person.Color)

	unknown := styles.StyleFor("SomethingNew")
	assert.Equal(t, styles.Default, unknown)
	assert.NotEmpty(t, unknown.Color)
}
