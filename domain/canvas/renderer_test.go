package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene() *Scene {
	w := 2.5
	return &Scene{
		Nodes: []GraphNode{
			{ID: "n1", Type: "Person", Label: "Ada", Style: NodeStyle{Color: "#4285f4", Size: 8}},
			{ID: "n2", Type: "Company", Label: "Initech", Style: NodeStyle{Color: "#34a853", Size: 10}},
		},
		Edges: []GraphEdge{
			{ID: "e1", Source: "n1", Target: "n2", Type: "WORKS_AT", Weight: &w},
		},
		NodeIndex:  map[string]int{"n1": 0, "n2": 1},
		TypeCounts: map[string]int{"Person": 1, "Company": 1},
	}
}

func TestNewRenderer(t *testing.T) {
	for _, name := range []string{RendererCosmograph, RendererForceGraph} {
		r, err := NewRenderer(name)
		require.NoError(t, err)
		require.NotNil(t, r)
	}

	_, err := NewRenderer("webgl2")
	assert.Error(t, err)
}

func TestCosmographRenderer(t *testing.T) {
	r, err := NewRenderer(RendererCosmograph)
	require.NoError(t, err)

	handle, err := r.Render(testScene())
	require.NoError(t, err)
	assert.Equal(t, RendererCosmograph, handle.Renderer)

	payload, ok := handle.Payload.(cosmographPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"n1", "n2"}, payload.PointIDs)
	assert.Equal(t, []string{"Ada", "Initech"}, payload.PointLabels)
	assert.Equal(t, []int{0}, payload.LinkSources)
	assert.Equal(t, []int{1}, payload.LinkTargets)
	assert.Equal(t, []float64{2.5}, payload.LinkWeights)
}

func TestCosmographRenderer_DefaultWeight(t *testing.T) {
	r, err := NewRenderer(RendererCosmograph)
	require.NoError(t, err)

	scene := testScene()
	scene.Edges[0].Weight = nil

	handle, err := r.Render(scene)
	require.NoError(t, err)

	payload := handle.Payload.(cosmographPayload)
	assert.Equal(t, []float64{1.0}, payload.LinkWeights)
}

func TestForceGraphRenderer(t *testing.T) {
	r, err := NewRenderer(RendererForceGraph)
	require.NoError(t, err)

	handle, err := r.Render(testScene())
	require.NoError(t, err)
	assert.Equal(t, RendererForceGraph, handle.Renderer)

	payload, ok := handle.Payload.(forceGraphPayload)
	require.True(t, ok)
	require.Len(t, payload.Nodes, 2)
	require.Len(t, payload.Links, 1)
	assert.Equal(t, "Ada", payload.Nodes[0].Name)
	assert.Equal(t, "Person", payload.Nodes[0].Group)
	assert.Equal(t, "n1", payload.Links[0].Source)
	assert.Equal(t, "WORKS_AT", payload.Links[0].Label)
}

func TestRender_EmptyScene(t *testing.T) {
	scene := &Scene{
		Nodes:      []GraphNode{},
		Edges:      []GraphEdge{},
		NodeIndex:  map[string]int{},
		TypeCounts: map[string]int{},
	}

	for _, name := range []string{RendererCosmograph, RendererForceGraph} {
		r, err := NewRenderer(name)
		require.NoError(t, err)
		handle, err := r.Render(scene)
		require.NoError(t, err)
		assert.NotNil(t, handle.Payload)
	}
}
