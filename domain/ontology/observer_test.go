package ontology

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoscope/ontoscope/domain/graph"
)

type fakeGraphSource struct {
	objects map[string]int
	rels    map[string]int
	triples []graph.EndpointTriple
}

func (f *fakeGraphSource) ObjectCountsByType(ctx context.Context) (map[string]int, error) {
	return f.objects, nil
}

func (f *fakeGraphSource) RelationshipCountsByType(ctx context.Context) (map[string]int, error) {
	return f.rels, nil
}

func (f *fakeGraphSource) EndpointTriples(ctx context.Context) ([]graph.EndpointTriple, error) {
	return f.triples, nil
}

func testObserver(src GraphSource) *Observer {
	return NewObserver(src, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtract_EndpointSets(t *testing.T) {
	src := &fakeGraphSource{
		objects: map[string]int{"Person": 10, "Company": 4, "Vendor": 3},
		rels:    map[string]int{"WORKS_AT": 8, "SUPPLIES": 2},
		triples: []graph.EndpointTriple{
			{SrcType: "Person", RelType: "WORKS_AT", DstType: "Company", Count: 7},
			{SrcType: "Person", RelType: "WORKS_AT", DstType: "Vendor", Count: 1},
			{SrcType: "Vendor", RelType: "SUPPLIES", DstType: "Company", Count: 2},
		},
	}

	extracted, err := testObserver(src).Extract(context.Background())
	require.NoError(t, err)

	require.Len(t, extracted.EntityTypes, 3)
	assert.Equal(t, 10, extracted.EntityTypes["Person"].NodeCount)

	worksAt := extracted.RelationTypes["WORKS_AT"]
	assert.Equal(t, 8, worksAt.EdgeCount)
	assert.Equal(t, []string{"Person"}, worksAt.FromTypes)
	assert.Equal(t, []string{"Company", "Vendor"}, worksAt.ToTypes)

	assert.Equal(t, "graph-instance-store", extracted.ExtractedFrom)
}

// A graph containing an undeclared "Vendor" type and a schema declaring an
// instanceless "Regulation" type: the diff reports Vendor as observed-only
// and the usage scan reports Regulation as unused.
func TestGapDetectionScenario(t *testing.T) {
	src := &fakeGraphSource{
		objects: map[string]int{"Person": 5, "Vendor": 2},
		rels:    map[string]int{},
	}

	schema := NewEmptySchema()
	schema.EntityTypes["Person"] = EntityType{Name: "Person"}
	schema.EntityTypes["Regulation"] = EntityType{Name: "Regulation"}

	observer := testObserver(src)

	extracted, err := observer.Extract(context.Background())
	require.NoError(t, err)

	diff, err := Diff(schema.NameSet(), extracted.NameSet())
	require.NoError(t, err)
	assert.Equal(t, []string{"Vendor"}, diff.EntitiesOnlyInB)
	assert.Equal(t, []string{"Regulation"}, diff.EntitiesOnlyInA)
	assert.Equal(t, []string{"Person"}, diff.EntitiesInBoth)

	unused, err := observer.FindUnused(context.Background(), schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"Regulation"}, unused.Entities)
	assert.Empty(t, unused.Relations)
}

func TestUsage_Buckets(t *testing.T) {
	src := &fakeGraphSource{
		objects: map[string]int{"Person": 5, "Vendor": 2},
		rels:    map[string]int{"WORKS_AT": 3},
	}

	schema := NewEmptySchema()
	schema.EntityTypes["Person"] = EntityType{Name: "Person"}
	schema.EntityTypes["Regulation"] = EntityType{Name: "Regulation"}
	schema.RelationTypes["WORKS_AT"] = RelationType{Name: "WORKS_AT"}
	schema.RelationTypes["OWNS"] = RelationType{Name: "OWNS"}

	stats, err := testObserver(src).Usage(context.Background(), schema)
	require.NoError(t, err)

	assert.Equal(t, 7, stats.TotalObjects)
	assert.Equal(t, 3, stats.TotalEdges)
	assert.Equal(t, []string{"Regulation"}, stats.Unused.Entities)
	assert.Equal(t, []string{"OWNS"}, stats.Unused.Relations)
	assert.Equal(t, []string{"Vendor"}, stats.NotInOntology)

	// Declared and observed-only types both appear in the joined listing
	names := make(map[string]bool, len(stats.Types))
	for _, usage := range stats.Types {
		names[usage.Name] = true
	}
	for _, expected := range []string{"Person", "Regulation", "Vendor", "WORKS_AT", "OWNS"} {
		assert.True(t, names[expected], expected)
	}
}
