package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func schemaWithEntities(names ...string) *OntologySchema {
	s := NewEmptySchema()
	for _, n := range names {
		s.EntityTypes[n] = EntityType{Name: n, Label: n}
	}
	return s
}

func extractedWithEntities(names ...string) *ExtractedOntology {
	e := &ExtractedOntology{
		EntityTypes:   map[string]ExtractedEntityType{},
		RelationTypes: map[string]ExtractedRelationType{},
	}
	for _, n := range names {
		e.EntityTypes[n] = ExtractedEntityType{
			EntityType: EntityType{Name: n, Label: n},
			NodeCount:  1,
		}
	}
	return e
}

func TestDiff_Basic(t *testing.T) {
	a := schemaWithEntities("Person", "Company", "Regulation")
	b := extractedWithEntities("Person", "Vendor")

	diff, err := Diff(a.NameSet(), b.NameSet())
	require.NoError(t, err)

	assert.Equal(t, []string{"Company", "Regulation"}, diff.EntitiesOnlyInA)
	assert.Equal(t, []string{"Vendor"}, diff.EntitiesOnlyInB)
	assert.Equal(t, []string{"Person"}, diff.EntitiesInBoth)
	assert.Empty(t, diff.RelationsOnlyInA)
	assert.Empty(t, diff.RelationsOnlyInB)
	assert.Empty(t, diff.RelationsInBoth)
}

func TestDiff_CaseSensitive(t *testing.T) {
	a := schemaWithEntities("Person")
	b := extractedWithEntities("person")

	diff, err := Diff(a.NameSet(), b.NameSet())
	require.NoError(t, err)

	// Near-duplicate names are not unified
	assert.Equal(t, []string{"Person"}, diff.EntitiesOnlyInA)
	assert.Equal(t, []string{"person"}, diff.EntitiesOnlyInB)
	assert.Empty(t, diff.EntitiesInBoth)
}

func TestDiff_MalformedInput(t *testing.T) {
	valid := schemaWithEntities("Person").NameSet()

	tests := []struct {
		name string
		a, b *NameSet
	}{
		{"nil a", nil, valid},
		{"nil b", valid, nil},
		{"missing entities", &NameSet{Relations: []string{}}, valid},
		{"missing relations", &NameSet{Entities: []string{}}, valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Diff(tt.a, tt.b)
			assert.Error(t, err)
		})
	}
}

func TestDiff_EmptyIsNotMalformed(t *testing.T) {
	diff, err := Diff(NewEmptySchema().NameSet(), NewEmptySchema().NameSet())
	require.NoError(t, err)
	assert.Empty(t, diff.EntitiesOnlyInA)
	assert.Empty(t, diff.EntitiesInBoth)
}

func genNameSet(t *rapid.T, label string) *NameSet {
	names := rapid.SliceOfN(rapid.StringMatching(`[A-Za-z]{1,8}`), 0, 20)
	return &NameSet{
		Entities:  names.Draw(t, label+"_entities"),
		Relations: names.Draw(t, label+"_relations"),
	}
}

func TestDiff_Symmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genNameSet(t, "a")
		b := genNameSet(t, "b")

		ab, err := Diff(a, b)
		if err != nil {
			t.Fatalf("diff(a,b): %v", err)
		}
		ba, err := Diff(b, a)
		if err != nil {
			t.Fatalf("diff(b,a): %v", err)
		}

		assert.Equal(t, ab.EntitiesOnlyInA, ba.EntitiesOnlyInB)
		assert.Equal(t, ab.EntitiesOnlyInB, ba.EntitiesOnlyInA)
		assert.Equal(t, ab.EntitiesInBoth, ba.EntitiesInBoth)
		assert.Equal(t, ab.RelationsOnlyInA, ba.RelationsOnlyInB)
		assert.Equal(t, ab.RelationsInBoth, ba.RelationsInBoth)
	})
}

func TestDiff_Partition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genNameSet(t, "a")
		b := genNameSet(t, "b")

		diff, err := Diff(a, b)
		if err != nil {
			t.Fatalf("diff: %v", err)
		}

		union := map[string]struct{}{}
		for _, n := range a.Entities {
			union[n] = struct{}{}
		}
		for _, n := range b.Entities {
			union[n] = struct{}{}
		}

		total := len(diff.EntitiesOnlyInA) + len(diff.EntitiesOnlyInB) + len(diff.EntitiesInBoth)
		assert.Equal(t, len(union), total)

		// No overlaps between buckets
		seen := map[string]int{}
		for _, bucket := range [][]string{diff.EntitiesOnlyInA, diff.EntitiesOnlyInB, diff.EntitiesInBoth} {
			for _, n := range bucket {
				seen[n]++
			}
		}
		for name, count := range seen {
			assert.Equalf(t, 1, count, "name %q appears in %d buckets", name, count)
		}
	})
}
