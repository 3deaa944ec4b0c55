package suggestions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ontoscope/ontoscope/domain/ontology"
)

func pendingSuggestion(id string, confidence float64) OntologySuggestion {
	return OntologySuggestion{
		ID:         id,
		Kind:       KindEntity,
		Name:       "Type" + id,
		Confidence: confidence,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
}

func TestPlanAutoApprove_Scenario(t *testing.T) {
	pending := []OntologySuggestion{
		pendingSuggestion("a", 0.9),
		pendingSuggestion("b", 0.85),
		pendingSuggestion("c", 0.5),
	}

	toApprove, skipped := planAutoApprove(pending, 0.85)
	assert.Equal(t, []string{"a", "b"}, toApprove)
	assert.Equal(t, 1, skipped)
}

func TestPlanAutoApprove_BoundaryInclusive(t *testing.T) {
	const threshold = 0.85
	const epsilon = 1e-9

	pending := []OntologySuggestion{
		pendingSuggestion("at", threshold),
		pendingSuggestion("below", threshold-epsilon),
	}

	toApprove, skipped := planAutoApprove(pending, threshold)
	assert.Equal(t, []string{"at"}, toApprove)
	assert.Equal(t, 1, skipped)
}

func TestPlanAutoApprove_PreservesOrder(t *testing.T) {
	pending := []OntologySuggestion{
		pendingSuggestion("first", 0.9),
		pendingSuggestion("second", 0.95),
		pendingSuggestion("third", 0.91),
	}

	toApprove, skipped := planAutoApprove(pending, 0.9)
	assert.Equal(t, []string{"first", "second", "third"}, toApprove)
	assert.Zero(t, skipped)
}

func TestSuggestionTerminal(t *testing.T) {
	s := pendingSuggestion("x", 0.5)
	assert.False(t, s.Terminal())

	s.Status = StatusApproved
	assert.True(t, s.Terminal())

	s.Status = StatusRejected
	assert.True(t, s.Terminal())
}

func TestSuggestionEntityType(t *testing.T) {
	s := OntologySuggestion{
		Kind:       KindEntity,
		Name:       "Vendor",
		Properties: []byte(`[{"name":"name","type":"string","required":true,"searchable":false}]`),
	}

	et := s.EntityType()
	assert.Equal(t, "Vendor", et.Name)
	assert.Equal(t, "Vendor", et.Label)
	assert.Len(t, et.Properties, 1)
	assert.Equal(t, ontology.PropertyString, et.Properties[0].Type)
	assert.True(t, et.Properties[0].Required)
}

func TestSuggestionRelationType(t *testing.T) {
	s := OntologySuggestion{
		Kind:      KindRelation,
		Name:      "SUPPLIES",
		FromTypes: []string{"Vendor"},
		ToTypes:   []string{"Company"},
	}

	rt := s.RelationType()
	assert.Equal(t, "SUPPLIES", rt.Name)
	assert.Equal(t, []string{"Vendor"}, rt.FromTypes)
	assert.Equal(t, []string{"Company"}, rt.ToTypes)
	assert.Empty(t, rt.Properties)
}

func TestSuggestionRelationType_NilEndpoints(t *testing.T) {
	s := OntologySuggestion{Kind: KindRelation, Name: "SUPPLIES"}
	rt := s.RelationType()
	assert.NotNil(t, rt.FromTypes)
	assert.NotNil(t, rt.ToTypes)
}

func TestPropertyDefs_Malformed(t *testing.T) {
	s := OntologySuggestion{Properties: []byte(`{not json`)}
	assert.Empty(t, s.PropertyDefs())
}
