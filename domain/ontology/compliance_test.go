package ontology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ontoscope/ontoscope/domain/graph"
)

func testSchema() *OntologySchema {
	s := NewEmptySchema()
	s.EntityTypes["Person"] = EntityType{
		Name:  "Person",
		Label: "Person",
		Properties: []PropertyDef{
			{Name: "name", Type: PropertyString, Required: true},
			{Name: "age", Type: PropertyNumber},
		},
	}
	s.EntityTypes["Company"] = EntityType{
		Name:  "Company",
		Label: "Company",
	}
	s.RelationTypes["WORKS_AT"] = RelationType{
		Name:      "WORKS_AT",
		FromTypes: []string{"Person"},
		ToTypes:   []string{"Company"},
	}
	s.RelationTypes["RELATED_TO"] = RelationType{
		Name:      "RELATED_TO",
		FromTypes: []string{Wildcard},
		ToTypes:   []string{Wildcard},
	}
	return s
}

func object(typeName string, props map[string]any) graph.GraphObject {
	raw, _ := json.Marshal(props)
	return graph.GraphObject{ID: typeName + "-id", Type: typeName, Properties: raw}
}

func relationship(typeName, srcType, dstType string) graph.RelationshipInstance {
	return graph.RelationshipInstance{
		ID:      typeName + "-id",
		Type:    typeName,
		SrcType: srcType,
		DstType: dstType,
	}
}

func TestValidate_AllValid(t *testing.T) {
	result, err := Validate(testSchema(),
		[]graph.GraphObject{
			object("Person", map[string]any{"name": "Ada", "age": 36}),
			object("Company", nil),
		},
		[]graph.RelationshipInstance{
			relationship("WORKS_AT", "Person", "Company"),
		},
	)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 2, result.Stats.ValidNodes)
	assert.Equal(t, 1, result.Stats.ValidRelationships)
	assert.Empty(t, result.Issues)
}

func TestValidate_UnknownType(t *testing.T) {
	result, err := Validate(testSchema(),
		[]graph.GraphObject{object("Vendor", nil)},
		nil,
	)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 1, result.Stats.UnknownTypeNodes)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "unknown_node_type", result.Issues[0].Type)
	assert.Equal(t, "warning", result.Issues[0].Severity)
}

func TestValidate_MissingRequiredProperty(t *testing.T) {
	result, err := Validate(testSchema(),
		[]graph.GraphObject{
			object("Person", map[string]any{"age": 40}),
			object("Person", map[string]any{"age": 41}),
		},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.InvalidNodes)
	assert.Equal(t, 2, result.Stats.MissingRequiredProperties)

	// One issue per violation class, not per instance
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "missing_required_property", result.Issues[0].Type)
	assert.Equal(t, 2, result.Issues[0].Count)
	assert.Equal(t, "error", result.Issues[0].Severity)
}

func TestValidate_InvalidPropertyType(t *testing.T) {
	result, err := Validate(testSchema(),
		[]graph.GraphObject{
			object("Person", map[string]any{"name": "Ada", "age": "old"}),
		},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.InvalidNodes)
	assert.Equal(t, 1, result.Stats.InvalidPropertyTypes)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "invalid_property_type", result.Issues[0].Type)
}

func TestValidate_RelationshipEndpoints(t *testing.T) {
	result, err := Validate(testSchema(), nil,
		[]graph.RelationshipInstance{
			relationship("WORKS_AT", "Company", "Company"),
			relationship("RELATED_TO", "Vendor", "Thing"),
		},
	)
	require.NoError(t, err)

	// WORKS_AT from Company violates fromTypes; RELATED_TO is wildcarded
	assert.Equal(t, 1, result.Stats.InvalidRelationships)
	assert.Equal(t, 1, result.Stats.ValidRelationships)
}

func TestValidate_IssueOrdering(t *testing.T) {
	result, err := Validate(testSchema(),
		[]graph.GraphObject{
			object("Vendor", nil),
			object("Vendor", nil),
			object("Vendor", nil),
			object("Person", map[string]any{"age": 1}),
		},
		nil,
	)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(result.Issues), 2)
	// error-severity issue sorts before the (higher-count) warning
	assert.Equal(t, "error", result.Issues[0].Severity)
	assert.Equal(t, "warning", result.Issues[1].Severity)
	assert.Equal(t, 3, result.Issues[1].Count)
}

func TestValidate_MalformedSchema(t *testing.T) {
	_, err := Validate(nil, nil, nil)
	assert.Error(t, err)

	_, err = Validate(&OntologySchema{}, nil, nil)
	assert.Error(t, err)
}

func TestValidate_ScoreFormula(t *testing.T) {
	// 1 valid node + 1 valid rel out of 3 total = round(100*2/3) = 67
	result, err := Validate(testSchema(),
		[]graph.GraphObject{
			object("Person", map[string]any{"name": "Ada"}),
			object("Vendor", nil),
		},
		[]graph.RelationshipInstance{
			relationship("WORKS_AT", "Person", "Company"),
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 67, result.Score)
}

func TestValidate_EmptyInput(t *testing.T) {
	result, err := Validate(testSchema(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.True(t, result.Valid)
}

func TestValidate_PartitionProperty(t *testing.T) {
	types := []string{"Person", "Company", "Vendor", "Thing"}

	rapid.Check(t, func(t *rapid.T) {
		var objects []graph.GraphObject
		n := rapid.IntRange(0, 30).Draw(t, "n")
		for i := 0; i < n; i++ {
			typeName := rapid.SampledFrom(types).Draw(t, "type")
			props := map[string]any{}
			if rapid.Bool().Draw(t, "hasName") {
				props["name"] = "x"
			}
			if rapid.Bool().Draw(t, "hasAge") {
				props["age"] = rapid.Float64().Draw(t, "age")
			}
			objects = append(objects, object(typeName, props))
		}

		result, err := Validate(testSchema(), objects, nil)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}

		stats := result.Stats
		assert.Equal(t, stats.TotalNodes, stats.ValidNodes+stats.InvalidNodes+stats.UnknownTypeNodes)
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 100)
	})
}
