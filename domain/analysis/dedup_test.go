package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoscope/ontoscope/domain/ontology"
)

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("person", "person"))
	assert.Equal(t, 1, levenshtein("person", "persons"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 5, levenshtein("", "hello"))
	assert.Equal(t, 5, levenshtein("hello", ""))
}

func TestNameSimilarity(t *testing.T) {
	// Normalization strips case and punctuation
	assert.Equal(t, 1.0, nameSimilarity("WorksAt", "WORKS_AT"))
	assert.Equal(t, 1.0, nameSimilarity("works-at", "WorksAt"))

	// Plural variants land above the threshold
	assert.GreaterOrEqual(t, nameSimilarity("Person", "Persons"), dedupThreshold)

	// Unrelated names land below it
	assert.Less(t, nameSimilarity("Person", "Regulation"), dedupThreshold)

	// Empty-after-normalization names never match
	assert.Equal(t, 0.0, nameSimilarity("123", "456"))
}

func TestFindDuplicates(t *testing.T) {
	schema := ontology.NewEmptySchema()
	schema.EntityTypes["Person"] = ontology.EntityType{Name: "Person"}
	schema.EntityTypes["Persons"] = ontology.EntityType{Name: "Persons"}
	schema.EntityTypes["Company"] = ontology.EntityType{Name: "Company"}
	schema.RelationTypes["WORKS_AT"] = ontology.RelationType{Name: "WORKS_AT"}
	schema.RelationTypes["WorksAt"] = ontology.RelationType{Name: "WorksAt"}
	schema.RelationTypes["OWNS"] = ontology.RelationType{Name: "OWNS"}

	report := FindDuplicates(schema)

	assert.Equal(t, 3, report.EntityTypesScanned)
	assert.Equal(t, 3, report.RelationTypesScanned)
	require.Len(t, report.Groups, 2)

	var entityGroup, relationGroup *DuplicateGroup
	for i := range report.Groups {
		switch report.Groups[i].Kind {
		case "entity":
			entityGroup = &report.Groups[i]
		case "relation":
			relationGroup = &report.Groups[i]
		}
	}

	require.NotNil(t, entityGroup)
	assert.ElementsMatch(t, []string{"Person", "Persons"}, entityGroup.Names)

	require.NotNil(t, relationGroup)
	assert.ElementsMatch(t, []string{"WORKS_AT", "WorksAt"}, relationGroup.Names)
	assert.Equal(t, 1.0, relationGroup.Similarity)
}

func TestFindDuplicates_CleanSchema(t *testing.T) {
	schema := ontology.NewEmptySchema()
	schema.EntityTypes["Person"] = ontology.EntityType{Name: "Person"}
	schema.EntityTypes["Regulation"] = ontology.EntityType{Name: "Regulation"}

	report := FindDuplicates(schema)
	assert.Empty(t, report.Groups)
}
