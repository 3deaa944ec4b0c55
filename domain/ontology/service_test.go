package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionProperties(t *testing.T) {
	declared := []PropertyDef{
		{Name: "name", Type: PropertyString, Required: true},
	}
	extracted := []PropertyDef{
		{Name: "name", Type: PropertyNumber}, // conflict: declared wins
		{Name: "age", Type: PropertyNumber},
	}

	merged, changed := unionProperties(declared, extracted)
	assert.True(t, changed)
	assert.Len(t, merged, 2)
	assert.Equal(t, PropertyString, merged[0].Type)
	assert.Equal(t, "age", merged[1].Name)

	same, changed := unionProperties(declared, declared)
	assert.False(t, changed)
	assert.Len(t, same, 1)
}

func TestUnionNames(t *testing.T) {
	merged, changed := unionNames([]string{"Person"}, []string{"Company", "Person", "Agency"})
	assert.True(t, changed)
	assert.Equal(t, []string{"Person", "Agency", "Company"}, merged)

	same, changed := unionNames([]string{"Person"}, []string{"Person"})
	assert.False(t, changed)
	assert.Equal(t, []string{"Person"}, same)
}

func TestSchemaClone_Isolation(t *testing.T) {
	original := testSchema()
	clone := original.Clone()

	clone.EntityTypes["Vendor"] = EntityType{Name: "Vendor"}
	et := clone.EntityTypes["Person"]
	et.Properties[0].Name = "mutated"
	clone.EntityTypes["Person"] = et

	assert.NotContains(t, original.EntityTypes, "Vendor")
	assert.Equal(t, "name", original.EntityTypes["Person"].Properties[0].Name)
}
