package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInferenceResponse_PlainArray(t *testing.T) {
	raw := `[{"kind":"entity","name":"Vendor","confidence":0.8,"reason":"seen in data"}]`

	proposed, err := parseInferenceResponse(raw)
	require.NoError(t, err)
	require.Len(t, proposed, 1)
	assert.Equal(t, "entity", proposed[0].Kind)
	assert.Equal(t, "Vendor", proposed[0].Name)
	assert.Equal(t, 0.8, proposed[0].Confidence)
}

func TestParseInferenceResponse_CodeFence(t *testing.T) {
	raw := "Here are my suggestions:\n```json\n" +
		`[{"kind":"relation","name":"SUPPLIES","fromTypes":["Vendor"],"toTypes":["Company"],"confidence":0.7,"reason":"edges observed"}]` +
		"\n```\nLet me know if you need more."

	proposed, err := parseInferenceResponse(raw)
	require.NoError(t, err)
	require.Len(t, proposed, 1)
	assert.Equal(t, "relation", proposed[0].Kind)
	assert.Equal(t, []string{"Vendor"}, proposed[0].FromTypes)
	assert.Equal(t, []string{"Company"}, proposed[0].ToTypes)
}

func TestParseInferenceResponse_FenceWithoutLanguage(t *testing.T) {
	raw := "```\n[{\"kind\":\"entity\",\"name\":\"Permit\",\"confidence\":0.6,\"reason\":\"r\"}]\n```"

	proposed, err := parseInferenceResponse(raw)
	require.NoError(t, err)
	require.Len(t, proposed, 1)
	assert.Equal(t, "Permit", proposed[0].Name)
}

func TestParseInferenceResponse_SurroundingProse(t *testing.T) {
	raw := `Based on the data I suggest: [{"kind":"entity","name":"Permit","confidence":0.6,"reason":"r"}] and that's all.`

	proposed, err := parseInferenceResponse(raw)
	require.NoError(t, err)
	require.Len(t, proposed, 1)
}

func TestParseInferenceResponse_EmptyArray(t *testing.T) {
	proposed, err := parseInferenceResponse("[]")
	require.NoError(t, err)
	assert.Empty(t, proposed)
}

func TestParseInferenceResponse_NoArray(t *testing.T) {
	_, err := parseInferenceResponse("I could not find any improvements.")
	assert.Error(t, err)
}

func TestParseInferenceResponse_MalformedJSON(t *testing.T) {
	// A partial decode must not yield partial suggestions
	_, err := parseInferenceResponse(`[{"kind":"entity","name":"Vendor",`)
	assert.Error(t, err)
}

func TestParseInferenceResponse_FiltersInvalidEntries(t *testing.T) {
	raw := `[
		{"kind":"entity","name":"Vendor","confidence":0.8,"reason":"ok"},
		{"kind":"banana","name":"X","confidence":0.8,"reason":"bad kind"},
		{"kind":"entity","name":"","confidence":0.8,"reason":"no name"},
		{"kind":"relation","name":"SUPPLIES","confidence":1.5,"reason":"out of range"}
	]`

	proposed, err := parseInferenceResponse(raw)
	require.NoError(t, err)
	require.Len(t, proposed, 2)
	assert.Equal(t, "Vendor", proposed[0].Name)

	// Out-of-range confidence is clamped to a neutral default
	assert.Equal(t, "SUPPLIES", proposed[1].Name)
	assert.Equal(t, 0.5, proposed[1].Confidence)
}

func TestGapConfidence(t *testing.T) {
	assert.Equal(t, 0.9, gapConfidence(500))
	assert.Equal(t, 0.9, gapConfidence(100))
	assert.Equal(t, 0.7, gapConfidence(42))
	assert.Equal(t, 0.5, gapConfidence(2))
	assert.Equal(t, 0.3, gapConfidence(1))
	assert.Equal(t, 0.3, gapConfidence(0))
}
