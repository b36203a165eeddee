// internal/entrymeta/entrymeta_test.go
package entrymeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-nutrition-log/internal/models"
	"mcp-nutrition-log/internal/nutrient"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestEncodeDecodeRoundTrip(t *testing.T) {
	meta := MetaV2{
		FeelAfter: intPtr(4),
		Nutrients: nutrient.Totals{
			ProteinG: 42, CarbsG: 55, FatG: 18, FiberG: 9, SodiumMg: 640,
		},
		Positive:              []string{"plenty of protein", "leafy greens"},
		Improve:               []string{"high sodium"},
		Recommendation:        "add a whole grain",
		RecommendationOptions: []string{"brown rice", "quinoa"},
		Confidence:            models.HighConfidence,
	}

	encoded, err := Encode(meta)
	require.NoError(t, err)

	decoded := Decode(&encoded)
	require.NotNil(t, decoded)
	assert.Equal(t, Version, decoded.Version)
	assert.Equal(t, 4, *decoded.FeelAfter)
	assert.Equal(t, meta.Nutrients, decoded.Nutrients)
	assert.Equal(t, meta.Positive, decoded.Positive)
	assert.Equal(t, meta.Improve, decoded.Improve)
	assert.Equal(t, meta.Recommendation, decoded.Recommendation)
	assert.Equal(t, meta.RecommendationOptions, decoded.RecommendationOptions)
	assert.Equal(t, models.HighConfidence, decoded.Confidence)
}

func TestDecodeRejectsAbsentAndMalformed(t *testing.T) {
	assert.Nil(t, Decode(nil))
	assert.Nil(t, Decode(strPtr("")))
	assert.Nil(t, Decode(strPtr("   ")))
	assert.Nil(t, Decode(strPtr("not json")))
	assert.Nil(t, Decode(strPtr(`[1,2,3]`)))
	assert.Nil(t, Decode(strPtr(`"just a string"`)))
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	assert.Nil(t, Decode(strPtr(`{"version":1,"nutrients":{}}`)))
	assert.Nil(t, Decode(strPtr(`{"version":3}`)))
	assert.Nil(t, Decode(strPtr(`{"version":"2"}`)))
	assert.Nil(t, Decode(strPtr(`{"nutrients":{}}`)))
}

func TestDecodeSanitizesFields(t *testing.T) {
	raw := strPtr(`{
		"version": 2,
		"feel_after": 9,
		"nutrients": {"protein_g": "30", "sodium_mg": 99999, "bogus": 1},
		"positive": ["  ok  ", "", "a", "b", "c", "d"],
		"improve": "not a list",
		"recommendation": 42,
		"recommendation_options": [1, true, " water "],
		"confidence": "HIGH"
	}`)

	meta := Decode(raw)
	require.NotNil(t, meta)
	assert.Equal(t, 5, *meta.FeelAfter, "feel rating clamps to 5")
	assert.Equal(t, 30.0, meta.Nutrients.ProteinG)
	assert.Equal(t, 12000.0, meta.Nutrients.SodiumMg)
	assert.Equal(t, []string{"ok", "a", "b", "c"}, meta.Positive, "trimmed, filtered, capped at 4")
	assert.Equal(t, []string{}, meta.Improve)
	assert.Equal(t, "", meta.Recommendation)
	assert.Equal(t, []string{"1", "true", "water"}, meta.RecommendationOptions)
	assert.Equal(t, models.HighConfidence, meta.Confidence)
}

func TestDecodeFeelAfterEdges(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{`{"version":2,"feel_after":0}`, nil},
		{`{"version":2,"feel_after":0.4}`, nil},
		{`{"version":2,"feel_after":1}`, intPtr(1)},
		{`{"version":2,"feel_after":3.6}`, intPtr(4)},
		{`{"version":2,"feel_after":null}`, nil},
		{`{"version":2,"feel_after":"3"}`, nil},
		{`{"version":2}`, nil},
	}
	for _, tt := range tests {
		meta := Decode(strPtr(tt.raw))
		require.NotNil(t, meta, tt.raw)
		if tt.want == nil {
			assert.Nil(t, meta.FeelAfter, tt.raw)
		} else {
			require.NotNil(t, meta.FeelAfter, tt.raw)
			assert.Equal(t, *tt.want, *meta.FeelAfter, tt.raw)
		}
	}
}

func TestDecodeConfidenceDefaultsToMedium(t *testing.T) {
	for _, raw := range []string{
		`{"version":2,"confidence":"certain"}`,
		`{"version":2,"confidence":5}`,
		`{"version":2}`,
	} {
		meta := Decode(strPtr(raw))
		require.NotNil(t, meta, raw)
		assert.Equal(t, models.MediumConfidence, meta.Confidence, raw)
	}
}
