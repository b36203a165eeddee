// internal/estimate/normalize.go
package estimate

import (
	"math"

	"mcp-nutrition-log/internal/models"
	"mcp-nutrition-log/internal/nutrient"
)

// Estimate is the validated result of a meal-text estimation. It only exists
// between the estimation call and the moment the user saves or discards the
// draft; saving converts it into entry metadata.
type Estimate struct {
	OptimalScore          int                    `json:"optimal_score"`
	Summary               string                 `json:"summary"`
	Positive              []string               `json:"positive"`
	Improve               []string               `json:"improve"`
	Nutrients             nutrient.Totals        `json:"nutrients"`
	Recommendation        string                 `json:"recommendation"`
	RecommendationOptions []string               `json:"recommendation_options"`
	SizeLabel             string                 `json:"size_label"`
	SizeWeight            float64                `json:"size_weight"`
	Confidence            models.ConfidenceLevel `json:"confidence"`
}

const (
	maxHighlights = 3
	maxOptions    = 4
)

// Normalize converts an arbitrary decoded JSON value from the estimation
// service into a fully-valid Estimate. It never fails: missing fields, wrong
// types, and nested nulls all degrade to safe defaults per field.
func Normalize(v interface{}) Estimate {
	doc, _ := v.(map[string]interface{})

	est := Estimate{
		OptimalScore:          normalizeScore(doc["optimal_score"]),
		Summary:               stringOr(doc["summary"], ""),
		Positive:              models.NormalizeStringList(doc["positive"], maxHighlights),
		Improve:               models.NormalizeStringList(doc["improve"], maxHighlights),
		Recommendation:        stringOr(doc["recommendation"], ""),
		RecommendationOptions: models.NormalizeStringList(doc["recommendation_options"], maxOptions),
		SizeLabel:             stringOr(doc["size_label"], "medium"),
		SizeWeight:            normalizeSizeWeight(doc["size_weight"]),
		Confidence:            models.NormalizeConfidence(doc["confidence"]),
	}
	if nutrients, ok := doc["nutrients"].(map[string]interface{}); ok {
		est.Nutrients = nutrient.Sanitize(nutrients)
	} else {
		est.Nutrients = nutrient.Sanitize(nil)
	}
	return est
}

func normalizeScore(v interface{}) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	score := int(math.Round(f))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func normalizeSizeWeight(v interface{}) float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	if f < 0.5 {
		return 0.5
	}
	if f > 2 {
		return 2
	}
	return f
}

func stringOr(v interface{}, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}
