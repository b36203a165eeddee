// internal/entrymeta/entrymeta.go
//
// Per-entry metadata is packed as a versioned JSON document into the entry's
// notes column. Decoding is deliberately forgiving: anything that is not a
// well-formed document of a known version reads as absent, and a document
// that does match is fully sanitized field by field, so callers never see a
// partial object.
package entrymeta

import (
	"encoding/json"
	"math"
	"strings"

	"mcp-nutrition-log/internal/models"
	"mcp-nutrition-log/internal/nutrient"
)

// Version is the current metadata schema version.
const Version = 2

// MetaV2 is the version-2 entry metadata.
type MetaV2 struct {
	Version               int                    `json:"version"`
	FeelAfter             *int                   `json:"feel_after"`
	Nutrients             nutrient.Totals        `json:"nutrients"`
	Positive              []string               `json:"positive"`
	Improve               []string               `json:"improve"`
	Recommendation        string                 `json:"recommendation"`
	RecommendationOptions []string               `json:"recommendation_options"`
	Confidence            models.ConfidenceLevel `json:"confidence"`
}

const maxListItems = 4

// Encode serializes meta to its canonical JSON form, forcing the version tag.
func Encode(meta MetaV2) (string, error) {
	meta.Version = Version
	data, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode reads an encoded notes value. It returns nil when raw is nil or
// empty, when it is not valid JSON, or when the version tag is anything but
// the current version; older or foreign formats are treated as absent, never
// migrated. A non-nil result is always fully sanitized.
func Decode(raw *string) *MetaV2 {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(*raw), &doc); err != nil {
		return nil
	}
	version, ok := doc["version"].(float64)
	if !ok || version != Version {
		return nil
	}

	meta := &MetaV2{
		Version:               Version,
		FeelAfter:             decodeFeelAfter(doc["feel_after"]),
		Positive:              models.NormalizeStringList(doc["positive"], maxListItems),
		Improve:               models.NormalizeStringList(doc["improve"], maxListItems),
		Recommendation:        stringOrEmpty(doc["recommendation"]),
		RecommendationOptions: models.NormalizeStringList(doc["recommendation_options"], maxListItems),
		Confidence:            models.NormalizeConfidence(doc["confidence"]),
	}
	if nutrients, ok := doc["nutrients"].(map[string]interface{}); ok {
		meta.Nutrients = nutrient.Sanitize(nutrients)
	} else {
		meta.Nutrients = nutrient.Sanitize(nil)
	}
	return meta
}

// decodeFeelAfter accepts a 1-5 rating. Values below 1 (and anything
// non-numeric) read as no rating; values above 5 clamp down.
func decodeFeelAfter(v interface{}) *int {
	f, ok := v.(float64)
	if !ok || f < 1 {
		return nil
	}
	rating := int(math.Round(f))
	if rating > 5 {
		rating = 5
	}
	if rating < 1 {
		rating = 1
	}
	return &rating
}

func stringOrEmpty(v interface{}) string {
	s, _ := v.(string)
	return s
}
