// internal/models/entry.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// MealEntry is a persisted logged meal. Notes carries the encoded entry
// metadata (see internal/entrymeta); the aggregation layer only ever reads
// entries, it never mutates them.
type MealEntry struct {
	ID                string    `json:"id"`
	MealText          string    `json:"mealText"`
	Timestamp         time.Time `json:"timestamp"`
	Mood              string    `json:"mood"`
	WholeFoodsPercent int       `json:"wholeFoodsPercent"`
	LLMReason         string    `json:"llmReason"`
	Notes             *string   `json:"notes"`
	SizeLabel         *string   `json:"sizeLabel"`
	SizeWeight        *float64  `json:"sizeWeight"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Weight is the entry's portion weight, defaulting to 1 when unset.
func (e *MealEntry) Weight() float64 {
	if e.SizeWeight == nil {
		return 1
	}
	return *e.SizeWeight
}

type ConfidenceLevel string

const (
	HighConfidence   ConfidenceLevel = "high"
	MediumConfidence ConfidenceLevel = "medium"
	LowConfidence    ConfidenceLevel = "low"
)

// NormalizeConfidence maps an arbitrary decoded JSON value onto a confidence
// level. Only exact (case-insensitive) "low" and "high" are honored;
// everything else is medium.
func NormalizeConfidence(v interface{}) ConfidenceLevel {
	s, ok := v.(string)
	if !ok {
		return MediumConfidence
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return LowConfidence
	case "high":
		return HighConfidence
	default:
		return MediumConfidence
	}
}

// NormalizeStringList stringifies an arbitrary decoded JSON value into at
// most max trimmed, non-empty strings. Non-list or nil input yields an empty
// list; scalar list items are stringified, nested structures are dropped.
func NormalizeStringList(v interface{}, max int) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, max)
	for _, item := range items {
		if len(out) == max {
			break
		}
		var s string
		switch x := item.(type) {
		case string:
			s = x
		case float64:
			s = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", x), "0"), ".")
		case bool:
			s = fmt.Sprintf("%t", x)
		default:
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Settings is the user-tunable goal configuration.
type Settings struct {
	GoalPercent int `json:"goalPercent"`
}

const DefaultGoalPercent = 80

// DefaultSettings returns the out-of-the-box settings.
func DefaultSettings() Settings {
	return Settings{GoalPercent: DefaultGoalPercent}
}

// Clamped returns a copy with the goal forced into [0,100].
func (s Settings) Clamped() Settings {
	if s.GoalPercent < 0 {
		s.GoalPercent = 0
	}
	if s.GoalPercent > 100 {
		s.GoalPercent = 100
	}
	return s
}
