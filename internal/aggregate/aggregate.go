// internal/aggregate/aggregate.go
//
// Pure aggregation over logged meals: weighted quality averages, nutrient
// sums, streaks, and coverage against daily targets. Nothing here touches
// storage or mutates its inputs; every function derives fresh values from
// the entries it is handed, so concurrent callers are safe by construction.
package aggregate

import (
	"math"
	"time"

	"mcp-nutrition-log/internal/entrymeta"
	"mcp-nutrition-log/internal/models"
	"mcp-nutrition-log/internal/nutrient"
	"mcp-nutrition-log/internal/units"
)

// WeightedAverage is the portion-weighted mean of the entries' whole-foods
// scores, rounded to the nearest integer. An empty set averages to 0.
func WeightedAverage(entries []models.MealEntry) int {
	var weightedSum, totalWeight float64
	for i := range entries {
		w := entries[i].Weight()
		weightedSum += float64(entries[i].WholeFoodsPercent) * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(weightedSum / totalWeight))
}

// SumNutrients folds the decoded nutrient vectors of the given entries.
// Entries whose notes carry no decodable metadata contribute nothing; they
// are skipped, not treated as errors.
func SumNutrients(entries []models.MealEntry) nutrient.Totals {
	var total nutrient.Totals
	for i := range entries {
		meta := entrymeta.Decode(entries[i].Notes)
		if meta == nil {
			continue
		}
		total = nutrient.Add(total, meta.Nutrients)
	}
	return total
}

// DailyAverages groups entries by local day-key and computes each day's
// weighted average score.
func DailyAverages(entries []models.MealEntry) map[string]int {
	byDay := make(map[string][]models.MealEntry)
	for _, e := range entries {
		key := units.DayKey(e.Timestamp)
		byDay[key] = append(byDay[key], e)
	}
	averages := make(map[string]int, len(byDay))
	for key, dayEntries := range byDay {
		averages[key] = WeightedAverage(dayEntries)
	}
	return averages
}

// ComputeStreak counts consecutive qualifying days walking backward from the
// day of now. A day qualifies when its weighted average meets goalPercent;
// the walk stops at the first day with no entries or with an average below
// goal. A day with zero entries breaks the streak rather than being skipped.
func ComputeStreak(entries []models.MealEntry, goalPercent int, now time.Time) int {
	averages := DailyAverages(entries)

	streak := 0
	for day := now; ; day = day.AddDate(0, 0, -1) {
		avg, ok := averages[units.DayKey(day)]
		if !ok || avg < goalPercent {
			break
		}
		streak++
	}
	return streak
}

// CoveragePercent expresses actual against target as a percentage clamped to
// [0,140]. Overshoot past 140 is truncated for display; a zero target reads
// as 0 rather than dividing by zero. The same formula serves both nutrient
// classes; only the banding below interprets them differently.
func CoveragePercent(actual, target float64) int {
	if target == 0 {
		return 0
	}
	pct := math.Round(actual / target * 100)
	if pct < 0 {
		return 0
	}
	if pct > 140 {
		return 140
	}
	return int(pct)
}

// Color is the qualitative coverage band shown for a nutrient.
type Color string

const (
	ColorGood    Color = "good"
	ColorWarn    Color = "warn"
	ColorBad     Color = "bad"
	ColorUnknown Color = "unknown"
)

// TrafficColor bands a nutrient's coverage. Target-fill nutrients grade on
// the clamped percentage (full coverage is good); upper-bound nutrients grade
// on the raw unclamped ratio, since for them exceeding the target is the
// failure mode. A zero target cannot be banded.
func TrafficColor(class nutrient.Class, actual, target float64) Color {
	if target == 0 {
		return ColorUnknown
	}
	if class == nutrient.UpperBound {
		ratio := actual / target * 100
		switch {
		case ratio <= 70:
			return ColorGood
		case ratio <= 100:
			return ColorWarn
		default:
			return ColorBad
		}
	}
	coverage := CoveragePercent(actual, target)
	switch {
	case coverage >= 100:
		return ColorGood
	case coverage >= 75:
		return ColorWarn
	default:
		return ColorBad
	}
}

// Coverage is one nutrient's standing against its target. Percent is the
// clamped display value; Ratio is the raw unclamped percentage kept around
// for alerting on far-over upper-bound nutrients.
type Coverage struct {
	Key     string  `json:"key"`
	Actual  float64 `json:"actual"`
	Target  float64 `json:"target"`
	Percent int     `json:"percent"`
	Ratio   float64 `json:"ratio"`
	Color   Color   `json:"color"`
}

// CoverageReport grades an accumulated nutrient vector against a target
// vector, one Coverage per nutrient in canonical field order.
func CoverageReport(actual, target nutrient.Totals) []Coverage {
	report := make([]Coverage, 0, len(nutrient.Fields()))
	for _, f := range nutrient.Fields() {
		a := f.Get(&actual)
		t := f.Get(&target)
		ratio := 0.0
		if t != 0 {
			ratio = a / t * 100
		}
		report = append(report, Coverage{
			Key:     f.Key,
			Actual:  a,
			Target:  t,
			Percent: CoveragePercent(a, t),
			Ratio:   ratio,
			Color:   TrafficColor(f.Class, a, t),
		})
	}
	return report
}
