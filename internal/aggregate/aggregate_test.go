// internal/aggregate/aggregate_test.go
package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-nutrition-log/internal/entrymeta"
	"mcp-nutrition-log/internal/models"
	"mcp-nutrition-log/internal/nutrient"
)

func entry(score int, weight float64, ts time.Time) models.MealEntry {
	w := weight
	return models.MealEntry{
		ID:                "e",
		WholeFoodsPercent: score,
		Timestamp:         ts,
		SizeWeight:        &w,
	}
}

func entryWithNutrients(t *testing.T, ts time.Time, n nutrient.Totals) models.MealEntry {
	t.Helper()
	encoded, err := entrymeta.Encode(entrymeta.MetaV2{Nutrients: n})
	require.NoError(t, err)
	return models.MealEntry{ID: "n", Timestamp: ts, Notes: &encoded}
}

func TestWeightedAverage(t *testing.T) {
	now := time.Now()

	assert.Equal(t, 0, WeightedAverage(nil))
	assert.Equal(t, 0, WeightedAverage([]models.MealEntry{}))

	assert.Equal(t, 60, WeightedAverage([]models.MealEntry{
		entry(80, 1, now), entry(40, 1, now),
	}))

	// A larger portion pulls the average toward its score.
	assert.Equal(t, 67, WeightedAverage([]models.MealEntry{
		entry(80, 2, now), entry(40, 1, now),
	}))

	// Missing size weight counts as 1.
	noWeight := models.MealEntry{WholeFoodsPercent: 90, Timestamp: now}
	assert.Equal(t, 85, WeightedAverage([]models.MealEntry{noWeight, entry(80, 1, now)}))
}

func TestSumNutrientsSkipsUndecodableMeta(t *testing.T) {
	now := time.Now()
	garbage := "not json"
	oldVersion := `{"version":1,"nutrients":{"protein_g":999}}`

	entries := []models.MealEntry{
		entryWithNutrients(t, now, nutrient.Totals{ProteinG: 30, SodiumMg: 500}),
		entryWithNutrients(t, now, nutrient.Totals{ProteinG: 25, SodiumMg: 300}),
		{ID: "no-notes", Timestamp: now},
		{ID: "garbage", Timestamp: now, Notes: &garbage},
		{ID: "v1", Timestamp: now, Notes: &oldVersion},
	}

	total := SumNutrients(entries)
	assert.Equal(t, 55.0, total.ProteinG)
	assert.Equal(t, 800.0, total.SodiumMg)
}

func TestComputeStreak(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
	day := func(offset int) time.Time { return now.AddDate(0, 0, -offset) }

	// Daily averages walking back from today: 82, 81, 79, 90.
	entries := []models.MealEntry{
		entry(82, 1, day(0)),
		entry(81, 1, day(1)),
		entry(79, 1, day(2)),
		entry(90, 1, day(3)),
	}
	assert.Equal(t, 2, ComputeStreak(entries, 80, now), "79 on day 3 breaks the streak")

	// A missing day breaks the streak even when older days qualify.
	gapped := []models.MealEntry{
		entry(85, 1, day(0)),
		entry(88, 1, day(2)),
		entry(91, 1, day(3)),
	}
	assert.Equal(t, 1, ComputeStreak(gapped, 80, now))

	// Today under goal means no streak at all.
	assert.Equal(t, 0, ComputeStreak([]models.MealEntry{entry(70, 1, day(0))}, 80, now))
	assert.Equal(t, 0, ComputeStreak(nil, 80, now))
}

func TestComputeStreakUsesWeightedDayAverage(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local)

	// Unweighted mean would be 77.5 and fail an 80 goal; the big portion at
	// 95 carries the day.
	entries := []models.MealEntry{
		entry(95, 2, now),
		entry(60, 1, now.Add(2 * time.Hour)),
	}
	assert.Equal(t, 1, ComputeStreak(entries, 80, now))
}

func TestCoveragePercent(t *testing.T) {
	assert.Equal(t, 0, CoveragePercent(50, 0), "zero target never divides")
	assert.Equal(t, 100, CoveragePercent(100, 100))
	assert.Equal(t, 120, CoveragePercent(120, 100))
	assert.Equal(t, 140, CoveragePercent(150, 100), "capped at 140")
	assert.Equal(t, 140, CoveragePercent(900, 100))
	assert.Equal(t, 50, CoveragePercent(15, 30))
	assert.Equal(t, 67, CoveragePercent(2, 3), "rounds to nearest")
}

func TestTrafficColorTargetFill(t *testing.T) {
	tests := []struct {
		actual, target float64
		want           Color
	}{
		{100, 100, ColorGood},
		{130, 100, ColorGood},
		{75, 100, ColorWarn},
		{99, 100, ColorWarn},
		{74, 100, ColorBad},
		{0, 100, ColorBad},
		{1, 0, ColorUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrafficColor(nutrient.TargetFill, tt.actual, tt.target),
			"actual=%v target=%v", tt.actual, tt.target)
	}
}

func TestTrafficColorUpperBound(t *testing.T) {
	tests := []struct {
		actual, target float64
		want           Color
	}{
		{70, 100, ColorGood},
		{0, 100, ColorGood},
		{71, 100, ColorWarn},
		{100, 100, ColorWarn},
		{101, 100, ColorBad},
		// Way past the display clamp still bands on the raw ratio.
		{300, 100, ColorBad},
		{5, 0, ColorUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrafficColor(nutrient.UpperBound, tt.actual, tt.target),
			"actual=%v target=%v", tt.actual, tt.target)
	}
}

func TestCoverageReportKeepsRawRatio(t *testing.T) {
	actual := nutrient.Totals{SodiumMg: 6900, ProteinG: 65}
	target := nutrient.Totals{SodiumMg: 2300, ProteinG: 130}

	report := CoverageReport(actual, target)
	require.Len(t, report, 25)

	byKey := map[string]Coverage{}
	for _, c := range report {
		byKey[c.Key] = c
	}

	sodium := byKey["sodium_mg"]
	assert.Equal(t, 140, sodium.Percent, "display percent clamps")
	assert.InDelta(t, 300, sodium.Ratio, 1e-9, "raw ratio survives for alerting")
	assert.Equal(t, ColorBad, sodium.Color)

	protein := byKey["protein_g"]
	assert.Equal(t, 50, protein.Percent)
	assert.Equal(t, ColorBad, protein.Color)

	// Unset targets band as unknown.
	assert.Equal(t, ColorUnknown, byKey["omega3_g"].Color)
}
