// internal/aggregate/summary.go
package aggregate

import (
	"time"

	"mcp-nutrition-log/internal/models"
	"mcp-nutrition-log/internal/nutrient"
	"mcp-nutrition-log/internal/units"
)

// DaySummary is one local day's rollup.
type DaySummary struct {
	DayKey       string          `json:"day_key"`
	EntryCount   int             `json:"entry_count"`
	AverageScore int             `json:"average_score"`
	Nutrients    nutrient.Totals `json:"nutrients"`
	Coverage     []Coverage      `json:"coverage"`
}

// WeekSummary is the rollup of the 7 local days ending at EndDay.
type WeekSummary struct {
	EndDay       string          `json:"end_day"`
	Days         []DaySummary    `json:"days"`
	EntryCount   int             `json:"entry_count"`
	AverageScore int             `json:"average_score"`
	Nutrients    nutrient.Totals `json:"nutrients"`
	Coverage     []Coverage      `json:"coverage"`
	Streak       int             `json:"streak"`
}

// SummarizeDay rolls up the entries falling on the local day of date against
// the daily targets. Entries outside that day are ignored.
func SummarizeDay(entries []models.MealEntry, targets nutrient.Totals, date time.Time) DaySummary {
	key := units.DayKey(date)
	var dayEntries []models.MealEntry
	for _, e := range entries {
		if units.DayKey(e.Timestamp) == key {
			dayEntries = append(dayEntries, e)
		}
	}

	total := SumNutrients(dayEntries)
	return DaySummary{
		DayKey:       key,
		EntryCount:   len(dayEntries),
		AverageScore: WeightedAverage(dayEntries),
		Nutrients:    total,
		Coverage:     CoverageReport(total, targets),
	}
}

// SummarizeWeek rolls up the 7 local days ending at end. Weekly coverage is
// graded against 7x the daily targets; the per-day breakdown reuses the
// daily grading. Streak is computed against goalPercent walking back from
// end, so it can extend past the 7-day window if older entries are supplied.
func SummarizeWeek(entries []models.MealEntry, targets nutrient.Totals, goalPercent int, end time.Time) WeekSummary {
	week := WeekSummary{EndDay: units.DayKey(end)}

	// Weekly targets may exceed single-day field ceilings by design, so the
	// scaling bypasses the clamped Add path.
	weekTargets := nutrient.Scale(targets, 7)
	var weekEntries []models.MealEntry

	for offset := 6; offset >= 0; offset-- {
		day := end.AddDate(0, 0, -offset)
		daySummary := SummarizeDay(entries, targets, day)
		week.Days = append(week.Days, daySummary)
		week.EntryCount += daySummary.EntryCount

		key := units.DayKey(day)
		for _, e := range entries {
			if units.DayKey(e.Timestamp) == key {
				weekEntries = append(weekEntries, e)
			}
		}
	}

	week.AverageScore = WeightedAverage(weekEntries)
	week.Nutrients = SumNutrients(weekEntries)
	week.Coverage = CoverageReport(week.Nutrients, weekTargets)
	week.Streak = ComputeStreak(entries, goalPercent, end)
	return week
}
