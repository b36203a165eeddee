// internal/targets/targets.go
package targets

import (
	"math"

	"mcp-nutrition-log/internal/nutrient"
	"mcp-nutrition-log/internal/profile"
)

// ComputeDefaults derives the default daily nutrient targets from a profile.
// Pure and deterministic: the same profile always yields the same vector.
//
// Protein, fat and carbs scale with body weight; carbs additionally scale
// with activity. Micronutrient targets are sex-keyed RDA-style constants,
// the rest are fixed.
func ComputeDefaults(p profile.Profile) nutrient.Totals {
	weightKg := p.WeightKg()

	carbsMultiplier := 1.8
	switch {
	case p.AvgSteps >= 12000:
		carbsMultiplier = 3.1
	case p.AvgSteps >= 7000:
		carbsMultiplier = 2.4
	}

	t := nutrient.Totals{
		ProteinG: clampRound(weightKg*1.6, 80, 220),
		FatG:     clampRound(weightKg*0.8, 45, 120),
		CarbsG:   clampRound(weightKg*carbsMultiplier, 120, 420),

		FiberG:         bySex(p.Sex, 28, 38, 33),
		IronMg:         bySex(p.Sex, 18, 11, 11),
		ZincMg:         bySex(p.Sex, 8, 11, 11),
		MagnesiumMg:    bySex(p.Sex, 320, 420, 370),
		VitaminCMg:     bySex(p.Sex, 75, 90, 82),
		Omega3G:        bySex(p.Sex, 1.1, 1.6, 1.3),
		CholineMg:      bySex(p.Sex, 425, 550, 500),
		VitaminAMcgRAE: bySex(p.Sex, 700, 900, 800),
		VitaminKMcg:    bySex(p.Sex, 90, 120, 105),

		SaturatedFatG: 20,
		AddedSugarG:   50,
		SodiumMg:      2300,
		CholesterolMg: 300,
		PotassiumMg:   3500,
		CalciumMg:     1000,
		VitaminDMcg:   15,
		VitaminB12Mcg: 2.4,
		VitaminB6Mg:   1.7,
		FolateMcg:     400,
		IodineMcg:     150,
		SeleniumMcg:   55,
		VitaminEMg:    15,
	}
	return t
}

func bySex(s profile.Sex, female, male, other float64) float64 {
	switch s {
	case profile.Female:
		return female
	case profile.Male:
		return male
	default:
		return other
	}
}

func clampRound(v, lo, hi float64) float64 {
	r := math.Round(v)
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}
