// internal/targets/targets_test.go
package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mcp-nutrition-log/internal/profile"
)

func TestComputeDefaultsReference(t *testing.T) {
	// 180 lbs = 81.646... kg; protein 1.6x = 130.6 -> 131,
	// fat 0.8x = 65.3 -> 65, carbs 2.4x (8000 steps) = 195.95 -> 196.
	p := profile.Profile{
		Age: 34, HeightFt: 5, HeightIn: 10,
		WeightLbs: 180, Sex: profile.Male, AvgSteps: 8000,
	}
	got := ComputeDefaults(p)

	assert.Equal(t, 131.0, got.ProteinG)
	assert.Equal(t, 65.0, got.FatG)
	assert.Equal(t, 196.0, got.CarbsG)
	assert.Equal(t, 38.0, got.FiberG)
	assert.Equal(t, 11.0, got.IronMg)
	assert.Equal(t, 420.0, got.MagnesiumMg)
	assert.Equal(t, 1.6, got.Omega3G)
	assert.Equal(t, 900.0, got.VitaminAMcgRAE)
	assert.Equal(t, 120.0, got.VitaminKMcg)
}

func TestComputeDefaultsCarbMultiplierTiers(t *testing.T) {
	base := profile.Profile{Age: 30, HeightFt: 5, HeightIn: 8, WeightLbs: 160, Sex: profile.Other}

	tests := []struct {
		name  string
		steps int
		carbs float64
	}{
		{"sedentary", 4000, 131},  // 72.57kg * 1.8 = 130.6
		{"moderate", 7000, 174},   // 72.57kg * 2.4 = 174.2
		{"boundary below", 11999, 174},
		{"active", 12000, 225}, // 72.57kg * 3.1 = 225.0
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			p.AvgSteps = tt.steps
			assert.Equal(t, tt.carbs, ComputeDefaults(p).CarbsG)
		})
	}
}

func TestComputeDefaultsClampsMacros(t *testing.T) {
	light := profile.Profile{WeightLbs: 80, Sex: profile.Female, AvgSteps: 2000}
	got := ComputeDefaults(light)
	assert.Equal(t, 80.0, got.ProteinG, "protein floor")
	assert.Equal(t, 45.0, got.FatG, "fat floor")
	assert.Equal(t, 120.0, got.CarbsG, "carb floor")

	heavy := profile.Profile{WeightLbs: 550, Sex: profile.Male, AvgSteps: 20000}
	got = ComputeDefaults(heavy)
	assert.Equal(t, 220.0, got.ProteinG, "protein cap")
	assert.Equal(t, 120.0, got.FatG, "fat cap")
	assert.Equal(t, 420.0, got.CarbsG, "carb cap")
}

func TestComputeDefaultsSexKeyedConstants(t *testing.T) {
	p := profile.Default()

	p.Sex = profile.Female
	f := ComputeDefaults(p)
	assert.Equal(t, 18.0, f.IronMg)
	assert.Equal(t, 8.0, f.ZincMg)
	assert.Equal(t, 425.0, f.CholineMg)

	p.Sex = profile.Other
	o := ComputeDefaults(p)
	assert.Equal(t, 33.0, o.FiberG)
	assert.Equal(t, 370.0, o.MagnesiumMg)
	assert.Equal(t, 82.0, o.VitaminCMg)
	assert.Equal(t, 1.3, o.Omega3G)

	// Profile-independent constants.
	assert.Equal(t, 20.0, o.SaturatedFatG)
	assert.Equal(t, 50.0, o.AddedSugarG)
	assert.Equal(t, 2300.0, o.SodiumMg)
	assert.Equal(t, 300.0, o.CholesterolMg)
	assert.Equal(t, 2.4, o.VitaminB12Mcg)
}
