// internal/profile/profile.go
package profile

import "mcp-nutrition-log/internal/units"

type Sex string

const (
	Female Sex = "female"
	Male   Sex = "male"
	Other  Sex = "other"
)

// Profile holds the user attributes the target calculator derives daily
// nutrient targets from.
type Profile struct {
	Age       int     `json:"age"`
	HeightFt  int     `json:"heightFt"`
	HeightIn  int     `json:"heightIn"`
	WeightLbs float64 `json:"weightLbs"`
	Sex       Sex     `json:"sex"`
	AvgSteps  int     `json:"avgSteps"`
}

// Default is the fallback profile used whenever no persisted profile exists
// or the persisted one cannot be read.
func Default() Profile {
	return Profile{
		Age:       30,
		HeightFt:  5,
		HeightIn:  8,
		WeightLbs: 160,
		Sex:       Other,
		AvgSteps:  7000,
	}
}

// Clamped forces every field into its supported range and normalizes the sex
// value, so an edited or restored profile is always usable as-is.
func (p Profile) Clamped() Profile {
	p.Age = clampInt(p.Age, 13, 100)
	p.HeightFt = clampInt(p.HeightFt, 3, 8)
	p.HeightIn = clampInt(p.HeightIn, 0, 11)
	if p.WeightLbs < 80 {
		p.WeightLbs = 80
	}
	if p.WeightLbs > 550 {
		p.WeightLbs = 550
	}
	switch p.Sex {
	case Female, Male, Other:
	default:
		p.Sex = Other
	}
	p.AvgSteps = clampInt(p.AvgSteps, 1000, 40000)
	return p
}

// HeightCm is the metric height equivalent.
func (p Profile) HeightCm() float64 {
	return units.FeetInchesToCm(p.HeightFt, p.HeightIn)
}

// WeightKg is the metric weight equivalent.
func (p Profile) WeightKg() float64 {
	return units.LbsToKg(p.WeightLbs)
}

// Store is the persistence port for the profile. Loads fall back to Default
// rather than failing when nothing usable is stored.
type Store interface {
	LoadProfile() (Profile, error)
	SaveProfile(Profile) error
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
