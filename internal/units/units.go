// internal/units/units.go
package units

import (
	"math"
	"time"
)

const (
	kgPerLb = 0.45359237
	cmPerIn = 2.54
	inPerFt = 12
)

func LbsToKg(lbs float64) float64 {
	return lbs * kgPerLb
}

func KgToLbs(kg float64) float64 {
	return kg / kgPerLb
}

func FeetInchesToCm(feet, inches int) float64 {
	return float64(feet*inPerFt+inches) * cmPerIn
}

// CmToFeetInches converts a metric height to feet plus whole inches.
// Inches are rounded to the nearest whole inch; when rounding lands on 12
// the value carries into feet so the inch component stays in [0,11].
func CmToFeetInches(cm float64) (feet, inches int) {
	totalInches := cm / cmPerIn
	feet = int(math.Floor(totalInches / inPerFt))
	inches = int(math.Round(totalInches - float64(feet*inPerFt)))
	if inches == inPerFt {
		feet++
		inches = 0
	}
	return feet, inches
}

// DayKey returns the canonical YYYY-MM-DD key for the local calendar day of
// t. Two timestamps share a key iff they fall on the same local day; this is
// the partitioning key for all daily aggregation.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
