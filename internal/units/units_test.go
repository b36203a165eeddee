// internal/units/units_test.go
package units

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLbsKgRoundTrip(t *testing.T) {
	assert.InDelta(t, 81.6466266, LbsToKg(180), 1e-6)
	assert.InDelta(t, 180, KgToLbs(LbsToKg(180)), 1e-9)
	assert.InDelta(t, 35, LbsToKg(KgToLbs(35)), 1e-9)
}

func TestFeetInchesToCm(t *testing.T) {
	assert.InDelta(t, 177.8, FeetInchesToCm(5, 10), 1e-9)
	assert.InDelta(t, 91.44, FeetInchesToCm(3, 0), 1e-9)
}

func TestCmToFeetInchesRoundTrip(t *testing.T) {
	for ft := 3; ft <= 8; ft++ {
		for in := 0; in <= 11; in++ {
			gotFt, gotIn := CmToFeetInches(FeetInchesToCm(ft, in))
			require.Equal(t, ft, gotFt, "feet for %d'%d\"", ft, in)
			require.Equal(t, in, gotIn, "inches for %d'%d\"", ft, in)
		}
	}
}

func TestCmToFeetInchesCarry(t *testing.T) {
	// 182.5cm is 71.85in: inches round to 12 and must carry into feet.
	ft, in := CmToFeetInches(182.5)
	assert.Equal(t, 6, ft)
	assert.Equal(t, 0, in)

	// Sweep the full supported range: inches never leave [0,11].
	for cm := 0.0; cm < 1000; cm += 0.25 {
		_, in := CmToFeetInches(cm)
		require.GreaterOrEqual(t, in, 0, "cm=%v", cm)
		require.LessOrEqual(t, in, 11, "cm=%v", cm)
	}
}

func TestDayKey(t *testing.T) {
	// 23:30 and 00:30 the next local day get distinct keys even though they
	// are only an hour apart.
	a := time.Date(2024, 3, 1, 23, 30, 0, 0, time.Local)
	b := a.Add(time.Hour)
	assert.Equal(t, "2024-03-01", DayKey(a))
	assert.Equal(t, "2024-03-02", DayKey(b))

	// The same instant expressed in UTC maps to the same local key.
	require.Equal(t, DayKey(a), DayKey(a.UTC()))
}
