package emissions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReductionRate(t *testing.T) {
	tests := []struct {
		price float64
		want  float64
	}{
		{-10, 0.03},
		{0, 0.03},
		{15, 0.03},
		{30, 0.03},
		{45, 0.04},
		{60, 0.05},
		{80, 0.065},
		{100, 0.08},
		{125, 0.10},
		{150, 0.12},
		{1000, 0.12},
		{math.NaN(), 0.03},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ReductionRate(tt.price), 1e-12, "price %v", tt.price)
	}
}

func TestReductionRate_BoundedAndMonotone(t *testing.T) {
	prev := 0.0
	for p := -5.0; p <= 400; p += 0.5 {
		r := ReductionRate(p)
		assert.GreaterOrEqual(t, r, 0.03)
		assert.LessOrEqual(t, r, MaxReductionRate)
		assert.GreaterOrEqual(t, r, prev, "rate decreased at price %v", p)
		prev = r
	}
}

func TestComputeImpact_Scenario(t *testing.T) {
	got, ok := ComputeImpact(50, 100, 60)
	require.True(t, ok)
	assert.InDelta(t, 100.0, got.TotalCO2, 1e-9)
	assert.InDelta(t, 50.0, got.CoveredCO2, 1e-9)
	assert.InDelta(t, 50.0, got.UncoveredCO2, 1e-9)
	assert.InDelta(t, 0.05, got.ReductionRateUsed, 1e-12)
	assert.InDelta(t, 2.5, got.PotentialReduction, 1e-9)
	assert.InDelta(t, 50.0, got.CoveredPercent, 1e-9)
	assert.InDelta(t, 50.0, got.UncoveredPercent, 1e-9)
}

func TestComputeImpact_Bounds(t *testing.T) {
	for _, total := range []float64{0.5, 1, 12.3, 100, 5000} {
		for _, cov := range []float64{10, 33, 50, 90} {
			for _, price := range []float64{1, 30, 75, 150, 900} {
				got, ok := ComputeImpact(cov, total, price)
				require.True(t, ok)
				assert.InDelta(t, got.TotalCO2, got.CoveredCO2+got.UncoveredCO2, 1e-9)
				assert.LessOrEqual(t, got.PotentialReduction, got.CoveredCO2*MaxReductionShare+1e-12)
				assert.GreaterOrEqual(t, got.PotentialReduction, 0.0)
				if got.CoveredCO2 >= MinPotentialReduction/MaxReductionShare {
					assert.GreaterOrEqual(t, got.PotentialReduction, MinPotentialReduction)
				}
			}
		}
	}
}

func TestComputeImpact_Floor(t *testing.T) {
	// 0.2 Mt covered at 3% would be 0.006 Mt; the floor lifts it to 0.01.
	got, ok := ComputeImpact(10, 2, 10)
	require.True(t, ok)
	assert.InDelta(t, MinPotentialReduction, got.PotentialReduction, 1e-12)
}

func TestComputeImpact_Unknown(t *testing.T) {
	for _, total := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		got, ok := ComputeImpact(50, total, 60)
		assert.False(t, ok)
		assert.Zero(t, got.TotalCO2)
		assert.Zero(t, got.PotentialReduction)
		assert.InDelta(t, 50.0, got.CoveredPercent, 1e-9)
	}
}

func TestImpact_WithPopulation(t *testing.T) {
	got, _ := ComputeImpact(50, 100, 60)
	got = got.WithPopulation(10_000_000)
	assert.InDelta(t, 5.0, got.CoveredPerCapitaTonnes, 1e-9)

	unchanged := got.WithPopulation(0)
	assert.InDelta(t, 5.0, unchanged.CoveredPerCapitaTonnes, 1e-9)
}

func TestImpact_Disclaimer(t *testing.T) {
	got, _ := ComputeImpact(50, 100, 60)
	assert.Contains(t, got.Disclaimer(), "5.0%")
	assert.Contains(t, got.Disclaimer(), "$60")
	assert.Contains(t, Zero(50, 60).Disclaimer(), "unavailable")
}
