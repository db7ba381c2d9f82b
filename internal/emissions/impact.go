// Package emissions estimates how much CO2 a carbon price could avoid.
//
// The model splits national emissions into a covered and an uncovered share
// and applies a price-dependent annual reduction rate to the covered share.
package emissions

import (
	"fmt"
	"math"
)

const (
	// BaseReductionRate applies at or below the lowest control price.
	BaseReductionRate = 0.03
	// MaxReductionRate is the ceiling any interpolated rate is held under.
	MaxReductionRate = 0.15
	// MaxReductionShare caps potential reduction as a share of covered emissions.
	MaxReductionShare = 0.20
	// MinPotentialReduction is the floor in Mt applied when covered emissions are positive.
	MinPotentialReduction = 0.01
)

type controlPoint struct {
	price float64
	rate  float64
}

//nolint:gochecknoglobals // Immutable interpolation table.
var controlPoints = []controlPoint{
	{0, 0.03},
	{30, 0.03},
	{60, 0.05},
	{100, 0.08},
	{150, 0.12},
}

// Impact is the emissions outcome of one policy in one year. Masses are Mt CO2.
type Impact struct {
	TotalCO2           float64 `json:"total_co2_mt"`
	CoveredCO2         float64 `json:"covered_co2_mt"`
	UncoveredCO2       float64 `json:"uncovered_co2_mt"`
	PotentialReduction float64 `json:"potential_reduction_mt"`
	ReductionRateUsed  float64 `json:"reduction_rate"`
	CoveredPercent     float64 `json:"covered_percent"`
	UncoveredPercent   float64 `json:"uncovered_percent"`
	CarbonPrice        float64 `json:"carbon_price"`
	// CoveredPerCapitaTonnes is set by WithPopulation.
	CoveredPerCapitaTonnes float64 `json:"covered_per_capita_tonnes,omitempty"`
}

// ReductionRate returns the annual reduction rate for covered emissions at price
// (USD/tCO2). The curve is piecewise linear between control points and
// non-decreasing in price.
func ReductionRate(price float64) float64 {
	if math.IsNaN(price) || price <= controlPoints[0].price {
		return BaseReductionRate
	}
	last := controlPoints[len(controlPoints)-1]
	if price >= last.price {
		return math.Min(last.rate, MaxReductionRate)
	}
	for i := 1; i < len(controlPoints); i++ {
		lo, hi := controlPoints[i-1], controlPoints[i]
		if price < hi.price {
			frac := (price - lo.price) / (hi.price - lo.price)
			return math.Min(lo.rate+frac*(hi.rate-lo.rate), MaxReductionRate)
		}
	}
	return math.Min(last.rate, MaxReductionRate)
}

// ComputeImpact derives the impact of covering coveragePct percent of
// totalCO2Mt at carbonPrice. ok is false when total emissions are unknown
// (non-finite) or not positive; the returned Impact is then Zero.
func ComputeImpact(coveragePct, totalCO2Mt, carbonPrice float64) (Impact, bool) {
	if math.IsNaN(totalCO2Mt) || math.IsInf(totalCO2Mt, 0) || totalCO2Mt <= 0 {
		return Zero(coveragePct, carbonPrice), false
	}

	share := math.Max(0, math.Min(coveragePct, 100)) / 100
	covered := totalCO2Mt * share
	uncovered := totalCO2Mt - covered
	rate := ReductionRate(carbonPrice)

	potential := covered * rate
	limit := covered * MaxReductionShare
	potential = math.Min(potential, limit)
	if covered > 0 {
		// The floor never lifts the result above the share cap.
		potential = math.Max(potential, math.Min(MinPotentialReduction, limit))
	}

	return Impact{
		TotalCO2:           totalCO2Mt,
		CoveredCO2:         covered,
		UncoveredCO2:       uncovered,
		PotentialReduction: potential,
		ReductionRateUsed:  rate,
		CoveredPercent:     share * 100,
		UncoveredPercent:   100 - share*100,
		CarbonPrice:        carbonPrice,
	}, true
}

// Zero is the impact reported when emissions data is missing.
func Zero(coveragePct, carbonPrice float64) Impact {
	share := math.Max(0, math.Min(coveragePct, 100))
	return Impact{
		ReductionRateUsed: ReductionRate(carbonPrice),
		CoveredPercent:    share,
		UncoveredPercent:  100 - share,
		CarbonPrice:       carbonPrice,
	}
}

// WithPopulation returns a copy with covered emissions per capita in tonnes.
func (i Impact) WithPopulation(population float64) Impact {
	if population > 0 {
		i.CoveredPerCapitaTonnes = i.CoveredCO2 * 1e6 / population
	}
	return i
}

// Disclaimer explains the assumptions behind the reduction estimate.
func (i Impact) Disclaimer() string {
	if i.TotalCO2 <= 0 {
		return "Emissions data unavailable for this country and year; reduction estimates are zero."
	}
	return fmt.Sprintf(
		"Estimated reduction assumes a %.1f%% annual cut in covered emissions at $%.0f/tCO2. "+
			"Actual outcomes depend on abatement costs, leakage and enforcement.",
		i.ReductionRateUsed*100, i.CarbonPrice,
	)
}
