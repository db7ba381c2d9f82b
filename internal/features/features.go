// Package features holds the per-country macro indicators fed to the estimators
// and the rules used to synthesize them for future years.
package features

import "math"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrDataNotFound is returned when a country or indicator has no data.
const ErrDataNotFound = constError("country data not found")

// CountryFeatures is the indicator set for one country in one year.
// GDP is in million USD.
type CountryFeatures struct {
	Region        string  `json:"region"`
	IncomeGroup   string  `json:"income_group"`
	FossilFuelPct float64 `json:"fossil_fuel_pct"`
	Population    float64 `json:"population"`
	GDP           float64 `json:"gdp_million"`
}

// PerCapitaGDP returns GDP per person in USD, or 0 when population is unknown.
func (f CountryFeatures) PerCapitaGDP() float64 {
	if f.Population <= 0 {
		return 0
	}
	return f.GDP * 1e6 / f.Population
}

// Provider looks up base-year indicators and total emissions.
type Provider interface {
	Features(country string, year int) (CountryFeatures, error)
	// TotalCO2 returns total CO2 emissions in Mt.
	TotalCO2(country string, year int) (float64, error)
}

// EvolutionRates controls how features are rolled forward.
type EvolutionRates struct {
	// FossilDeclinePP is the fossil-fuel share decline in percentage points per year.
	FossilDeclinePP float64 `yaml:"fossil_decline_pp"`
	// PopulationGrowth is the annual growth factor minus one.
	PopulationGrowth float64 `yaml:"population_growth"`
	// GDPGrowth is the annual growth factor minus one.
	GDPGrowth float64 `yaml:"gdp_growth"`
}

// DefaultEvolutionRates returns 0.5pp fossil decline, 1% population and 3% GDP growth.
func DefaultEvolutionRates() EvolutionRates {
	return EvolutionRates{
		FossilDeclinePP:  0.5,
		PopulationGrowth: 0.01,
		GDPGrowth:        0.03,
	}
}

// Evolve synthesizes the features t years after base.
// Region and income group are carried over unchanged; t <= 0 returns base.
func Evolve(base CountryFeatures, t int, rates EvolutionRates) CountryFeatures {
	if t <= 0 {
		return base
	}
	out := base
	out.FossilFuelPct = math.Max(0, base.FossilFuelPct-rates.FossilDeclinePP*float64(t))
	out.Population = base.Population * math.Pow(1+rates.PopulationGrowth, float64(t))
	out.GDP = base.GDP * math.Pow(1+rates.GDPGrowth, float64(t))
	return out
}
