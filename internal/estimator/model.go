package estimator

import (
	"context"
	"fmt"
	"math"
)

// RevenueCoefficients parameterize a log-linear revenue model:
//
//	ln(revenue) = intercept + log_price*ln(price) + log_coverage*ln(coverage/100)
//	            + log_gdp*ln(gdp) + log_population*ln(population)
//	            + fossil_fuel*fossil_pct + year*(year-base_year)
//	            + policy_type[type] + region[region]
type RevenueCoefficients struct {
	Intercept     float64            `yaml:"intercept" json:"intercept"`
	LogPrice      float64            `yaml:"log_price" json:"log_price"`
	LogCoverage   float64            `yaml:"log_coverage" json:"log_coverage"`
	LogGDP        float64            `yaml:"log_gdp" json:"log_gdp"`
	LogPopulation float64            `yaml:"log_population" json:"log_population"`
	FossilFuel    float64            `yaml:"fossil_fuel" json:"fossil_fuel"`
	Year          float64            `yaml:"year" json:"year"`
	BaseYear      int                `yaml:"base_year" json:"base_year"`
	PolicyType    map[string]float64 `yaml:"policy_type" json:"policy_type"`
	Region        map[string]float64 `yaml:"region" json:"region"`
}

// RiskCoefficients parameterize a logistic abolishment model over the same
// features; HighIncome applies when the income group is "High income".
type RiskCoefficients struct {
	Intercept  float64            `yaml:"intercept" json:"intercept"`
	FossilFuel float64            `yaml:"fossil_fuel" json:"fossil_fuel"`
	LogGDP     float64            `yaml:"log_gdp" json:"log_gdp"`
	LogPrice   float64            `yaml:"log_price" json:"log_price"`
	Coverage   float64            `yaml:"coverage" json:"coverage"`
	HighIncome float64            `yaml:"high_income" json:"high_income"`
	Year       float64            `yaml:"year" json:"year"`
	BaseYear   int                `yaml:"base_year" json:"base_year"`
	PolicyType map[string]float64 `yaml:"policy_type" json:"policy_type"`
	Region     map[string]float64 `yaml:"region" json:"region"`
}

// Coefficients bundles both models.
type Coefficients struct {
	Revenue RevenueCoefficients `yaml:"revenue" json:"revenue"`
	Risk    RiskCoefficients    `yaml:"risk" json:"risk"`
}

// Model is the reference estimator. It is immutable and safe for concurrent use.
type Model struct {
	coef Coefficients
}

var (
	_ RevenueEstimator = (*Model)(nil)
	_ RiskEstimator    = (*Model)(nil)
)

// NewModel validates c and returns a Model.
func NewModel(c Coefficients) (*Model, error) {
	for name, v := range map[string]float64{
		"revenue.intercept": c.Revenue.Intercept,
		"revenue.log_price": c.Revenue.LogPrice,
		"risk.intercept":    c.Risk.Intercept,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("coefficient %s is not finite", name)
		}
	}
	if c.Revenue.LogPrice <= 0 {
		return nil, fmt.Errorf("coefficient revenue.log_price must be positive, got %v", c.Revenue.LogPrice)
	}
	return &Model{coef: c}, nil
}

// Coefficients returns the model parameters.
func (m *Model) Coefficients() Coefficients {
	return m.coef
}

// EstimateRevenue implements RevenueEstimator.
func (m *Model) EstimateRevenue(_ context.Context, in Input) (float64, error) {
	if err := checkInput(in); err != nil {
		return 0, err
	}
	c := m.coef.Revenue
	f := in.Features
	z := c.Intercept +
		c.LogPrice*math.Log(in.CarbonPrice) +
		c.LogCoverage*math.Log(in.CoveragePercent/100) +
		c.LogGDP*math.Log(f.GDP) +
		c.LogPopulation*math.Log(f.Population) +
		c.FossilFuel*f.FossilFuelPct +
		c.Year*float64(yearOffset(in.Year, c.BaseYear)) +
		c.PolicyType[string(in.PolicyType)] +
		c.Region[f.Region]
	return math.Exp(z), nil
}

// EstimateAbolishmentRisk implements RiskEstimator.
func (m *Model) EstimateAbolishmentRisk(_ context.Context, in Input) (float64, error) {
	if err := checkInput(in); err != nil {
		return 0, err
	}
	c := m.coef.Risk
	f := in.Features
	z := c.Intercept +
		c.FossilFuel*f.FossilFuelPct +
		c.LogGDP*math.Log(f.GDP) +
		c.LogPrice*math.Log(in.CarbonPrice) +
		c.Coverage*in.CoveragePercent +
		c.Year*float64(yearOffset(in.Year, c.BaseYear)) +
		c.PolicyType[string(in.PolicyType)] +
		c.Region[f.Region]
	if f.IncomeGroup == "High income" {
		z += c.HighIncome
	}
	return 1 / (1 + math.Exp(-z)), nil
}

func yearOffset(year, base int) int {
	if base == 0 {
		return 0
	}
	return year - base
}

func checkInput(in Input) error {
	switch {
	case !(in.CarbonPrice > 0):
		return fmt.Errorf("%w: carbon price %v", ErrInvalidInput, in.CarbonPrice)
	case !(in.CoveragePercent > 0):
		return fmt.Errorf("%w: coverage %v", ErrInvalidInput, in.CoveragePercent)
	case !(in.Features.GDP > 0):
		return fmt.Errorf("%w: gdp %v", ErrInvalidInput, in.Features.GDP)
	case !(in.Features.Population > 0):
		return fmt.Errorf("%w: population %v", ErrInvalidInput, in.Features.Population)
	}
	return nil
}
