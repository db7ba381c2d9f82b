package estimator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoimpact/carbonsim/internal/features"
	"github.com/ecoimpact/carbonsim/internal/policy"
)

func testInput() Input {
	return Input{
		Country:         "Testland",
		PolicyType:      policy.CarbonTax,
		CarbonPrice:     50,
		CoveragePercent: 50,
		Year:            2025,
		Features: features.CountryFeatures{
			Region:        "Europe & Central Asia",
			IncomeGroup:   "High income",
			FossilFuelPct: 60,
			Population:    1e7,
			GDP:           5e5,
		},
	}
}

func TestNewModel(t *testing.T) {
	_, err := NewModel(Coefficients{Revenue: RevenueCoefficients{LogPrice: 1}})
	require.NoError(t, err)

	_, err = NewModel(Coefficients{Revenue: RevenueCoefficients{LogPrice: 0}})
	assert.Error(t, err)

	_, err = NewModel(Coefficients{Revenue: RevenueCoefficients{LogPrice: 1, Intercept: math.NaN()}})
	assert.Error(t, err)
}

func TestModel_EstimateRevenue(t *testing.T) {
	m, err := NewModel(Coefficients{Revenue: RevenueCoefficients{
		LogPrice:    1,
		LogCoverage: 1,
		PolicyType:  map[string]float64{"ETS": math.Log(0.5)},
	}})
	require.NoError(t, err)

	in := testInput()
	got, err := m.EstimateRevenue(context.Background(), in)
	require.NoError(t, err)
	// exp(ln 50 + ln 0.5) = 25
	assert.InDelta(t, 25.0, got, 1e-9)

	in.PolicyType = policy.ETS
	got, err = m.EstimateRevenue(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, got, 1e-9)

	t.Run("revenue grows with price", func(t *testing.T) {
		lo, _ := m.EstimateRevenue(context.Background(), in)
		in.CarbonPrice = 100
		hi, _ := m.EstimateRevenue(context.Background(), in)
		assert.Greater(t, hi, lo)
	})
}

func TestModel_EstimateAbolishmentRisk(t *testing.T) {
	m, err := NewModel(Coefficients{
		Revenue: RevenueCoefficients{LogPrice: 1},
		Risk: RiskCoefficients{
			Intercept:  0,
			HighIncome: -1,
			Region:     map[string]float64{"Europe & Central Asia": 1},
		},
	})
	require.NoError(t, err)

	got, err := m.EstimateAbolishmentRisk(context.Background(), testInput())
	require.NoError(t, err)
	// Region and income cancel out, leaving the logistic midpoint.
	assert.InDelta(t, 0.5, got, 1e-12)

	in := testInput()
	in.Features.IncomeGroup = "Upper middle income"
	got, err = m.EstimateAbolishmentRisk(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1)), got, 1e-12)
}

func TestModel_InvalidInput(t *testing.T) {
	m, err := NewModel(Coefficients{Revenue: RevenueCoefficients{LogPrice: 1}})
	require.NoError(t, err)

	mutations := map[string]func(*Input){
		"zero price":      func(in *Input) { in.CarbonPrice = 0 },
		"NaN coverage":    func(in *Input) { in.CoveragePercent = math.NaN() },
		"zero gdp":        func(in *Input) { in.Features.GDP = 0 },
		"zero population": func(in *Input) { in.Features.Population = 0 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := testInput()
			mutate(&in)
			_, err := m.EstimateRevenue(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidInput)
			_, err = m.EstimateAbolishmentRisk(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestFuncAdapters(t *testing.T) {
	rev := RevenueFunc(func(context.Context, Input) (float64, error) { return 42, nil })
	got, err := rev.EstimateRevenue(context.Background(), Input{})
	require.NoError(t, err)
	assert.InDelta(t, 42.0, got, 1e-9)

	boom := errors.New("boom")
	risk := RiskFunc(func(context.Context, Input) (float64, error) { return 0, boom })
	_, err = risk.EstimateAbolishmentRisk(context.Background(), Input{})
	assert.ErrorIs(t, err, boom)
}

func TestInputFor(t *testing.T) {
	req := policy.Request{Country: "X", PolicyType: policy.ETS, CarbonPrice: 10, CoveragePercent: 20}
	f := features.CountryFeatures{GDP: 1}
	in := InputFor(req, 2030, f)
	assert.Equal(t, "X", in.Country)
	assert.Equal(t, policy.ETS, in.PolicyType)
	assert.Equal(t, 2030, in.Year)
	assert.Equal(t, f, in.Features)
}
