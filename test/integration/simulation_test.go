// Package integration contains end-to-end tests that run carbonsim against
// the embedded reference dataset.
package integration

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/projection"
	"github.com/ecoimpact/carbonsim/internal/refdata"
	"github.com/ecoimpact/carbonsim/internal/risk"
)

func newEngine(t *testing.T) (*engine.Engine, *refdata.Dataset) {
	t.Helper()
	ds, err := refdata.Default()
	require.NoError(t, err)
	e, err := engine.NewFromDataset(ds, projection.DefaultOptions())
	require.NoError(t, err)
	return e, ds
}

// TestProjectionProperties checks the projection invariants for every country
// in the embedded dataset under both instruments.
func TestProjectionProperties(t *testing.T) {
	e, ds := newEngine(t)
	opts := projection.DefaultOptions()
	ctx := context.Background()

	for _, country := range ds.Countries() {
		for _, typ := range []policy.Type{policy.CarbonTax, policy.ETS} {
			t.Run(country+"/"+string(typ), func(t *testing.T) {
				req := policy.Request{
					Country:         country,
					PolicyType:      typ,
					CarbonPrice:     75,
					CoveragePercent: 40,
					StartYear:       2025,
					ProjectionYears: 8,
				}
				res, err := e.Simulate(ctx, req)
				require.NoError(t, err)
				require.Len(t, res.Projections, 8)

				var cumRevenue, cumReduced float64
				for i, p := range res.Projections {
					assert.Equal(t, 2025+i, p.Year)
					assert.Positive(t, p.Revenue)

					if i > 0 {
						prev := res.Projections[i-1].Revenue
						assert.GreaterOrEqual(t, p.Revenue, prev*(1+opts.MinRevenueGrowth)*(1-1e-9),
							"year %d grows at least the floor", p.Year)
						assert.LessOrEqual(t, p.Revenue, prev*opts.MaxRevenueMultiple*(1+1e-9),
							"year %d stays under the cap", p.Year)
						assert.GreaterOrEqual(t, p.CO2ReducedCumulative, res.Projections[i-1].CO2ReducedCumulative)
					}

					cumRevenue += p.Revenue
					cumReduced += p.CO2Reduced
					assert.InDelta(t, cumRevenue, p.CumulativeRevenue, 1e-6*math.Max(1, cumRevenue))
					assert.InDelta(t, cumReduced, p.CO2ReducedCumulative, 1e-9*math.Max(1, cumReduced))
					assert.InDelta(t, p.CO2ReducedCumulative, p.CO2ReducedFromBase, 1e-12)

					assert.GreaterOrEqual(t, p.CO2AfterReduction, 0.0)
					assert.GreaterOrEqual(t, p.AbolishmentRisk, 0.0)
					assert.LessOrEqual(t, p.AbolishmentRisk, 100.0)
					assert.Equal(t, risk.ClassifyPercent(p.AbolishmentRisk), p.RiskCategory)
					assert.LessOrEqual(t, p.RiskAdjustedValue, p.Revenue*(1+1e-9))
				}

				final, ok := res.Final()
				require.True(t, ok)
				assert.Equal(t, 2032, final.Year)
			})
		}
	}
}

func TestSimulate_MissingEmissionsDegrades(t *testing.T) {
	e, ds := newEngine(t)

	var country string
	for _, c := range ds.Countries() {
		if _, err := ds.TotalCO2(c, 2025); err != nil {
			country = c
			break
		}
	}
	if country == "" {
		t.Skip("every dataset country has 2025 emissions")
	}

	res, err := e.Simulate(context.Background(), policy.Request{
		Country:         country,
		PolicyType:      policy.CarbonTax,
		CarbonPrice:     50,
		CoveragePercent: 30,
		StartYear:       2025,
		ProjectionYears: 3,
	})
	require.NoError(t, err)
	assert.False(t, res.EmissionsAvailable)
	assert.Zero(t, res.Emissions.TotalCO2)
	assert.True(t, res.Equivalencies.IsEmpty)
	for _, p := range res.Projections {
		assert.Zero(t, p.CO2Reduced)
		assert.Positive(t, p.Revenue)
	}
}

func TestSimulate_YearsClampedToConfiguredBound(t *testing.T) {
	ds, err := refdata.Default()
	require.NoError(t, err)
	opts := projection.DefaultOptions()
	opts.MaxYears = 30
	e, err := engine.NewFromDataset(ds, opts)
	require.NoError(t, err)

	req := policy.Request{
		Country:         "Sweden",
		PolicyType:      policy.CarbonTax,
		CarbonPrice:     120,
		CoveragePercent: 33,
		StartYear:       2025,
		ProjectionYears: 30,
	}
	res, err := e.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, res.Projections, 30)

	req.ProjectionYears = 31
	_, err = e.Simulate(context.Background(), req)
	require.ErrorIs(t, err, engine.ErrInvalidInput)
}

func TestCompare_DeltaIsRightMinusLeft(t *testing.T) {
	e, _ := newEngine(t)
	left := policy.Request{
		Country:         "Chile",
		PolicyType:      policy.CarbonTax,
		CarbonPrice:     20,
		CoveragePercent: 30,
		StartYear:       2025,
		ProjectionYears: 5,
	}
	right := left
	right.CarbonPrice = 80

	c, err := e.Compare(context.Background(), left, right)
	require.NoError(t, err)

	lf, ok := c.Left.Final()
	require.True(t, ok)
	rf, ok := c.Right.Final()
	require.True(t, ok)
	assert.InDelta(t, rf.CumulativeRevenue-lf.CumulativeRevenue, c.Delta.CumulativeRevenue, 1e-6)
	assert.Greater(t, c.Right.Emissions.PotentialReduction, c.Left.Emissions.PotentialReduction,
		"a higher price cuts more emissions")
}
