package engine

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ecoimpact/carbonsim/internal/engine/cache"
	"github.com/ecoimpact/carbonsim/internal/estimator"
	"github.com/ecoimpact/carbonsim/internal/features"
	"github.com/ecoimpact/carbonsim/internal/metrics"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/projection"
	"github.com/ecoimpact/carbonsim/internal/refdata"
	"github.com/ecoimpact/carbonsim/internal/risk"
)

const fixture = `
schema_version: "1.0.0"
name: engine-fixture
countries:
  - name: Testland
    region: Europe & Central Asia
    income_group: High income
    series:
      - {year: 2025, fossil_fuel_pct: 60, population: 10000000, gdp_million: 500000, co2_mt: 10}
  - name: Newland
    region: Sub-Saharan Africa
    income_group: Lower middle income
    series:
      - {year: 2025, fossil_fuel_pct: 40, population: 5000000, gdp_million: 20000, co2_mt: 4}
  - name: Nodata
    series:
      - {year: 2025, fossil_fuel_pct: 40, population: 5000000, gdp_million: 20000}
policies:
  - {jurisdiction: Testland, name: T tax, type: Carbon tax, status: Implemented, year: 2015, region: Europe & Central Asia, carbon_price: 40, coverage_pct: 30, revenue_million: 500}
  - {jurisdiction: Nodata, name: N tax, type: Carbon tax, status: Abolished, year: 2010, region: East Asia & Pacific, carbon_price: 5, coverage_pct: 20, revenue_million: 10}
models:
  revenue:
    intercept: -6.9
    log_price: 1
    log_coverage: 1
    log_gdp: 0.85
  risk:
    intercept: -1
`

type mockRisk struct {
	mock.Mock
}

func (m *mockRisk) EstimateAbolishmentRisk(ctx context.Context, in estimator.Input) (float64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(float64), args.Error(1)
}

func lowRisk() *mockRisk {
	m := &mockRisk{}
	m.On("EstimateAbolishmentRisk", mock.Anything, mock.Anything).Return(0.2, nil)
	return m
}

func constantRevenue(v float64, calls *int32) estimator.RevenueFunc {
	return func(context.Context, estimator.Input) (float64, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		return v, nil
	}
}

func loadFixture(t *testing.T) *refdata.Dataset {
	t.Helper()
	ds, err := refdata.Parse([]byte(fixture))
	require.NoError(t, err)
	return ds
}

func newTestEngine(
	t *testing.T,
	rev estimator.RevenueEstimator,
	riskEst estimator.RiskEstimator,
	options ...Option,
) *Engine {
	t.Helper()
	options = append([]Option{WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	})}, options...)
	e, err := New(loadFixture(t), rev, riskEst, projection.DefaultOptions(), options...)
	require.NoError(t, err)
	return e
}

func testRequest(country string, price float64) policy.Request {
	return policy.Request{
		Country:         country,
		PolicyType:      policy.CarbonTax,
		CarbonPrice:     price,
		CoveragePercent: 50,
		StartYear:       2025,
		ProjectionYears: 3,
	}
}

func TestSimulate(t *testing.T) {
	riskEst := lowRisk()
	e := newTestEngine(t, constantRevenue(100, nil), riskEst)

	res, err := e.Simulate(context.Background(), testRequest("testland", 40))
	require.NoError(t, err)

	assert.Len(t, res.ID, 26)
	assert.Equal(t, "Testland", res.Request.Country)
	assert.Equal(t, "Carbon tax - Testland 2025", res.PolicyName)
	assert.Equal(t, "engine-fixture@1.0.0", res.Dataset)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), res.GeneratedAt)
	assert.False(t, res.Cached)

	assert.InDelta(t, 100.0, res.Revenue, 1e-9)
	assert.False(t, res.RevenueFallback)
	assert.Equal(t, risk.LowRisk, res.Risk.Category)
	assert.Equal(t, risk.ConfidenceHigh, res.Risk.Confidence)
	assert.InDelta(t, 100.0, res.RiskAdjustedValue, 1e-9, "low risk keeps full revenue")

	assert.True(t, res.EmissionsAvailable)
	assert.InDelta(t, 10.0, res.Emissions.TotalCO2, 1e-9)
	assert.InDelta(t, 5.0, res.Emissions.CoveredCO2, 1e-9)
	assert.InDelta(t, 5*(0.03+0.02/3), res.Emissions.PotentialReduction, 1e-9)
	assert.InDelta(t, 0.5, res.Emissions.CoveredPerCapitaTonnes, 1e-9)
	assert.False(t, res.Equivalencies.IsEmpty)
	assert.Contains(t, res.Disclaimer, "$40/tCO2")

	assert.Equal(t, "Favorable conditions for policy implementation.", res.Narrative.Recommendation)
	require.NotNil(t, res.Narrative.Benchmark)

	require.Len(t, res.Projections, 3)
	for i, entry := range res.Projections {
		assert.Equal(t, 2025+i, entry.Year)
	}
	assert.InDelta(t, 100.0, res.Projections[0].Revenue, 1e-9)
	assert.InDelta(t, 101.5, res.Projections[1].Revenue, 1e-9)

	last, ok := res.Final()
	require.True(t, ok)
	assert.Equal(t, 2027, last.Year)

	riskEst.AssertNumberOfCalls(t, "EstimateAbolishmentRisk", 3)
}

func TestSimulate_NoHistory(t *testing.T) {
	riskEst := &mockRisk{}
	e := newTestEngine(t, constantRevenue(50, nil), riskEst)

	res, err := e.Simulate(context.Background(), testRequest("Newland", 40))
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.Risk.Probability, 1e-12)
	assert.Equal(t, risk.AtRisk, res.Risk.Category)
	assert.Equal(t, risk.ConfidenceLow, res.Risk.Confidence)
	assert.False(t, res.Risk.HasHistory)
	assert.InDelta(t, 25.0, res.RiskAdjustedValue, 1e-9)
	assert.False(t, res.Narrative.Success.HasHistoricalData)
	riskEst.AssertNotCalled(t, "EstimateAbolishmentRisk", mock.Anything, mock.Anything)
}

func TestSimulate_MissingEmissions(t *testing.T) {
	e := newTestEngine(t, constantRevenue(50, nil), lowRisk())

	res, err := e.Simulate(context.Background(), testRequest("Nodata", 40))
	require.NoError(t, err)

	assert.False(t, res.EmissionsAvailable)
	assert.Zero(t, res.Emissions.PotentialReduction)
	assert.True(t, res.Equivalencies.IsEmpty)
	assert.Contains(t, res.Disclaimer, "unavailable")
	for _, entry := range res.Projections {
		assert.Zero(t, entry.CO2ReducedCumulative)
	}
}

func TestSimulate_InvalidInput(t *testing.T) {
	e := newTestEngine(t, constantRevenue(50, nil), lowRisk())

	tests := []struct {
		name    string
		req     policy.Request
		wantErr error
	}{
		{"zero price", testRequest("Testland", 0), policy.ErrInvalidRequest},
		{"coverage too high", func() policy.Request {
			r := testRequest("Testland", 40)
			r.CoveragePercent = 95
			return r
		}(), policy.ErrInvalidRequest},
		{"too many years", func() policy.Request {
			r := testRequest("Testland", 40)
			r.ProjectionYears = policy.MaxProjectionYears + 1
			return r
		}(), policy.ErrInvalidRequest},
		{"unknown country", testRequest("Atlantis", 40), features.ErrDataNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Simulate(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSimulate_RevenueFallback(t *testing.T) {
	rec := metrics.New()
	nan := estimator.RevenueFunc(func(context.Context, estimator.Input) (float64, error) {
		return math.NaN(), nil
	})
	e := newTestEngine(t, nan, lowRisk(), WithMetrics(rec))

	res, err := e.Simulate(context.Background(), testRequest("Testland", 40))
	require.NoError(t, err)

	// 40 USD/t x 5 Mt covered x 5% effective rate.
	assert.InDelta(t, 10.0, res.Revenue, 1e-9)
	assert.True(t, res.RevenueFallback)
	assert.InDelta(t, 10.15, res.Projections[1].Revenue, 1e-9)
	assert.True(t, res.Projections[1].RevenueFallback)

	assert.InDelta(t, 3.0, testutil.ToFloat64(rec.RevenueFallbacks.WithLabelValues("Testland")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.Simulations.WithLabelValues("Carbon tax", "ok")), 1e-9)
}

func TestSimulate_RiskEstimatorError(t *testing.T) {
	riskEst := &mockRisk{}
	riskEst.On("EstimateAbolishmentRisk", mock.Anything, mock.Anything).Return(0.0, errors.New("model offline"))
	rec := metrics.New()
	e := newTestEngine(t, constantRevenue(50, nil), riskEst, WithMetrics(rec))

	_, err := e.Simulate(context.Background(), testRequest("Testland", 40))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.Simulations.WithLabelValues("Carbon tax", "error")), 1e-9)
}

func TestSimulate_Cache(t *testing.T) {
	store, err := cache.NewFileStore(t.TempDir(), true, cache.DefaultTTLSeconds, 0)
	require.NoError(t, err)
	rec := metrics.New()

	var calls int32
	e := newTestEngine(t, constantRevenue(100, &calls), lowRisk(), WithCache(store), WithMetrics(rec))

	first, err := e.Simulate(context.Background(), testRequest("Testland", 40))
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	second, err := e.Simulate(context.Background(), testRequest("Testland", 40))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Risk, second.Risk)
	assert.Equal(t, first.Equivalencies.CarsOffRoad, second.Equivalencies.CarsOffRoad)
	assert.Equal(t, first.Projections, second.Projections)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "cached result skips the estimators")

	third, err := e.Simulate(context.Background(), testRequest("Testland", 41))
	require.NoError(t, err)
	assert.False(t, third.Cached)

	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.CacheLookups.WithLabelValues("hit")), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(rec.CacheLookups.WithLabelValues("miss")), 1e-9)
}

func TestCompare(t *testing.T) {
	e := newTestEngine(t, constantRevenue(100, nil), lowRisk())

	c, err := e.Compare(context.Background(), testRequest("Testland", 40), testRequest("Testland", 80))
	require.NoError(t, err)

	assert.Equal(t, "Testland", c.Left.Request.Country)
	assert.InDelta(t, 0.0, c.Delta.Revenue, 1e-9)
	// 5 Mt covered at 6.5% versus 3.667%.
	assert.InDelta(t, 5*0.065-5*(0.03+0.02/3), c.Delta.PotentialReduction, 1e-9)
	assert.Positive(t, c.Delta.CO2ReducedCumulative)

	_, err = e.Compare(context.Background(), testRequest("Testland", 40), testRequest("Atlantis", 40))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "second policy")
}

func TestNewFromDataset(t *testing.T) {
	ds, err := refdata.Default()
	require.NoError(t, err)

	e, err := NewFromDataset(ds, projection.DefaultOptions())
	require.NoError(t, err)

	res, err := e.Simulate(context.Background(), policy.Request{
		Country:         "Canada",
		PolicyType:      policy.CarbonTax,
		CarbonPrice:     65,
		CoveragePercent: 40,
	})
	require.NoError(t, err)
	assert.Len(t, res.Projections, policy.DefaultProjectionYears)
	assert.Equal(t, policy.DefaultStartYear, res.Projections[0].Year)
	assert.Positive(t, res.Revenue)
	assert.True(t, res.Risk.HasHistory)

	for i := 1; i < len(res.Projections); i++ {
		prev, cur := res.Projections[i-1], res.Projections[i]
		assert.GreaterOrEqual(t, cur.CumulativeRevenue, prev.CumulativeRevenue)
		assert.GreaterOrEqual(t, cur.Revenue, prev.Revenue*1.015-1e-9)
		assert.LessOrEqual(t, cur.Revenue, prev.Revenue*3+1e-9)
	}
}

func TestNew_Validation(t *testing.T) {
	ds := loadFixture(t)
	_, err := New(nil, constantRevenue(1, nil), lowRisk(), projection.DefaultOptions())
	assert.Error(t, err)

	bad := projection.DefaultOptions()
	bad.MaxYears = 0
	_, err = New(ds, constantRevenue(1, nil), lowRisk(), bad)
	assert.ErrorIs(t, err, projection.ErrInvalidOptions)
}
