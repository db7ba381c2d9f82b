// Package engine runs complete policy simulations: it looks up the base year,
// consults the estimators, translates the emissions outcome, builds the
// narrative and projects the series forward.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ecoimpact/carbonsim/internal/emissions"
	"github.com/ecoimpact/carbonsim/internal/engine/cache"
	"github.com/ecoimpact/carbonsim/internal/estimator"
	"github.com/ecoimpact/carbonsim/internal/features"
	"github.com/ecoimpact/carbonsim/internal/greenops"
	"github.com/ecoimpact/carbonsim/internal/logging"
	"github.com/ecoimpact/carbonsim/internal/metrics"
	"github.com/ecoimpact/carbonsim/internal/narrative"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/projection"
	"github.com/ecoimpact/carbonsim/internal/refdata"
	"github.com/ecoimpact/carbonsim/internal/risk"
)

const tracerName = "github.com/ecoimpact/carbonsim/internal/engine"

type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidInput is returned when a request cannot be simulated: it fails
// validation or the base-year country data is missing.
const ErrInvalidInput = constError("invalid simulation input")

// DataSource is the reference data a simulation reads.
type DataSource interface {
	features.Provider
	narrative.Source
	CanonicalName(name string) (string, bool)
	Name() string
	SchemaVersion() string
}

// ResultCache stores finished results by key.
type ResultCache interface {
	Load(key string, v any) error
	Store(key string, v any) error
}

// Engine orchestrates simulations. Safe for concurrent use.
type Engine struct {
	data      DataSource
	revenue   estimator.RevenueEstimator
	assessor  *risk.Assessor
	projector *projection.Engine
	narrator  *narrative.Builder
	cache     ResultCache
	metrics   *metrics.Recorder
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables result caching.
func WithCache(c ResultCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithMetrics records run metrics on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the result timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New wires an Engine from its collaborators.
func New(
	data DataSource,
	revenue estimator.RevenueEstimator,
	riskEstimator estimator.RiskEstimator,
	opts projection.Options,
	options ...Option,
) (*Engine, error) {
	if data == nil || revenue == nil || riskEstimator == nil {
		return nil, errors.New("engine: data source and estimators are required")
	}

	e := &Engine{
		data:     data,
		revenue:  revenue,
		assessor: risk.NewAssessor(data, riskEstimator),
		narrator: narrative.NewBuilder(data),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, o := range options {
		o(e)
	}

	var projOpts []projection.Option
	if e.metrics != nil {
		projOpts = append(projOpts, projection.WithObserver(e.metrics))
	}
	projector, err := projection.New(revenue, e.assessor, data, opts, projOpts...)
	if err != nil {
		return nil, err
	}
	e.projector = projector
	return e, nil
}

// NewFromDataset builds an Engine whose estimators use the dataset's model coefficients.
func NewFromDataset(ds *refdata.Dataset, opts projection.Options, options ...Option) (*Engine, error) {
	model, err := estimator.NewModel(ds.Models())
	if err != nil {
		return nil, fmt.Errorf("building model from dataset %s: %w", ds.Name(), err)
	}
	return New(ds, model, model, opts, options...)
}

// Options returns the projection heuristics in use.
func (e *Engine) Options() projection.Options {
	return e.projector.Options()
}

// Simulate runs one policy simulation.
func (e *Engine) Simulate(ctx context.Context, req policy.Request) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "engine.Simulate", trace.WithAttributes(
		attribute.String("country", req.Country),
		attribute.String("policy_type", string(req.PolicyType)),
	))
	defer span.End()

	res, err := e.simulate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.IncSimulation(string(req.PolicyType), "error")
		return nil, err
	}
	span.SetAttributes(attribute.Bool("cached", res.Cached))
	return res, nil
}

func (e *Engine) simulate(ctx context.Context, req policy.Request) (*Result, error) {
	log := logging.FromContext(ctx)

	req = req.WithDefaults()
	if name, ok := e.data.CanonicalName(req.Country); ok {
		req.Country = name
	}
	if err := req.ValidateWithMaxYears(e.projector.Options().MaxYears); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	key, cached := e.lookup(ctx, req)
	if cached != nil {
		e.metrics.IncSimulation(string(req.PolicyType), "cached")
		return cached, nil
	}

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "simulate").
		Str("policy", req.Name()).
		Float64("carbon_price", req.CarbonPrice).
		Float64("coverage_percent", req.CoveragePercent).
		Msg("starting simulation")

	base, err := e.data.Features(req.Country, req.StartYear)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	impact, available := e.baseImpact(ctx, req)
	impact = impact.WithPopulation(base.Population)

	revenue, fellBack := e.baseRevenue(ctx, req, base, impact.CoveredCO2)
	if fellBack {
		e.metrics.RevenueFallback(req.Country, req.StartYear)
	}

	assessment, err := e.assessor.Assess(ctx, estimator.InputFor(req, req.StartYear, base))
	if err != nil {
		return nil, fmt.Errorf("assessing base-year risk: %w", err)
	}

	started := time.Now()
	entries, err := e.projector.Project(ctx, req, base, projection.Prediction{Revenue: revenue, Risk: assessment})
	if err != nil {
		return nil, fmt.Errorf("projecting %s: %w", req.Name(), err)
	}
	e.metrics.ObserveProjection(time.Since(started))

	res := &Result{
		ID:                 ulid.Make().String(),
		PolicyName:         req.Name(),
		GeneratedAt:        e.now().UTC(),
		Dataset:            e.data.Name() + "@" + e.data.SchemaVersion(),
		Request:            req,
		Features:           base,
		Revenue:            revenue,
		RevenueFallback:    fellBack,
		Risk:               assessment,
		RiskAdjustedValue:  projection.RiskAdjusted(revenue, assessment.Percent(), assessment.Category),
		Emissions:          impact,
		EmissionsAvailable: available,
		Disclaimer:         impact.Disclaimer(),
		Equivalencies:      greenops.Translate(impact.PotentialReduction),
		Narrative: e.narrator.Build(narrative.Input{
			Request:     req,
			Region:      base.Region,
			IncomeGroup: base.IncomeGroup,
			Revenue:     revenue,
			Risk:        assessment,
		}),
		Projections: entries,
	}

	if last, ok := res.Final(); ok {
		e.metrics.SetLastRun(req.Country, string(req.PolicyType), last.CumulativeRevenue, assessment.Percent())
	}
	e.metrics.IncSimulation(string(req.PolicyType), "ok")
	e.store(ctx, key, res)

	log.Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "simulate").
		Str("result_id", res.ID).
		Str("policy", res.PolicyName).
		Float64("revenue", revenue).
		Str("risk_category", assessment.Category.String()).
		Int("years", len(entries)).
		Msg("simulation complete")

	return res, nil
}

// baseImpact computes the start-year emissions impact. Missing data yields a zero impact.
func (e *Engine) baseImpact(ctx context.Context, req policy.Request) (emissions.Impact, bool) {
	total, err := e.data.TotalCO2(req.Country, req.StartYear)
	if err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).Err(err).
			Str("component", "engine").
			Str("country", req.Country).
			Msg("emissions data unavailable")
		return emissions.Zero(req.CoveragePercent, req.CarbonPrice), false
	}
	impact, ok := emissions.ComputeImpact(req.CoveragePercent, total, req.CarbonPrice)
	if !ok {
		return emissions.Zero(req.CoveragePercent, req.CarbonPrice), false
	}
	return impact, true
}

// baseRevenue estimates start-year revenue, falling back to the effective-rate formula.
func (e *Engine) baseRevenue(
	ctx context.Context,
	req policy.Request,
	base features.CountryFeatures,
	coveredCO2 float64,
) (float64, bool) {
	est, err := e.revenue.EstimateRevenue(ctx, estimator.InputFor(req, req.StartYear, base))
	if err == nil && !math.IsNaN(est) && !math.IsInf(est, 0) && est > 0 {
		return est, false
	}

	opts := e.projector.Options()
	fallback := projection.FallbackRevenue(req.CarbonPrice, coveredCO2, opts.FallbackEffectiveRate, opts.MinRevenue)
	logging.FromContext(ctx).Warn().Ctx(ctx).Err(err).
		Str("component", "engine").
		Float64("estimate", est).
		Float64("fallback", fallback).
		Msg("revenue estimate unusable, using fallback")
	return fallback, true
}

func (e *Engine) cacheKey(req policy.Request) (string, error) {
	return cache.GenerateKey(req, e.data.Name(), e.data.SchemaVersion(), e.projector.Options())
}

func (e *Engine) lookup(ctx context.Context, req policy.Request) (string, *Result) {
	if e.cache == nil {
		return "", nil
	}
	log := logging.FromContext(ctx)

	key, err := e.cacheKey(req)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("component", "engine").Msg("cache key generation failed")
		return "", nil
	}

	var res Result
	switch err := e.cache.Load(key, &res); {
	case err == nil:
		e.metrics.IncCacheLookup("hit")
		log.Debug().Ctx(ctx).Str("component", "engine").Str("cache_key", key).Msg("cache hit")
		res.Cached = true
		return key, &res
	case errors.Is(err, cache.ErrCacheExpired):
		e.metrics.IncCacheLookup("expired")
	case errors.Is(err, cache.ErrCacheNotFound):
		e.metrics.IncCacheLookup("miss")
	default:
		log.Warn().Ctx(ctx).Err(err).Str("component", "engine").Msg("cache read failed")
	}
	return key, nil
}

func (e *Engine) store(ctx context.Context, key string, res *Result) {
	if e.cache == nil || key == "" {
		return
	}
	if err := e.cache.Store(key, res); err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).Err(err).
			Str("component", "engine").
			Msg("cache write failed")
	}
}

// Compare simulates left and right concurrently and reports right minus left.
func (e *Engine) Compare(ctx context.Context, left, right policy.Request) (*Comparison, error) {
	var l, r *Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		l, err = e.Simulate(gctx, left)
		if err != nil {
			return fmt.Errorf("first policy: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		r, err = e.Simulate(gctx, right)
		if err != nil {
			return fmt.Errorf("second policy: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewComparison(l, r), nil
}
