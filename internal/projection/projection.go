// Package projection rolls a single-year policy prediction forward into a
// multi-year series.
//
// Each year the country features are synthesized from the base year, the
// revenue and risk estimators are consulted again, and the results are
// stabilized so that the series stays plausible: revenue may not shrink or
// explode from one year to the next, and abolishment risk escalates slowly
// with policy age.
package projection

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecoimpact/carbonsim/internal/emissions"
	"github.com/ecoimpact/carbonsim/internal/estimator"
	"github.com/ecoimpact/carbonsim/internal/features"
	"github.com/ecoimpact/carbonsim/internal/logging"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/risk"
)

const tracerName = "github.com/ecoimpact/carbonsim/internal/projection"

// ErrInvalidOptions is returned by New for unusable options.
var ErrInvalidOptions = errors.New("invalid projection options")

// Options tunes the projection heuristics.
type Options struct {
	// MaxYears bounds the number of projected years.
	MaxYears int
	// Evolution controls feature synthesis for future years.
	Evolution features.EvolutionRates
	// MinRevenueGrowth is the minimum year-on-year revenue growth (0.015 = 1.5%).
	MinRevenueGrowth float64
	// MaxRevenueMultiple caps revenue at this multiple of the previous year.
	MaxRevenueMultiple float64
	// FallbackEffectiveRate is the share of price x covered emissions used
	// when the revenue estimate is unusable.
	FallbackEffectiveRate float64
	// MinRevenue floors the fallback revenue, in million USD.
	MinRevenue float64
	// RiskEscalationPP is added to the abolishment risk per year of policy age, in percentage points.
	RiskEscalationPP float64
}

// DefaultOptions returns the standard heuristics.
func DefaultOptions() Options {
	return Options{
		MaxYears:              policy.MaxProjectionYears,
		Evolution:             features.DefaultEvolutionRates(),
		MinRevenueGrowth:      0.015,
		MaxRevenueMultiple:    3.0,
		FallbackEffectiveRate: 0.05,
		MinRevenue:            0.01,
		RiskEscalationPP:      0.5,
	}
}

// Validate reports options that would break the series invariants.
func (o Options) Validate() error {
	switch {
	case o.MaxYears < 1 || o.MaxYears > policy.HardMaxProjectionYears:
		return fmt.Errorf("%w: max_years must be between 1 and %d", ErrInvalidOptions, policy.HardMaxProjectionYears)
	case o.MinRevenueGrowth < 0:
		return fmt.Errorf("%w: min_revenue_growth must not be negative", ErrInvalidOptions)
	case o.MaxRevenueMultiple < 1+o.MinRevenueGrowth:
		return fmt.Errorf("%w: max_revenue_multiple must be at least 1+min_revenue_growth", ErrInvalidOptions)
	case o.FallbackEffectiveRate <= 0:
		return fmt.Errorf("%w: fallback_effective_rate must be positive", ErrInvalidOptions)
	case o.MinRevenue <= 0:
		return fmt.Errorf("%w: min_revenue must be positive", ErrInvalidOptions)
	case o.RiskEscalationPP < 0:
		return fmt.Errorf("%w: risk_escalation_pp must not be negative", ErrInvalidOptions)
	}
	return nil
}

// Prediction is the year-0 outcome the projection starts from.
type Prediction struct {
	// Revenue is the base-year revenue estimate in million USD.
	Revenue float64
	// Risk is the base-year abolishment risk.
	Risk risk.Assessment
}

// Entry is one projected year. Money is million USD, masses are Mt CO2,
// AbolishmentRisk is a percentage.
type Entry struct {
	Year                 int           `json:"year"`
	Revenue              float64       `json:"revenue"`
	CumulativeRevenue    float64       `json:"cumulative_revenue"`
	CO2Reduced           float64       `json:"co2_reduced"`
	CO2ReducedCumulative float64       `json:"co2_reduced_cumulative"`
	CO2AfterReduction    float64       `json:"co2_after_reduction"`
	CO2ReducedFromBase   float64       `json:"co2_reduced_from_base"`
	AbolishmentRisk      float64       `json:"abolishment_risk"`
	RiskCategory         risk.Category `json:"risk_category"`
	RiskAdjustedValue    float64       `json:"risk_adjusted_value"`
	// RevenueFallback marks years where the estimate was replaced by the fallback formula.
	RevenueFallback bool `json:"revenue_fallback,omitempty"`
}

// EmissionsSource supplies total emissions by country and year.
type EmissionsSource interface {
	TotalCO2(country string, year int) (float64, error)
}

// RiskAssessor re-assesses abolishment risk for evolved features.
type RiskAssessor interface {
	Assess(ctx context.Context, in estimator.Input) (risk.Assessment, error)
}

// Observer is notified of notable events during a projection.
type Observer interface {
	RevenueFallback(country string, year int)
}

// Engine projects policy outcomes. It holds no per-run state and is safe
// for concurrent use.
type Engine struct {
	revenue  estimator.RevenueEstimator
	assessor RiskAssessor
	source   EmissionsSource
	opts     Options
	observer Observer
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers an observer for fallback events.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// New creates an Engine.
func New(
	revenue estimator.RevenueEstimator,
	assessor RiskAssessor,
	source EmissionsSource,
	opts Options,
	options ...Option,
) (*Engine, error) {
	if revenue == nil || assessor == nil || source == nil {
		return nil, fmt.Errorf("%w: revenue estimator, risk assessor and emissions source are required", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		revenue:  revenue,
		assessor: assessor,
		source:   source,
		opts:     opts,
		tracer:   otel.Tracer(tracerName),
	}
	for _, o := range options {
		o(e)
	}
	return e, nil
}

// Options returns the engine's heuristics.
func (e *Engine) Options() Options {
	return e.opts
}

// Project produces one Entry per year starting at req.StartYear. The number
// of years is req.ProjectionYears clamped to [1, Options.MaxYears].
//
// Estimator failures never abort the run: revenue falls back to the
// effective-rate formula and risk keeps the base-year probability.
func (e *Engine) Project(
	ctx context.Context,
	req policy.Request,
	base features.CountryFeatures,
	basePrediction Prediction,
) ([]Entry, error) {
	years := policy.ClampYears(req.ProjectionYears, e.opts.MaxYears)

	ctx, span := e.tracer.Start(ctx, "projection.Project", trace.WithAttributes(
		attribute.String("country", req.Country),
		attribute.String("policy_type", string(req.PolicyType)),
		attribute.Int("years", years),
	))
	defer span.End()

	log := logging.FromContext(ctx)
	log.Debug().Ctx(ctx).
		Str("component", "projection").
		Str("operation", "project").
		Str("country", req.Country).
		Int("years", years).
		Msg("starting projection")

	entries := make([]Entry, 0, years)
	var (
		prevRevenue     float64
		cumRevenue      float64
		cumReduced      float64
		baseProbability = basePrediction.Risk.Probability
	)

	for t := range years {
		year := req.StartYear + t
		f := features.Evolve(base, t, e.opts.Evolution)

		impact := e.impactFor(ctx, req, year)

		var (
			revenue  float64
			fellBack bool
		)
		if t == 0 {
			revenue, fellBack = e.sanitizeRevenue(basePrediction.Revenue, nil, req.CarbonPrice, impact.CoveredCO2)
		} else {
			est, err := e.revenue.EstimateRevenue(ctx, estimator.InputFor(req, year, f))
			if err != nil {
				log.Warn().Ctx(ctx).Err(err).
					Str("component", "projection").
					Int("year", year).
					Msg("revenue estimate failed, using fallback")
			}
			revenue, fellBack = e.sanitizeRevenue(est, err, req.CarbonPrice, impact.CoveredCO2)
			revenue = Stabilize(revenue, prevRevenue, e.opts.MinRevenueGrowth, e.opts.MaxRevenueMultiple)
		}
		if fellBack && e.observer != nil {
			e.observer.RevenueFallback(req.Country, year)
		}

		probability := baseProbability
		if t > 0 {
			probability = e.reassess(ctx, req, year, f, baseProbability)
		}
		escalated := Escalate(probability, t, e.opts.RiskEscalationPP)
		category := risk.ClassifyPercent(escalated)

		annual := math.Max(0, impact.PotentialReduction)
		cumRevenue += revenue
		cumReduced += annual

		entry := Entry{
			Year:                 year,
			Revenue:              revenue,
			CumulativeRevenue:    cumRevenue,
			CO2Reduced:           annual,
			CO2ReducedCumulative: cumReduced,
			CO2AfterReduction:    math.Max(0, impact.TotalCO2-annual),
			CO2ReducedFromBase:   cumReduced,
			AbolishmentRisk:      escalated,
			RiskCategory:         category,
			RiskAdjustedValue:    RiskAdjusted(revenue, escalated, category),
			RevenueFallback:      fellBack,
		}
		entries = append(entries, entry)
		prevRevenue = revenue

		log.Debug().Ctx(ctx).
			Str("component", "projection").
			Int("year", year).
			Float64("revenue", revenue).
			Float64("co2_reduced", annual).
			Float64("abolishment_risk", escalated).
			Str("risk_category", category.String()).
			Bool("revenue_fallback", fellBack).
			Msg("projected year")
	}

	span.SetAttributes(attribute.Float64("cumulative_revenue", cumRevenue))
	return entries, nil
}

// impactFor computes the emissions impact for year, degrading to a zero
// impact when emissions data is unavailable.
func (e *Engine) impactFor(ctx context.Context, req policy.Request, year int) emissions.Impact {
	total, err := e.source.TotalCO2(req.Country, year)
	if err != nil {
		logging.FromContext(ctx).Debug().Ctx(ctx).Err(err).
			Str("component", "projection").
			Int("year", year).
			Msg("emissions data unavailable, using zero impact")
		return emissions.Zero(req.CoveragePercent, req.CarbonPrice)
	}
	impact, _ := emissions.ComputeImpact(req.CoveragePercent, total, req.CarbonPrice)
	return impact
}

// reassess returns the modelled probability at evolved features, or fallback
// when the assessor fails.
func (e *Engine) reassess(
	ctx context.Context,
	req policy.Request,
	year int,
	f features.CountryFeatures,
	fallback float64,
) float64 {
	a, err := e.assessor.Assess(ctx, estimator.InputFor(req, year, f))
	if err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).Err(err).
			Str("component", "projection").
			Int("year", year).
			Msg("risk re-assessment failed, keeping base probability")
		return fallback
	}
	return a.Probability
}

// sanitizeRevenue replaces unusable estimates with the fallback formula.
func (e *Engine) sanitizeRevenue(est float64, err error, price, coveredCO2 float64) (float64, bool) {
	if err == nil && !math.IsNaN(est) && !math.IsInf(est, 0) && est > 0 {
		return est, false
	}
	return FallbackRevenue(price, coveredCO2, e.opts.FallbackEffectiveRate, e.opts.MinRevenue), true
}

// FallbackRevenue is price x covered emissions x effective rate, floored at minRevenue.
// With price in USD/t and covered emissions in Mt the result is million USD.
func FallbackRevenue(price, coveredCO2, effectiveRate, minRevenue float64) float64 {
	v := price * coveredCO2 * effectiveRate
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return minRevenue
	}
	return math.Max(v, minRevenue)
}

// Stabilize bounds estimate to [previous*(1+minGrowth), previous*maxMultiple].
// A non-positive previous leaves the estimate unchanged.
func Stabilize(estimate, previous, minGrowth, maxMultiple float64) float64 {
	if previous <= 0 {
		return estimate
	}
	floor := previous * (1 + minGrowth)
	ceiling := previous * maxMultiple
	return math.Min(math.Max(estimate, floor), ceiling)
}

// Escalate converts a probability to a percentage and adds pp points per
// year of age t, capped at 100.
func Escalate(probability float64, t int, pp float64) float64 {
	p := math.Max(0, math.Min(1, probability))
	if math.IsNaN(p) {
		p = risk.NoHistoryProbability
	}
	return math.Min(100, p*100+pp*float64(t))
}

// RiskAdjusted discounts revenue by the abolishment risk unless the policy
// is low risk. The result is never negative.
func RiskAdjusted(revenue, riskPercent float64, category risk.Category) float64 {
	if category == risk.LowRisk {
		return math.Max(0, revenue)
	}
	return math.Max(0, revenue*(1-riskPercent/100))
}
