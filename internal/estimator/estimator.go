// Package estimator defines the point estimators consulted by the simulation
// and a coefficient-driven reference model.
package estimator

import (
	"context"

	"github.com/ecoimpact/carbonsim/internal/features"
	"github.com/ecoimpact/carbonsim/internal/policy"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidInput is returned when an input cannot be scored.
const ErrInvalidInput = constError("invalid estimator input")

// Input is everything an estimator sees for one country-year.
type Input struct {
	Country         string
	PolicyType      policy.Type
	CarbonPrice     float64
	CoveragePercent float64
	Year            int
	Features        features.CountryFeatures
}

// InputFor builds the estimator input for req at year with f.
func InputFor(req policy.Request, year int, f features.CountryFeatures) Input {
	return Input{
		Country:         req.Country,
		PolicyType:      req.PolicyType,
		CarbonPrice:     req.CarbonPrice,
		CoveragePercent: req.CoveragePercent,
		Year:            year,
		Features:        f,
	}
}

// RevenueEstimator predicts annual policy revenue in million USD.
type RevenueEstimator interface {
	EstimateRevenue(ctx context.Context, in Input) (float64, error)
}

// RiskEstimator predicts the probability in [0,1] that a policy is abolished.
type RiskEstimator interface {
	EstimateAbolishmentRisk(ctx context.Context, in Input) (float64, error)
}

// RevenueFunc adapts a function to RevenueEstimator.
type RevenueFunc func(ctx context.Context, in Input) (float64, error)

// EstimateRevenue calls f.
func (f RevenueFunc) EstimateRevenue(ctx context.Context, in Input) (float64, error) {
	return f(ctx, in)
}

// RiskFunc adapts a function to RiskEstimator.
type RiskFunc func(ctx context.Context, in Input) (float64, error)

// EstimateAbolishmentRisk calls f.
func (f RiskFunc) EstimateAbolishmentRisk(ctx context.Context, in Input) (float64, error) {
	return f(ctx, in)
}
