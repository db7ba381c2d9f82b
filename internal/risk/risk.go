// Package risk classifies the probability that a carbon-pricing policy is abolished.
package risk

import (
	"context"
	"fmt"
	"math"

	"github.com/ecoimpact/carbonsim/internal/estimator"
	"github.com/ecoimpact/carbonsim/internal/logging"
)

// Classification thresholds on the probability scale. Both are exclusive.
const (
	LowThreshold  = 0.35
	HighThreshold = 0.65

	// NoHistoryProbability is used when a country has never had a carbon price.
	NoHistoryProbability = 0.50
)

// Category is the coarse risk bucket.
type Category int

const (
	LowRisk Category = iota
	AtRisk
	HighRisk
)

func (c Category) String() string {
	switch c {
	case LowRisk:
		return "Low Risk"
	case AtRisk:
		return "At Risk"
	case HighRisk:
		return "High Risk"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// MarshalText renders the display string.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a display string.
func (c *Category) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Low Risk":
		*c = LowRisk
	case "At Risk":
		*c = AtRisk
	case "High Risk":
		*c = HighRisk
	default:
		return fmt.Errorf("unknown risk category %q", b)
	}
	return nil
}

// Confidence expresses how much the assessment can be trusted.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "High"
	case ConfidenceMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// MarshalText renders the display string.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a display string.
func (c *Confidence) UnmarshalText(b []byte) error {
	switch string(b) {
	case "High":
		*c = ConfidenceHigh
	case "Medium":
		*c = ConfidenceMedium
	case "Low":
		*c = ConfidenceLow
	default:
		return fmt.Errorf("unknown confidence %q", b)
	}
	return nil
}

// Classify buckets a probability in [0,1].
func Classify(p float64) Category {
	switch {
	case p < LowThreshold:
		return LowRisk
	case p > HighThreshold:
		return HighRisk
	default:
		return AtRisk
	}
}

// ClassifyPercent buckets a probability expressed on a 0-100 scale.
func ClassifyPercent(pct float64) Category {
	return Classify(pct / 100)
}

// Assessment is a classified abolishment probability.
type Assessment struct {
	Probability float64    `json:"probability"`
	Category    Category   `json:"category"`
	Confidence  Confidence `json:"confidence"`
	HasHistory  bool       `json:"has_history"`
}

// Percent returns the probability on a 0-100 scale.
func (a Assessment) Percent() float64 {
	return a.Probability * 100
}

// NoHistory is the fixed assessment for countries without policy history.
func NoHistory() Assessment {
	return Assessment{
		Probability: NoHistoryProbability,
		Category:    AtRisk,
		Confidence:  ConfidenceLow,
	}
}

// FromProbability classifies a modelled probability. Non-finite input is
// treated as the no-history midpoint; others are clamped to [0,1].
func FromProbability(p float64) Assessment {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		a := NoHistory()
		a.HasHistory = true
		return a
	}
	p = math.Max(0, math.Min(1, p))
	cat := Classify(p)
	conf := ConfidenceHigh
	if cat == AtRisk {
		conf = ConfidenceMedium
	}
	return Assessment{Probability: p, Category: cat, Confidence: conf, HasHistory: true}
}

// History reports whether a country has any historical carbon-pricing record.
type History interface {
	HasHistory(country string) bool
}

// Assessor combines the history check with a risk estimator.
type Assessor struct {
	history   History
	estimator estimator.RiskEstimator
}

// NewAssessor creates an Assessor.
func NewAssessor(history History, est estimator.RiskEstimator) *Assessor {
	return &Assessor{history: history, estimator: est}
}

// Assess returns the abolishment risk for in. Countries without history get
// NoHistory and the estimator is not consulted.
func (a *Assessor) Assess(ctx context.Context, in estimator.Input) (Assessment, error) {
	log := logging.FromContext(ctx)

	if !a.history.HasHistory(in.Country) {
		log.Debug().Ctx(ctx).
			Str("component", "risk").
			Str("country", in.Country).
			Msg("no policy history, using fixed assessment")
		return NoHistory(), nil
	}

	p, err := a.estimator.EstimateAbolishmentRisk(ctx, in)
	if err != nil {
		return Assessment{}, fmt.Errorf("estimating abolishment risk for %s: %w", in.Country, err)
	}
	return FromProbability(p), nil
}
