package engine

import (
	"time"

	"github.com/ecoimpact/carbonsim/internal/emissions"
	"github.com/ecoimpact/carbonsim/internal/features"
	"github.com/ecoimpact/carbonsim/internal/greenops"
	"github.com/ecoimpact/carbonsim/internal/narrative"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/projection"
	"github.com/ecoimpact/carbonsim/internal/risk"
	"github.com/ecoimpact/carbonsim/internal/round"
)

// Result is one complete simulation. Money is million USD and masses are Mt CO2.
type Result struct {
	ID          string         `json:"id"`
	PolicyName  string         `json:"policy_name"`
	GeneratedAt time.Time      `json:"generated_at"`
	Dataset     string         `json:"dataset"`
	Request     policy.Request `json:"request"`

	Features          features.CountryFeatures `json:"features"`
	Revenue           float64                  `json:"revenue"`
	RevenueFallback   bool                     `json:"revenue_fallback,omitempty"`
	Risk              risk.Assessment          `json:"risk"`
	RiskAdjustedValue float64                  `json:"risk_adjusted_value"`

	Emissions          emissions.Impact       `json:"emissions"`
	EmissionsAvailable bool                   `json:"emissions_available"`
	Disclaimer         string                 `json:"disclaimer"`
	Equivalencies      greenops.Equivalencies `json:"equivalencies"`

	Narrative   narrative.Context  `json:"narrative"`
	Projections []projection.Entry `json:"projections"`

	// Cached is set when the result was served from the result cache.
	Cached bool `json:"cached,omitempty"`
}

// Final returns the last projected year.
func (r *Result) Final() (projection.Entry, bool) {
	if len(r.Projections) == 0 {
		return projection.Entry{}, false
	}
	return r.Projections[len(r.Projections)-1], true
}

// Rounded returns a copy with display precision applied. The receiver is untouched.
func (r *Result) Rounded() *Result {
	out := *r
	out.Revenue = round.To(r.Revenue, round.Money)
	out.RiskAdjustedValue = round.To(r.RiskAdjustedValue, round.Money)
	out.Risk.Probability = round.To(r.Risk.Probability, round.Cumulative)

	em := r.Emissions
	em.TotalCO2 = round.To(em.TotalCO2, round.Mass)
	em.CoveredCO2 = round.To(em.CoveredCO2, round.Mass)
	em.UncoveredCO2 = round.To(em.UncoveredCO2, round.Mass)
	em.PotentialReduction = round.To(em.PotentialReduction, round.Mass)
	em.ReductionRateUsed = round.To(em.ReductionRateUsed, round.Cumulative)
	em.CoveredPercent = round.To(em.CoveredPercent, round.Percent)
	em.UncoveredPercent = round.To(em.UncoveredPercent, round.Percent)
	em.CoveredPerCapitaTonnes = round.To(em.CoveredPerCapitaTonnes, round.Mass)
	out.Emissions = em

	sc := r.Narrative.Scenarios
	sc.BaseRevenue = round.To(sc.BaseRevenue, round.Money)
	sc.Expected = round.To(sc.Expected, round.Money)
	sc.Optimistic = round.To(sc.Optimistic, round.Money)
	sc.RiskDiscount = round.To(sc.RiskDiscount, round.Money)
	sc.SuccessProbability = round.To(sc.SuccessProbability, round.Percent)
	out.Narrative.Scenarios = sc

	if b := r.Narrative.Benchmark; b != nil {
		rb := *b
		rb.VsRegional.Coverage = round.To(b.VsRegional.Coverage, round.Percent)
		rb.VsRegional.Revenue = round.To(b.VsRegional.Revenue, round.Percent)
		rb.VsRegional.Price = round.To(b.VsRegional.Price, round.Percent)
		rb.Regional.AvgCoverage = round.To(b.Regional.AvgCoverage, round.Percent)
		rb.Regional.AvgRevenue = round.To(b.Regional.AvgRevenue, round.Percent)
		rb.Regional.AvgPrice = round.To(b.Regional.AvgPrice, round.Percent)
		out.Narrative.Benchmark = &rb
	}

	out.Projections = make([]projection.Entry, len(r.Projections))
	for i, e := range r.Projections {
		out.Projections[i] = RoundEntry(e)
	}
	return &out
}

// RoundEntry applies display precision to one projected year.
func RoundEntry(e projection.Entry) projection.Entry {
	e.Revenue = round.To(e.Revenue, round.Money)
	e.CumulativeRevenue = round.To(e.CumulativeRevenue, round.Money)
	e.CO2Reduced = round.To(e.CO2Reduced, round.Mass)
	e.CO2ReducedCumulative = round.To(e.CO2ReducedCumulative, round.Cumulative)
	e.CO2AfterReduction = round.To(e.CO2AfterReduction, round.Mass)
	e.CO2ReducedFromBase = round.To(e.CO2ReducedFromBase, round.Cumulative)
	e.AbolishmentRisk = round.To(e.AbolishmentRisk, round.Percent)
	e.RiskAdjustedValue = round.To(e.RiskAdjustedValue, round.Money)
	return e
}

// Delta is right minus left for the headline figures of two simulations.
type Delta struct {
	Revenue              float64 `json:"revenue"`
	RiskAdjustedValue    float64 `json:"risk_adjusted_value"`
	AbolishmentRisk      float64 `json:"abolishment_risk"`
	PotentialReduction   float64 `json:"potential_reduction"`
	CumulativeRevenue    float64 `json:"cumulative_revenue"`
	CO2ReducedCumulative float64 `json:"co2_reduced_cumulative"`
}

// Comparison places two simulations side by side.
type Comparison struct {
	Left  *Result `json:"left"`
	Right *Result `json:"right"`
	Delta Delta   `json:"delta"`
}

// NewComparison computes the deltas between l and r.
func NewComparison(l, r *Result) *Comparison {
	lf, _ := l.Final()
	rf, _ := r.Final()
	return &Comparison{
		Left:  l,
		Right: r,
		Delta: Delta{
			Revenue:              r.Revenue - l.Revenue,
			RiskAdjustedValue:    r.RiskAdjustedValue - l.RiskAdjustedValue,
			AbolishmentRisk:      r.Risk.Percent() - l.Risk.Percent(),
			PotentialReduction:   r.Emissions.PotentialReduction - l.Emissions.PotentialReduction,
			CumulativeRevenue:    rf.CumulativeRevenue - lf.CumulativeRevenue,
			CO2ReducedCumulative: rf.CO2ReducedCumulative - lf.CO2ReducedCumulative,
		},
	}
}

// Rounded returns a copy with display precision applied.
func (c *Comparison) Rounded() *Comparison {
	return &Comparison{
		Left:  c.Left.Rounded(),
		Right: c.Right.Rounded(),
		Delta: Delta{
			Revenue:              round.To(c.Delta.Revenue, round.Money),
			RiskAdjustedValue:    round.To(c.Delta.RiskAdjustedValue, round.Money),
			AbolishmentRisk:      round.To(c.Delta.AbolishmentRisk, round.Percent),
			PotentialReduction:   round.To(c.Delta.PotentialReduction, round.Mass),
			CumulativeRevenue:    round.To(c.Delta.CumulativeRevenue, round.Money),
			CO2ReducedCumulative: round.To(c.Delta.CO2ReducedCumulative, round.Cumulative),
		},
	}
}
