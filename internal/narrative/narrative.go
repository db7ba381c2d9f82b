// Package narrative explains a simulation result in words: what the risk
// category means for the country, which historical policies look alike, what
// could go wrong and how the proposal compares with its region.
package narrative

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/refdata"
	"github.com/ecoimpact/carbonsim/internal/risk"
)

const (
	maxSimilarPolicies = 3

	highRiskPercent     = 50.0
	highCoveragePercent = 70.0
	highPriceUSD        = 50.0

	defaultKeyRisk = "Moderate implementation and enforcement challenges expected"
)

// Source supplies historical policy records.
type Source interface {
	HistoricalPolicies() []refdata.Policy
	HasHistory(country string) bool
}

// Input is the simulation outcome to explain.
type Input struct {
	Request     policy.Request
	Region      string
	IncomeGroup string
	// Revenue is the base-year revenue in million USD.
	Revenue float64
	Risk    risk.Assessment
}

// SuccessContext explains the risk category.
type SuccessContext struct {
	HasHistoricalData bool            `json:"has_historical_data"`
	Message           string          `json:"context_message"`
	Confidence        risk.Confidence `json:"confidence"`
	Recommendation    string          `json:"recommendation"`
}

// Context is the full narrative for one simulation.
type Context struct {
	Recommendation  string           `json:"recommendation"`
	SimilarPolicies []string         `json:"similar_policies"`
	KeyRisks        []string         `json:"key_risks"`
	Success         SuccessContext   `json:"success_context"`
	Benchmark       *Benchmark       `json:"benchmark,omitempty"`
	Scenarios       RevenueScenarios `json:"risk_adjusted_scenarios"`
}

// Builder produces narratives from a fixed set of historical policies.
type Builder struct {
	source Source
}

// NewBuilder creates a Builder.
func NewBuilder(source Source) *Builder {
	return &Builder{source: source}
}

// Build assembles the narrative for in.
func (b *Builder) Build(in Input) Context {
	history := b.source.HistoricalPolicies()
	hasHistory := b.source.HasHistory(in.Request.Country)
	success := successContext(in, hasHistory)

	return Context{
		Recommendation:  success.Recommendation,
		SimilarPolicies: similarPolicies(history, in.Request, in.Region),
		KeyRisks:        keyRisks(history, in, hasHistory),
		Success:         success,
		Benchmark:       Benchmarking(history, in.Region, in.Request, in.Revenue),
		Scenarios:       Scenarios(in.Revenue, in.Risk.Probability),
	}
}

func successContext(in Input, hasHistory bool) SuccessContext {
	country := in.Request.Country
	region := in.Region
	if region == "" {
		region = "the region"
	}

	if !hasHistory {
		return SuccessContext{
			HasHistoricalData: false,
			Message: fmt.Sprintf(
				"%s has no historical record of carbon pricing in the reference data. "+
					"Without prior experience the assessment relies on regional patterns from %s, "+
					"economic development and energy structure, and lacks country-specific validation.",
				country, region),
			Confidence:     risk.ConfidenceLow,
			Recommendation: "Limited data - proceed with caution.",
		}
	}

	income := in.IncomeGroup
	if income == "" {
		income = refdata.IncomeGroupOf(country)
	}

	sc := SuccessContext{HasHistoricalData: true, Confidence: in.Risk.Confidence}
	switch in.Risk.Category {
	case risk.LowRisk:
		sc.Message = fmt.Sprintf(
			"The model predicts Low Risk for %s, reflecting its %s economic status and favourable "+
				"patterns in %s where similar policies have proved durable.",
			country, strings.ToLower(income), region)
		sc.Recommendation = "Favorable conditions for policy implementation."
	case risk.HighRisk:
		sc.Message = fmt.Sprintf(
			"The model predicts High Risk for %s. Similar policies in %s have often not survived, "+
				"and the economic and energy structure adds pressure.",
			country, region)
		sc.Recommendation = "Significant challenges identified."
	default:
		sc.Message = fmt.Sprintf(
			"The model predicts At Risk for %s. Outcomes in %s are mixed and its %s economic status "+
				"offers no clear signal, so success is possible but faces moderate challenges.",
			country, region, strings.ToLower(income))
		sc.Recommendation = "Moderate risk - careful implementation required."
	}
	return sc
}

type scored struct {
	policy     refdata.Policy
	similarity float64
}

func rankSimilar(candidates []refdata.Policy, req policy.Request) []scored {
	out := make([]scored, 0, len(candidates))
	for _, p := range candidates {
		out = append(out, scored{
			policy:     p,
			similarity: math.Abs(p.CarbonPrice-req.CarbonPrice) + math.Abs(p.CoveragePct-req.CoveragePercent),
		})
	}
	slices.SortStableFunc(out, func(a, b scored) int { return cmp.Compare(a.similarity, b.similarity) })
	if len(out) > maxSimilarPolicies {
		out = out[:maxSimilarPolicies]
	}
	return out
}

// similarPolicies lists up to three implemented policies of the same type
// closest in price and coverage, preferring the same region.
func similarPolicies(history []refdata.Policy, req policy.Request, region string) []string {
	var sameType, sameRegion []refdata.Policy
	for _, p := range history {
		if p.Type != string(req.PolicyType) || p.Status != refdata.StatusImplemented {
			continue
		}
		sameType = append(sameType, p)
		if region != "" && p.Region == region {
			sameRegion = append(sameRegion, p)
		}
	}

	var lines []string
	if len(sameRegion) > 0 {
		for _, s := range rankSimilar(sameRegion, req) {
			lines = append(lines, fmt.Sprintf("%s %s (%d): $%.0f/tonne, %.1f%% coverage",
				s.policy.Jurisdiction, req.PolicyType, s.policy.Year, s.policy.CarbonPrice, s.policy.CoveragePct))
		}
	} else {
		for _, s := range rankSimilar(sameType, req) {
			lines = append(lines, fmt.Sprintf("%s %s (%d): $%.0f/tonne, %.1f%% coverage (from %s)",
				s.policy.Jurisdiction, req.PolicyType, s.policy.Year, s.policy.CarbonPrice, s.policy.CoveragePct,
				s.policy.Region))
		}
	}

	if len(lines) == 0 {
		return []string{fmt.Sprintf("No directly comparable %s policies found in historical data",
			strings.ToLower(string(req.PolicyType)))}
	}
	return lines
}

func keyRisks(history []refdata.Policy, in Input, hasHistory bool) []string {
	var risks []string
	if in.Risk.Percent() > highRiskPercent {
		risks = append(risks, "High political resistance to carbon pricing")
	}
	if hasHistory {
		abolished := 0
		for _, p := range history {
			if strings.EqualFold(p.Jurisdiction, in.Request.Country) && p.Status == refdata.StatusAbolished {
				abolished++
			}
		}
		if abolished > 0 {
			risks = append(risks, fmt.Sprintf("Historical precedent: %d previous policies abolished in %s",
				abolished, in.Request.Country))
		}
	}
	if in.Request.CoveragePercent > highCoveragePercent {
		risks = append(risks, "High coverage may face resistance from affected industries")
	}
	if in.Request.CarbonPrice > highPriceUSD {
		risks = append(risks, "High carbon price may trigger political opposition")
	}
	if len(risks) == 0 {
		return []string{defaultKeyRisk}
	}
	return risks
}
