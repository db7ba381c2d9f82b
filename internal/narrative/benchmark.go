package narrative

import (
	"fmt"

	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/refdata"
)

// Benchmark compares a proposal with historical policies in its region.
type Benchmark struct {
	CoverageRank string        `json:"coverage_rank"`
	RevenueRank  string        `json:"revenue_rank"`
	PriceRank    string        `json:"price_rank"`
	VsRegional   RegionalDelta `json:"vs_regional_avg"`
	Regional     RegionalStats `json:"regional_stats"`
}

// RegionalDelta is the proposal's percentage difference from the regional averages.
type RegionalDelta struct {
	Coverage float64 `json:"coverage"`
	Revenue  float64 `json:"revenue"`
	Price    float64 `json:"price"`
}

// RegionalStats summarizes the regional history.
type RegionalStats struct {
	AvgCoverage   float64 `json:"avg_coverage"`
	AvgRevenue    float64 `json:"avg_revenue"`
	AvgPrice      float64 `json:"avg_price"`
	TotalPolicies int     `json:"total_policies"`
}

// Benchmarking ranks req and revenue against every historical policy in
// region. It returns nil when the region has no history.
func Benchmarking(history []refdata.Policy, region string, req policy.Request, revenue float64) *Benchmark {
	var regional []refdata.Policy
	for _, p := range history {
		if p.Region == region {
			regional = append(regional, p)
		}
	}
	if len(regional) == 0 {
		return nil
	}

	var (
		below                           [3]int
		sumCoverage, sumRevenue, sumPrc float64
	)
	for _, p := range regional {
		if p.CoveragePct < req.CoveragePercent {
			below[0]++
		}
		if p.RevenueMillion < revenue {
			below[1]++
		}
		if p.CarbonPrice < req.CarbonPrice {
			below[2]++
		}
		sumCoverage += p.CoveragePct
		sumRevenue += p.RevenueMillion
		sumPrc += p.CarbonPrice
	}

	n := float64(len(regional))
	stats := RegionalStats{
		AvgCoverage:   sumCoverage / n,
		AvgRevenue:    sumRevenue / n,
		AvgPrice:      sumPrc / n,
		TotalPolicies: len(regional),
	}

	return &Benchmark{
		CoverageRank: topRank(below[0], len(regional)),
		RevenueRank:  topRank(below[1], len(regional)),
		PriceRank:    topRank(below[2], len(regional)),
		VsRegional: RegionalDelta{
			Coverage: relative(req.CoveragePercent, stats.AvgCoverage),
			Revenue:  relative(revenue, stats.AvgRevenue),
			Price:    relative(req.CarbonPrice, stats.AvgPrice),
		},
		Regional: stats,
	}
}

// topRank renders "Top X%" where X is the share of policies not below the proposal.
func topRank(below, total int) string {
	percentile := float64(below) / float64(total) * 100
	return fmt.Sprintf("Top %.0f%%", 100-percentile)
}

func relative(v, avg float64) float64 {
	if avg <= 0 {
		return 0
	}
	return (v/avg - 1) * 100
}

// RevenueScenarios discounts revenue by the chance the policy is abolished.
type RevenueScenarios struct {
	BaseRevenue float64 `json:"base_revenue"`
	// Expected assumes all revenue is lost on abolition.
	Expected float64 `json:"expected_value"`
	// Optimistic assumes half the revenue survives abolition.
	Optimistic         float64 `json:"optimistic_scenario"`
	RiskDiscount       float64 `json:"risk_discount"`
	SuccessProbability float64 `json:"success_probability"`
}

// Scenarios computes risk-adjusted revenue scenarios for an abolishment probability in [0,1].
func Scenarios(revenue, abolishProbability float64) RevenueScenarios {
	success := 1 - abolishProbability
	expected := revenue * success
	return RevenueScenarios{
		BaseRevenue:        revenue,
		Expected:           expected,
		Optimistic:         revenue * (success + 0.5*abolishProbability),
		RiskDiscount:       revenue - expected,
		SuccessProbability: success * 100,
	}
}
