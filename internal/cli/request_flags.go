package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoimpact/carbonsim/internal/policy"
)

// requestFlags binds the policy request flags shared by simulate and compare.
type requestFlags struct {
	country    string
	policyType string
	price      float64
	coverage   float64
	startYear  int
	years      int
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.country, "country", "", "country to simulate (name or alias)")
	cmd.Flags().StringVar(&f.policyType, "type", "", `policy type: "Carbon tax" or "ETS" (aliases: tax, ets)`)
	cmd.Flags().Float64Var(&f.price, "price", 0, "carbon price in USD per tonne CO2 (0-1000]")
	cmd.Flags().Float64Var(&f.coverage, "coverage", 0, "percent of emissions covered [10-90]")
	cmd.Flags().IntVar(&f.startYear, "year", policy.DefaultStartYear, "first projected year")
	cmd.Flags().IntVar(&f.years, "years", policy.DefaultProjectionYears, "number of projected years")
}

// request builds the base request from the flags, then applies spec on top.
func (f *requestFlags) request(spec string) (policy.Request, error) {
	req := policy.Request{
		Country:         f.country,
		CarbonPrice:     f.price,
		CoveragePercent: f.coverage,
		StartYear:       f.startYear,
		ProjectionYears: f.years,
	}
	if f.policyType != "" {
		t, err := policy.ParseType(f.policyType)
		if err != nil {
			return req, fmt.Errorf("%w: %w", policy.ErrInvalidRequest, err)
		}
		req.PolicyType = t
	}
	if spec == "" {
		return req, nil
	}
	return policy.ParseSpec(spec, req)
}
