package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecoimpact/carbonsim/internal/config"
	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/greenops"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/refdata"
	"github.com/ecoimpact/carbonsim/internal/round"
)

const tablePadding = 2

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, tablePadding, ' ', 0)
}

// countryRow is one line of the countries listing.
type countryRow struct {
	Name        string `json:"name"`
	Region      string `json:"region"`
	IncomeGroup string `json:"income_group"`
	HasHistory  bool   `json:"has_policy_history"`
}

// NewCountriesCmd creates the countries command listing simulatable countries.
func NewCountriesCmd() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List countries with enough data to simulate",
		Example: `  carbonsim countries
  carbonsim countries --region "Latin America & Caribbean" -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			ds, err := loadDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			format, err := outputFormat(cfg)
			if err != nil {
				return err
			}

			var rows []countryRow
			for _, name := range ds.Countries() {
				info, err := ds.Info(name, policy.DefaultStartYear)
				if err != nil {
					continue
				}
				r := countryRow{
					Name:        name,
					Region:      info.Region,
					IncomeGroup: info.IncomeGroup,
					HasHistory:  info.HasPolicyHistory,
				}
				if region != "" && !strings.EqualFold(r.Region, region) {
					continue
				}
				rows = append(rows, r)
			}
			return renderCountries(cmd.OutOrStdout(), format, rows)
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "only list countries in this region")
	return cmd
}

func renderCountries(w io.Writer, format engine.OutputFormat, rows []countryRow) error {
	switch format {
	case engine.OutputJSON:
		return engine.RenderJSON(w, rows)
	case engine.OutputNDJSON:
		for _, r := range rows {
			if err := engine.RenderNDJSONValue(w, r); err != nil {
				return err
			}
		}
		return nil
	}

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "COUNTRY\tREGION\tINCOME GROUP\tPOLICY HISTORY")
	for _, r := range rows {
		history := "no"
		if r.HasHistory {
			history = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Region, r.IncomeGroup, history)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d countries\n", len(rows))
	return err
}

// NewCountryInfoCmd creates the country-info command printing one country's indicators.
func NewCountryInfoCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "country-info <country>",
		Short: "Show the indicators a simulation would use for a country",
		Example: `  carbonsim country-info Sweden
  carbonsim country-info usa --year 2030 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetGlobalConfig()
			ds, err := loadDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			format, err := outputFormat(cfg)
			if err != nil {
				return err
			}

			info, err := ds.Info(args[0], year)
			if err != nil {
				return fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
			}

			w := cmd.OutOrStdout()
			switch format {
			case engine.OutputJSON:
				return engine.RenderJSON(w, info)
			case engine.OutputNDJSON:
				return engine.RenderNDJSONValue(w, info)
			}
			return renderCountryInfo(w, info)
		},
	}

	cmd.Flags().IntVar(&year, "year", policy.DefaultStartYear, "year to look up (latest earlier data is used)")
	return cmd
}

func renderCountryInfo(w io.Writer, info refdata.CountryInfo) error {
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "Country:\t%s\n", info.Name)
	fmt.Fprintf(tw, "Region:\t%s\n", info.Region)
	fmt.Fprintf(tw, "Income group:\t%s\n", info.IncomeGroup)
	fmt.Fprintf(tw, "Year:\t%d (data from %d)\n", info.Year, info.DataYear)
	fmt.Fprintf(tw, "Population:\t%s\n", greenops.FormatLarge(info.Population))
	fmt.Fprintf(tw, "GDP:\t%s\n", engine.FormatMillions(info.GDPMillion))
	fmt.Fprintf(tw, "Fossil fuel share:\t%s%%\n", round.String(info.FossilFuelPct, round.Percent))
	if info.CO2Mt != nil {
		fmt.Fprintf(tw, "CO2 emissions:\t%s Mt\n", round.String(*info.CO2Mt, round.Mass))
	} else {
		fmt.Fprintf(tw, "CO2 emissions:\tunavailable\n")
	}
	if info.CO2PerCapitaT != nil {
		fmt.Fprintf(tw, "CO2 per capita:\t%s t\n", round.String(*info.CO2PerCapitaT, round.Mass))
	}
	history := "no"
	if info.HasPolicyHistory {
		history = "yes"
	}
	fmt.Fprintf(tw, "Policy history:\t%s\n", history)
	return tw.Flush()
}

// NewPolicyTypesCmd creates the policy-types command.
func NewPolicyTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy-types",
		Short: "List supported policy instruments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(config.GetGlobalConfig())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			types := policy.Types()
			switch format {
			case engine.OutputJSON:
				return engine.RenderJSON(w, types)
			case engine.OutputNDJSON:
				for _, t := range types {
					if err := engine.RenderNDJSONValue(w, t); err != nil {
						return err
					}
				}
				return nil
			}
			tw := newTabWriter(w)
			fmt.Fprintln(tw, "TYPE\tDESCRIPTION")
			for _, t := range types {
				fmt.Fprintf(tw, "%s\t%s\n", t.Type, t.Description)
			}
			return tw.Flush()
		},
	}
}

// NewEquivalencyCmd creates the equivalency command translating a CO2 mass
// into everyday equivalents.
func NewEquivalencyCmd() *cobra.Command {
	var unit string

	cmd := &cobra.Command{
		Use:   "equivalency <amount>",
		Short: "Translate avoided CO2 into everyday equivalents",
		Example: `  carbonsim equivalency 2.5
  carbonsim equivalency 400 --unit kt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(config.GetGlobalConfig())
			if err != nil {
				return err
			}
			var value float64
			if _, err := fmt.Sscan(args[0], &value); err != nil {
				return fmt.Errorf("%w: amount %q is not a number", engine.ErrInvalidInput, args[0])
			}

			eq, err := greenops.Calculate(greenops.CarbonInput{Value: value, Unit: unit})
			if err != nil {
				return fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
			}

			w := cmd.OutOrStdout()
			switch format {
			case engine.OutputJSON:
				return engine.RenderJSON(w, eq)
			case engine.OutputNDJSON:
				return engine.RenderNDJSONValue(w, eq)
			}
			if eq.IsEmpty {
				_, err := fmt.Fprintln(w, "No avoided emissions to translate.")
				return err
			}
			tw := newTabWriter(w)
			fmt.Fprintf(tw, "Avoided:\t%s Mt CO2\n", round.String(eq.InputMt, round.Mass))
			for _, r := range eq.Results {
				fmt.Fprintf(tw, "%s:\t%s\n", r.Label, r.FormattedValue)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "\n%s\nSource: %s\n", eq.DisplayText, eq.Source)
			return err
		},
	}

	cmd.Flags().StringVar(&unit, "unit", "Mt", "unit of amount: kg, t, kt, Mt, Gt")
	return cmd
}
