package engine

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/ecoimpact/carbonsim/internal/greenops"
	"github.com/ecoimpact/carbonsim/internal/projection"
	"github.com/ecoimpact/carbonsim/internal/round"
)

// OutputFormat selects a renderer.
type OutputFormat string

const (
	OutputTable  OutputFormat = "table"
	OutputJSON   OutputFormat = "json"
	OutputNDJSON OutputFormat = "ndjson"
)

// ErrUnknownFormat is returned for unsupported output formats.
const ErrUnknownFormat = constError("unknown output format")

// tabwriterPadding is the minimum gap between table columns.
const tabwriterPadding = 2

// ParseOutputFormat validates s.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputTable, OutputJSON, OutputNDJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want table, json or ndjson)", ErrUnknownFormat, s)
	}
}

// Render writes res in format.
func Render(w io.Writer, format OutputFormat, res *Result) error {
	switch format {
	case OutputTable:
		return RenderTable(w, res)
	case OutputJSON:
		return RenderJSON(w, res.Rounded())
	case OutputNDJSON:
		return RenderNDJSON(w, res)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ndjsonLine is one projected year tagged with its run.
type ndjsonLine struct {
	ResultID string `json:"result_id"`
	Country  string `json:"country"`
	projection.Entry
}

// RenderNDJSON writes one JSON object per projected year.
func RenderNDJSON(w io.Writer, results ...*Result) error {
	enc := json.NewEncoder(w)
	for _, res := range results {
		for _, e := range res.Projections {
			line := ndjsonLine{ResultID: res.ID, Country: res.Request.Country, Entry: RoundEntry(e)}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("encoding NDJSON line: %w", err)
			}
		}
	}
	return nil
}

// RenderNDJSONValue writes v as one compact JSON line.
func RenderNDJSONValue(w io.Writer, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encoding NDJSON line: %w", err)
	}
	return nil
}

// FormatMillions renders a million-USD amount as "$1,234.56M".
func FormatMillions(amount float64) string {
	s := greenops.FormatFloat(math.Abs(amount), round.Money)
	if amount < 0 {
		return "-$" + s + "M"
	}
	return "$" + s + "M"
}

// FormatSignedMillions prefixes non-zero amounts with a sign.
func FormatSignedMillions(amount float64) string {
	if amount > 0 {
		return "+" + FormatMillions(amount)
	}
	return FormatMillions(amount)
}

// RenderTable writes a summary block followed by the projection table.
func RenderTable(w io.Writer, res *Result) error {
	if err := renderSummary(w, res); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return RenderProjectionTable(w, res.Projections)
}

func renderSummary(w io.Writer, res *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	revenue := FormatMillions(res.Revenue)
	if res.RevenueFallback {
		revenue += " (fallback estimate)"
	}
	risk := fmt.Sprintf("%s%% %s (confidence %s)",
		round.String(res.Risk.Percent(), round.Percent), res.Risk.Category, res.Risk.Confidence)

	lines := [][2]string{
		{"Policy", res.PolicyName},
		{"Country", fmt.Sprintf("%s (%s, %s)", res.Request.Country, res.Features.Region, res.Features.IncomeGroup)},
		{"Carbon price", fmt.Sprintf("$%s/tCO2 covering %s%% of emissions",
			round.String(res.Request.CarbonPrice, round.Money), round.String(res.Request.CoveragePercent, round.Percent))},
		{"Revenue", revenue},
		{"Abolishment risk", risk},
		{"Risk-adjusted value", FormatMillions(res.RiskAdjustedValue)},
	}
	if res.EmissionsAvailable {
		em := res.Emissions
		lines = append(lines,
			[2]string{"Emissions", fmt.Sprintf("%s Mt total, %s Mt covered",
				round.String(em.TotalCO2, round.Mass), round.String(em.CoveredCO2, round.Mass))},
			[2]string{"Potential reduction", fmt.Sprintf("%s Mt/yr at %s%%",
				round.String(em.PotentialReduction, round.Mass), round.String(em.ReductionRateUsed*100, round.Percent))},
		)
		if !res.Equivalencies.IsEmpty {
			lines = append(lines, [2]string{"", res.Equivalencies.DisplayText})
		}
	} else {
		lines = append(lines, [2]string{"Emissions", "unavailable"})
	}
	lines = append(lines,
		[2]string{"Recommendation", res.Narrative.Recommendation},
		[2]string{"Dataset", res.Dataset},
		[2]string{"Run", res.ID},
	)

	for _, l := range lines {
		label := l[0]
		if label != "" {
			label += ":"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", label, l[1]); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return tw.Flush()
}

// RenderProjectionTable writes one row per projected year.
func RenderProjectionTable(w io.Writer, entries []projection.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', tabwriter.AlignRight)

	if _, err := fmt.Fprint(tw,
		"YEAR\tREVENUE\tCUMULATIVE\tCO2 REDUCED\tCO2 CUMULATIVE\tCO2 AFTER\tRISK%\tCATEGORY\tRISK-ADJUSTED\t\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		flag := ""
		if e.RevenueFallback {
			flag = "*"
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			e.Year,
			FormatMillions(e.Revenue), flag,
			FormatMillions(e.CumulativeRevenue),
			round.String(e.CO2Reduced, round.Mass),
			round.String(e.CO2ReducedCumulative, round.Cumulative),
			round.String(e.CO2AfterReduction, round.Mass),
			round.String(e.AbolishmentRisk, round.Percent),
			e.RiskCategory,
			FormatMillions(e.RiskAdjustedValue),
		); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	return tw.Flush()
}

// RenderComparison writes c in format.
func RenderComparison(w io.Writer, format OutputFormat, c *Comparison) error {
	switch format {
	case OutputJSON:
		return RenderJSON(w, c.Rounded())
	case OutputNDJSON:
		return RenderNDJSON(w, c.Left, c.Right)
	case OutputTable:
		return renderComparisonTable(w, c)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderComparisonTable(w io.Writer, c *Comparison) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	lf, _ := c.Left.Final()
	rf, _ := c.Right.Final()

	rows := [][4]string{
		{"", c.Left.PolicyName, c.Right.PolicyName, "DELTA"},
		{"Revenue", FormatMillions(c.Left.Revenue), FormatMillions(c.Right.Revenue),
			FormatSignedMillions(c.Delta.Revenue)},
		{"Risk-adjusted value", FormatMillions(c.Left.RiskAdjustedValue), FormatMillions(c.Right.RiskAdjustedValue),
			FormatSignedMillions(c.Delta.RiskAdjustedValue)},
		{"Abolishment risk %", round.String(c.Left.Risk.Percent(), round.Percent),
			round.String(c.Right.Risk.Percent(), round.Percent), signed(c.Delta.AbolishmentRisk, round.Percent)},
		{"Risk category", c.Left.Risk.Category.String(), c.Right.Risk.Category.String(), ""},
		{"Potential reduction Mt", round.String(c.Left.Emissions.PotentialReduction, round.Mass),
			round.String(c.Right.Emissions.PotentialReduction, round.Mass), signed(c.Delta.PotentialReduction, round.Mass)},
		{fmt.Sprintf("Cumulative revenue (%d/%d)", lf.Year, rf.Year), FormatMillions(lf.CumulativeRevenue),
			FormatMillions(rf.CumulativeRevenue), FormatSignedMillions(c.Delta.CumulativeRevenue)},
		{"Cumulative CO2 reduced Mt", round.String(lf.CO2ReducedCumulative, round.Cumulative),
			round.String(rf.CO2ReducedCumulative, round.Cumulative), signed(c.Delta.CO2ReducedCumulative, round.Cumulative)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r[0], r[1], r[2], r[3]); err != nil {
			return fmt.Errorf("writing comparison: %w", err)
		}
	}
	return tw.Flush()
}

func signed(v float64, places int32) string {
	s := round.String(v, places)
	if v > 0 && !strings.HasPrefix(s, "+") {
		return "+" + s
	}
	return s
}
