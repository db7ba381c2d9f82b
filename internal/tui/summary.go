package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/projection"
	"github.com/ecoimpact/carbonsim/internal/round"
)

// borderPadding accounts for the left and right box border.
const borderPadding = 2

// labelWidth aligns summary values.
const labelWidth = 22

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, label+":")))
	b.WriteString(ValueStyle.Render(value))
	b.WriteString("\n")
}

// RenderSummary renders a boxed overview of one simulation.
func RenderSummary(res *engine.Result, width int) string {
	if res == nil {
		return InfoStyle.Render("No results to display.")
	}
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(strings.ToUpper(res.PolicyName)))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("%s, %s | dataset %s",
		res.Features.Region, res.Features.IncomeGroup, res.Dataset)))
	b.WriteString("\n\n")

	revenue := engine.FormatMillions(res.Revenue)
	if res.RevenueFallback {
		revenue += " (fallback)"
	}
	writeField(&b, "Revenue", revenue)
	writeField(&b, "Risk-adjusted value", engine.FormatMillions(res.RiskAdjustedValue))

	b.WriteString(LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, "Abolishment risk:")))
	b.WriteString(RiskStyle(res.Risk.Category).Render(fmt.Sprintf("%s%% %s",
		round.String(res.Risk.Percent(), round.Percent), res.Risk.Category)))
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("  confidence %s", res.Risk.Confidence)))
	b.WriteString("\n")

	if res.EmissionsAvailable {
		writeField(&b, "Covered emissions", fmt.Sprintf("%s of %s Mt CO2",
			round.String(res.Emissions.CoveredCO2, round.Mass), round.String(res.Emissions.TotalCO2, round.Mass)))
		writeField(&b, "Potential reduction", fmt.Sprintf("%s Mt/yr",
			round.String(res.Emissions.PotentialReduction, round.Mass)))
		if !res.Equivalencies.IsEmpty {
			b.WriteString(SubtleStyle.Render(res.Equivalencies.DisplayText))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(WarningStyle.Render(res.Disclaimer))
		b.WriteString("\n")
	}

	if last, ok := res.Final(); ok {
		writeField(&b, fmt.Sprintf("Cumulative to %d", last.Year), fmt.Sprintf("%s, %s Mt CO2 avoided",
			engine.FormatMillions(last.CumulativeRevenue), round.String(last.CO2ReducedCumulative, round.Cumulative)))
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(res.Narrative.Recommendation))

	return BoxStyle.Width(max(width-borderPadding, 0)).Render(b.String())
}

// RenderDetailView renders one projected year together with the narrative.
func RenderDetailView(res *engine.Result, e projection.Entry, width int) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s: YEAR %d", res.PolicyName, e.Year)))
	b.WriteString("\n\n")

	revenue := engine.FormatMillions(e.Revenue)
	if e.RevenueFallback {
		revenue += " (fallback)"
	}
	writeField(&b, "Revenue", revenue)
	writeField(&b, "Cumulative revenue", engine.FormatMillions(e.CumulativeRevenue))
	writeField(&b, "CO2 reduced", round.String(e.CO2Reduced, round.Mass)+" Mt")
	writeField(&b, "CO2 reduced to date", round.String(e.CO2ReducedCumulative, round.Cumulative)+" Mt")
	writeField(&b, "CO2 after reduction", round.String(e.CO2AfterReduction, round.Mass)+" Mt")
	b.WriteString(LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, "Abolishment risk:")))
	b.WriteString(RiskStyle(e.RiskCategory).Render(fmt.Sprintf("%s%% %s",
		round.String(e.AbolishmentRisk, round.Percent), e.RiskCategory)))
	b.WriteString("\n")
	writeField(&b, "Risk-adjusted value", engine.FormatMillions(e.RiskAdjustedValue))
	b.WriteString("\n")

	n := res.Narrative
	writeList(&b, "SIMILAR POLICIES", n.SimilarPolicies, ValueStyle)
	writeList(&b, "KEY RISKS", n.KeyRisks, WarningStyle)

	if bm := n.Benchmark; bm != nil {
		b.WriteString(HeaderStyle.Render("REGIONAL BENCHMARK"))
		b.WriteString("\n")
		writeField(&b, "Coverage", bm.CoverageRank)
		writeField(&b, "Revenue", bm.RevenueRank)
		writeField(&b, "Price", bm.PriceRank)
		b.WriteString("\n")
	}

	sc := n.Scenarios
	b.WriteString(HeaderStyle.Render("SCENARIOS"))
	b.WriteString("\n")
	writeField(&b, "Expected", engine.FormatMillions(sc.Expected))
	writeField(&b, "Optimistic", engine.FormatMillions(sc.Optimistic))
	writeField(&b, "Success probability", round.String(sc.SuccessProbability, round.Percent)+"%")

	return BoxStyle.Width(max(width-borderPadding, 0)).Render(b.String())
}

func writeList(b *strings.Builder, title string, items []string, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(style.Render(it))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
