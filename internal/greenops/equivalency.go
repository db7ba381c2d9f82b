package greenops

import (
	"fmt"
	"math"
	"strings"

	"github.com/ecoimpact/carbonsim/internal/round"
)

// Translate converts avoided emissions in megatonnes into everyday equivalents.
//
// Counts are truncated to whole units and coal plants are rounded to two
// decimals. Zero, negative or non-finite input yields an empty translation
// with every count zero; Translate never fails.
//
// Example:
//
//	eq := Translate(2.5)
//	fmt.Println(eq.DisplayText)
func Translate(mt float64) Equivalencies {
	if math.IsNaN(mt) || math.IsInf(mt, 0) || mt <= 0 {
		return Equivalencies{Source: SourceCitation, IsEmpty: true}
	}

	tonnes := mt * 1e6
	cars := toCount(tonnes / TonnesPerCarYear)
	trees := toCount(tonnes / TonnesPerTreeYear)
	homes := toCount(tonnes / TonnesPerHomeYear)
	coal := round.To(mt/MtPerCoalPlantYear, 2)

	results := []EquivalencyResult{
		{
			Type:           EquivalencyCarsOffRoad,
			Value:          float64(cars),
			FormattedValue: formatEquivalencyValue(float64(cars)),
			Label:          "cars off the road for a year",
		},
		{
			Type:           EquivalencyTreesPlanted,
			Value:          float64(trees),
			FormattedValue: formatEquivalencyValue(float64(trees)),
			Label:          "trees planted",
		},
		{
			Type:           EquivalencyCoalPlantsClosed,
			Value:          coal,
			FormattedValue: FormatFloat(coal, 2),
			Label:          "coal plants closed",
		},
		{
			Type:           EquivalencyHomesPowered,
			Value:          float64(homes),
			FormattedValue: formatEquivalencyValue(float64(homes)),
			Label:          "homes powered",
		},
	}

	displayText := fmt.Sprintf(
		"Equivalent to taking %s cars off the road for a year, planting %s trees, or powering %s homes",
		approx(results[0].FormattedValue), approx(results[1].FormattedValue), approx(results[3].FormattedValue),
	)
	compactText := fmt.Sprintf("(≈ %s cars, %s trees, %s homes)",
		results[0].FormattedValue, results[1].FormattedValue, results[3].FormattedValue)

	return Equivalencies{
		InputMt:          mt,
		CarsOffRoad:      cars,
		TreesPlanted:     trees,
		CoalPlantsClosed: coal,
		HomesPowered:     homes,
		Results:          results,
		DisplayText:      displayText,
		CompactText:      compactText,
		Source:           SourceCitation,
	}
}

// Calculate normalizes input to megatonnes and translates it.
// Unlike Translate it reports unit and sign problems as errors.
func Calculate(input CarbonInput) (Equivalencies, error) {
	mt, err := NormalizeToMt(input.Value, input.Unit)
	if err != nil {
		return Equivalencies{Source: SourceCitation, IsEmpty: true}, err
	}
	return Translate(mt), nil
}

// approx prefixes "~" unless the formatted value already carries it.
func approx(s string) string {
	if strings.HasPrefix(s, "~") {
		return s
	}
	return "~" + s
}

// toCount truncates a non-negative quantity to an int64, saturating on overflow.
func toCount(v float64) int64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// formatEquivalencyValue uses large-number scaling for values of a million
// or more and comma-separated integers below that.
func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
