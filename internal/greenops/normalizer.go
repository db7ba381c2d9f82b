package greenops

import (
	"math"
	"strings"
)

// getUnitFactor returns the conversion factor to megatonnes for unit.
// Matching is case-sensitive only where it disambiguates: "Mt" versus "mt".
func getUnitFactor(unit string) (float64, bool) {
	u := strings.TrimSpace(unit)
	u = strings.TrimSuffix(u, "CO2e")
	u = strings.TrimSuffix(u, "CO2")
	switch u {
	case "kg", "Kg", "KG":
		return KgToMt, true
	case "t", "T", "tonne", "tonnes":
		return TonnesToMt, true
	case "kt", "Kt", "kT":
		return KtToMt, true
	case "Mt", "MT", "megatonnes":
		return MtToMt, true
	case "Gt", "GT", "gigatonnes":
		return GtToMt, true
	default:
		return 0, false
	}
}

// NormalizeToMt converts a mass in any recognized unit to megatonnes.
//
// Returns ErrNegativeValue for negative input, ErrInvalidUnit for an unknown
// unit and ErrCalculationOverflow for non-finite input or results.
func NormalizeToMt(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrCalculationOverflow
	}
	if value < 0 {
		return 0, ErrNegativeValue
	}

	factor, ok := getUnitFactor(unit)
	if !ok {
		return 0, ErrInvalidUnit
	}

	result := value * factor
	if math.IsInf(result, 0) {
		return 0, ErrCalculationOverflow
	}
	return result, nil
}

// IsRecognizedUnit reports whether unit is accepted by NormalizeToMt.
func IsRecognizedUnit(unit string) bool {
	_, ok := getUnitFactor(unit)
	return ok
}
