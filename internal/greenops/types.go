// Package greenops translates avoided CO2 into relatable everyday equivalents.
//
// It converts megatonnes of avoided emissions into cars taken off the road,
// trees planted, coal plants closed and homes powered, using published
// conversion factors.
package greenops

import "fmt"

// EquivalencyType represents a category of carbon equivalency.
type EquivalencyType int

const (
	// EquivalencyCarsOffRoad is passenger vehicles removed for one year.
	EquivalencyCarsOffRoad EquivalencyType = iota

	// EquivalencyTreesPlanted is mature trees absorbing CO2 for one year.
	EquivalencyTreesPlanted

	// EquivalencyCoalPlantsClosed is average coal plants idled for one year.
	EquivalencyCoalPlantsClosed

	// EquivalencyHomesPowered is homes' annual energy emissions.
	EquivalencyHomesPowered
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyCarsOffRoad:
		return "CarsOffRoad"
	case EquivalencyTreesPlanted:
		return "TreesPlanted"
	case EquivalencyCoalPlantsClosed:
		return "CoalPlantsClosed"
	case EquivalencyHomesPowered:
		return "HomesPowered"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// MarshalText renders the type name.
func (e EquivalencyType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (e *EquivalencyType) UnmarshalText(b []byte) error {
	for t := EquivalencyCarsOffRoad; t <= EquivalencyHomesPowered; t++ {
		if t.String() == string(b) {
			*e = t
			return nil
		}
	}
	return fmt.Errorf("unknown equivalency type %q", b)
}

// CarbonInput is a mass of CO2 in an arbitrary unit.
type CarbonInput struct {
	// Value is the numeric amount.
	Value float64 `json:"value"`

	// Unit is one of kg, t, kt, Mt, Gt (optionally suffixed CO2 or CO2e).
	Unit string `json:"unit"`
}

// EquivalencyResult represents a single calculated equivalency.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`
	Label          string          `json:"label"`
}

// Equivalencies is the translation of one avoided mass.
type Equivalencies struct {
	// InputMt is the avoided mass in megatonnes CO2.
	InputMt float64 `json:"input_mt"`

	CarsOffRoad      int64   `json:"cars_off_road"`
	TreesPlanted     int64   `json:"trees_planted"`
	CoalPlantsClosed float64 `json:"coal_plants_closed"`
	HomesPowered     int64   `json:"homes_powered"`

	// Results lists the equivalencies in display order.
	Results []EquivalencyResult `json:"results,omitempty"`

	// DisplayText is the prose form for CLI/TUI output.
	// Example: "Equivalent to taking ~543,478 cars off the road for a year, ..."
	DisplayText string `json:"display_text,omitempty"`

	// CompactText is the abbreviated form for tables.
	CompactText string `json:"compact_text,omitempty"`

	// Source cites the conversion factors.
	Source string `json:"source"`

	// IsEmpty is true when the input was zero, negative or non-finite.
	IsEmpty bool `json:"is_empty"`
}
