// Package policy defines the carbon-pricing policy request and its validation rules.
package policy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the kind of carbon-pricing instrument.
type Type string

const (
	// CarbonTax is a fixed per-tonne levy.
	CarbonTax Type = "Carbon tax"
	// ETS is an emissions trading scheme.
	ETS Type = "ETS"
)

// Request bounds.
const (
	MaxCarbonPrice     = 1000.0
	MinCoveragePercent = 10.0
	MaxCoveragePercent = 90.0
	MinStartYear       = 2000
	MaxStartYear       = 2100

	// MaxProjectionYears is the default projection horizon bound shared by
	// validation and the projection engine clamp.
	MaxProjectionYears = 20
	// HardMaxProjectionYears caps any configured horizon.
	HardMaxProjectionYears = 50

	DefaultProjectionYears = 5
	DefaultStartYear       = 2025
)

// TypeInfo describes a policy type for listings.
type TypeInfo struct {
	Type        Type   `json:"type"`
	Description string `json:"description"`
}

// Types returns the supported policy types in display order.
func Types() []TypeInfo {
	return []TypeInfo{
		{Type: CarbonTax, Description: "Direct tax on carbon emissions"},
		{Type: ETS, Description: "Emissions Trading System (cap-and-trade)"},
	}
}

// ParseType accepts the display name or a loose alias ("tax", "carbon_tax", "ets").
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "carbon tax", "carbon_tax", "carbon-tax", "tax":
		return CarbonTax, nil
	case "ets", "emissions trading", "cap-and-trade":
		return ETS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicyType, s)
	}
}

// Request is an immutable description of a policy to simulate.
type Request struct {
	Country         string  `json:"country" yaml:"country"`
	PolicyType      Type    `json:"policy_type" yaml:"policy_type"`
	CarbonPrice     float64 `json:"carbon_price" yaml:"carbon_price"`
	CoveragePercent float64 `json:"coverage_percent" yaml:"coverage_percent"`
	StartYear       int     `json:"start_year" yaml:"start_year"`
	ProjectionYears int     `json:"projection_years" yaml:"projection_years"`
}

// Name returns a display name such as "Carbon tax - Canada 2025".
func (r Request) Name() string {
	return fmt.Sprintf("%s - %s %d", r.PolicyType, r.Country, r.StartYear)
}

// WithDefaults fills zero StartYear and ProjectionYears.
func (r Request) WithDefaults() Request {
	if r.StartYear == 0 {
		r.StartYear = DefaultStartYear
	}
	if r.ProjectionYears == 0 {
		r.ProjectionYears = DefaultProjectionYears
	}
	return r
}

// Validate checks r against the default projection bound.
func (r Request) Validate() error {
	return r.ValidateWithMaxYears(MaxProjectionYears)
}

// ValidateWithMaxYears checks r using maxYears as the projection horizon bound.
func (r Request) ValidateWithMaxYears(maxYears int) error {
	if strings.TrimSpace(r.Country) == "" {
		return &ValidationError{Field: "country", Message: "must not be empty"}
	}
	if r.PolicyType != CarbonTax && r.PolicyType != ETS {
		return &ValidationError{Field: "policy_type", Message: fmt.Sprintf("must be %q or %q", CarbonTax, ETS)}
	}
	if math.IsNaN(r.CarbonPrice) || r.CarbonPrice <= 0 || r.CarbonPrice > MaxCarbonPrice {
		return &ValidationError{
			Field:   "carbon_price",
			Message: fmt.Sprintf("must be greater than 0 and at most %.0f", MaxCarbonPrice),
		}
	}
	if math.IsNaN(r.CoveragePercent) || r.CoveragePercent < MinCoveragePercent ||
		r.CoveragePercent > MaxCoveragePercent {
		return &ValidationError{
			Field:   "coverage_percent",
			Message: fmt.Sprintf("must be between %.0f and %.0f", MinCoveragePercent, MaxCoveragePercent),
		}
	}
	if r.StartYear < MinStartYear || r.StartYear > MaxStartYear {
		return &ValidationError{
			Field:   "start_year",
			Message: fmt.Sprintf("must be between %d and %d", MinStartYear, MaxStartYear),
		}
	}
	if r.ProjectionYears < 1 || r.ProjectionYears > maxYears {
		return &ValidationError{
			Field:   "projection_years",
			Message: fmt.Sprintf("must be between 1 and %d", maxYears),
		}
	}
	return nil
}

// ClampYears bounds n to [1, maxYears].
func ClampYears(n, maxYears int) int {
	if maxYears < 1 {
		maxYears = MaxProjectionYears
	}
	return max(1, min(n, maxYears))
}

// ParseSpec parses a compact "key=value,key=value" request description,
// starting from base. Recognized keys: country, type, price, coverage, year, years.
func ParseSpec(spec string, base Request) (Request, error) {
	r := base
	for part := range strings.SplitSeq(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return r, fmt.Errorf("%w: expected key=value, got %q", ErrInvalidRequest, part)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		var err error
		switch key {
		case "country":
			r.Country = value
		case "type", "policy_type":
			r.PolicyType, err = ParseType(value)
		case "price", "carbon_price":
			r.CarbonPrice, err = strconv.ParseFloat(value, 64)
		case "coverage", "coverage_percent":
			r.CoveragePercent, err = strconv.ParseFloat(value, 64)
		case "year", "start_year":
			r.StartYear, err = strconv.Atoi(value)
		case "years", "projection_years":
			r.ProjectionYears, err = strconv.Atoi(value)
		default:
			return r, fmt.Errorf("%w: unknown key %q", ErrInvalidRequest, key)
		}
		if err != nil {
			return r, fmt.Errorf("%w: %s: %w", ErrInvalidRequest, key, err)
		}
	}
	return r, nil
}
