package pagination

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ecoimpact/carbonsim/internal/engine"
)

// sweepKeys extracts the comparable value for each sweep sort field.
// Failed items sort after successful ones regardless of order.
//
//nolint:gochecknoglobals // Static field table.
var sweepKeys = map[string]func(engine.SweepItem) float64{
	"index":    func(it engine.SweepItem) float64 { return float64(it.Index) },
	"price":    func(it engine.SweepItem) float64 { return it.Request.CarbonPrice },
	"coverage": func(it engine.SweepItem) float64 { return it.Request.CoveragePercent },
	"revenue":  func(it engine.SweepItem) float64 { return it.Result.Revenue },
	"risk":     func(it engine.SweepItem) float64 { return it.Result.Risk.Probability },
	"cumulative_revenue": func(it engine.SweepItem) float64 {
		f, _ := it.Result.Final()
		return f.CumulativeRevenue
	},
	"co2_reduced": func(it engine.SweepItem) float64 {
		f, _ := it.Result.Final()
		return f.CO2ReducedCumulative
	},
	"risk_adjusted": func(it engine.SweepItem) float64 { return it.Result.RiskAdjustedValue },
}

// requestOnly fields can be read from failed items too.
//
//nolint:gochecknoglobals // Static field table.
var requestOnly = map[string]bool{"index": true, "price": true, "coverage": true, "country": true}

// SweepSortFields lists the accepted --sort fields.
func SweepSortFields() []string {
	fields := []string{"country"}
	for k := range sweepKeys {
		fields = append(fields, k)
	}
	slices.Sort(fields)
	return fields
}

// SortSweep returns a stably sorted copy of items.
func SortSweep(items []engine.SweepItem, field, order string) ([]engine.SweepItem, error) {
	if field == "" {
		return items, nil
	}
	key, ok := sweepKeys[field]
	if !ok && field != "country" {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field,
			strings.Join(SweepSortFields(), ", "))
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b engine.SweepItem) int {
		if !requestOnly[field] {
			if c := cmp.Compare(boolRank(a.Result == nil), boolRank(b.Result == nil)); c != 0 {
				return c
			}
			if a.Result == nil {
				return 0
			}
		}
		var c int
		if field == "country" {
			c = strings.Compare(a.Request.Country, b.Request.Country)
		} else {
			c = cmp.Compare(key(a), key(b))
		}
		if order == SortOrderDesc {
			return -c
		}
		return c
	})
	return sorted, nil
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
