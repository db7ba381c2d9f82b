// Package round applies display rounding with decimal arithmetic so that
// values like 2.675 round half away from zero as written, not as stored.
package round

import (
	"math"

	"github.com/shopspring/decimal"
)

// Display precisions.
const (
	Money      = 2
	Mass       = 2
	Cumulative = 3
	Percent    = 1
)

// To rounds v to places decimal places. Non-finite values are returned as 0.
func To(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// String formats v with exactly places decimals.
func String(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero.StringFixed(places)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
