package greenops

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for number formatting.
// Uses English locale for consistent thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousand separators.
// Example: FormatNumber(18248) returns "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat formats a float with the specified precision and thousand separators.
// Example: FormatFloat(1234.567, 2) returns "1,234.57".
func FormatFloat(f float64, precision int) string {
	const base = 10
	multiplier := math.Pow(base, float64(precision))
	rounded := math.Round(f*multiplier) / multiplier

	if precision <= 0 {
		return FormatNumber(int64(rounded))
	}

	formatted := strconv.FormatFloat(rounded, 'f', precision, 64)
	intPart, fracPart, ok := strings.Cut(formatted, ".")
	if !ok {
		return formatted
	}
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return formatted
	}
	sign := ""
	if n == 0 && strings.HasPrefix(intPart, "-") {
		sign = "-"
	}
	return sign + printer.Sprintf("%d", n) + "." + fracPart
}

// FormatLarge formats large numbers with abbreviated notation.
//
// Values below LargeNumberThreshold (1 million) use comma-separated format.
// Values at or above LargeNumberThreshold use "~X.X million" format, then
// billion and trillion at their thresholds.
//
// Example: FormatLarge(1500000000) returns "~1.5 billion".
func FormatLarge(n float64) string {
	switch {
	case n >= TrillionThreshold:
		return fmt.Sprintf("~%.1f trillion", n/TrillionThreshold)
	case n >= BillionThreshold:
		return fmt.Sprintf("~%.1f billion", n/BillionThreshold)
	case n >= LargeNumberThreshold:
		return fmt.Sprintf("~%.1f million", n/LargeNumberThreshold)
	default:
		return FormatNumber(int64(math.Round(n)))
	}
}
