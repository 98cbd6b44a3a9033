package greenops

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//nolint:gochecknoglobals // Shared printer for English digit grouping.
var printer = message.NewPrinter(language.English)

// FormatNumber formats n with thousand separators, e.g. 18248 -> "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat rounds f to precision decimals and groups the integer part,
// e.g. FormatFloat(1234.567, 2) -> "1,234.57".
func FormatFloat(f float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	s := strconv.FormatFloat(f, 'f', precision, 64)
	intPart, frac, hasFrac := strings.Cut(s, ".")

	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return s
	}
	grouped := FormatNumber(n)
	if n == 0 && strings.HasPrefix(intPart, "-") {
		grouped = "-" + grouped
	}
	if !hasFrac {
		return grouped
	}
	return grouped + "." + frac
}

// FormatLarge abbreviates values of a million or more as "~X.X million" or
// "~X.X billion" and groups smaller values.
func FormatLarge(n float64) string {
	switch {
	case n >= BillionThreshold:
		return fmt.Sprintf("~%.1f billion", n/BillionThreshold)
	case n >= LargeNumberThreshold:
		return fmt.Sprintf("~%.1f million", n/LargeNumberThreshold)
	default:
		return FormatNumber(int64(math.Round(n)))
	}
}

// FormatLbs renders a footprint, e.g. FormatLbs(1234.5, 1) -> "1,234.5 lbs CO2".
func FormatLbs(lbs float64, precision int) string {
	return FormatFloat(lbs, precision) + " lbs CO2"
}
