package pipeline

import (
	"math"
	"regexp"
	"strconv"
)

var nonNumericChars = regexp.MustCompile(`[^0-9.\-]`)

// NormalizeCurrency converts a loosely-formatted monetary value (currency
// symbols, thousands separators, blank) into a signed float. It is a total
// function: anything unparseable, including empty input, yields 0.0, and it
// never returns NaN or an infinity.
func NormalizeCurrency(value string) float64 {
	if value == "" {
		return 0.0
	}

	clean := nonNumericChars.ReplaceAllString(value, "")
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0
	}
	return f
}
