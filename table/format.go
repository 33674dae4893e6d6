package table

import (
	"math"
	"strconv"
	"strings"
)

// MaxFractionDigits caps the fraction digits printed for a double that has
// no recorded original string.
const MaxFractionDigits = 10

// FormatDouble prints v in fixed-point notation with as many fraction digits
// as its shortest representation needs, at most MaxFractionDigits. Whole
// numbers print without a fraction. There is no exponent and no grouping.
func FormatDouble(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if fractionDigits(s) <= MaxFractionDigits {
		return s
	}

	s = strconv.FormatFloat(v, 'f', MaxFractionDigits, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func fractionDigits(s string) int {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	return len(s) - dot - 1
}

// keepsOriginalForm reports whether the raw text of a double must be kept
// to reproduce it on read-back.
func keepsOriginalForm(raw string) bool {
	return strings.Contains(raw, ".")
}
