// Package cli implements budgetctl, the command-line front end of the budget
// optimizer, along with its terminal rendering helpers.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FormatDollars formats a whole-dollar amount with thousands separators.
// e.g., 1234567 -> "$1,234,567", -50 -> "-$50"
func FormatDollars(n int64) string {
	if n < 0 {
		return "-$" + FormatNumber(-n)
	}
	return "$" + FormatNumber(n)
}

// FormatNumber adds thousands separators to n.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatDelta formats a signed change, or "·" when there is none.
func FormatDelta(n int64) string {
	switch {
	case n > 0:
		return "+" + FormatNumber(n)
	case n < 0:
		return FormatNumber(n)
	default:
		return "·"
	}
}

// FormatPercent formats a share in [0, 1] as a percentage.
func FormatPercent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

// incomeShares returns each amount as a fraction of income. All shares are
// zero when income is zero.
func incomeShares(amounts []float64, income int64) []float64 {
	shares := make([]float64, len(amounts))
	if income == 0 {
		return shares
	}
	copy(shares, amounts)
	floats.Scale(1/float64(income), shares)
	return shares
}

// weightedMeanChange is the weight-averaged absolute change between two
// allocations. It is zero when every weight is zero.
func weightedMeanChange(before, after, weights []float64) float64 {
	if floats.Sum(weights) == 0 {
		return 0
	}
	diffs := make([]float64, len(after))
	floats.SubTo(diffs, after, before)
	for i, d := range diffs {
		if d < 0 {
			diffs[i] = -d
		}
	}
	return stat.Mean(diffs, weights)
}
