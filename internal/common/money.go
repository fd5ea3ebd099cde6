package common

import (
	"fmt"
	"math"
	"strings"
)

// FormatMoney renders a dollar amount with thousands separators and no
// cents, the way figures appear on an underwriting statement.
func FormatMoney(v float64) string {
	neg := v < 0
	rounded := int64(math.Round(math.Abs(v)))

	s := fmt.Sprintf("%d", rounded)
	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

// FormatPercent renders a fraction as a percentage with one decimal place.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
