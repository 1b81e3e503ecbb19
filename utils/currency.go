package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrency renders an amount with the given symbol, thousands
// separators and two decimals. Example: ("Rs.", 1234.5) -> "Rs. 1,234.50"
func FormatCurrency(symbol string, amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	integerPart := fmt.Sprintf("%d", cents/100)

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return fmt.Sprintf("%s%s %s.%02d", sign, symbol, strings.Join(groups, ","), cents%100)
}

// FormatPercent renders a percentage with one decimal, e.g. "33.3%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
