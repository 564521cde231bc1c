// Package utils provides shared utility functions.
package utils

import "fmt"

// FormatCurrency formats an amount with a thousands separator and two
// decimal places.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	whole := int64(amount)
	frac := int64((amount-float64(whole))*100 + 0.5)
	if frac >= 100 {
		whole++
		frac -= 100
	}

	result := fmt.Sprintf("%02d", frac)
	result = "." + result

	group := fmt.Sprintf("%d", whole)
	for len(group) > 3 {
		result = "," + group[len(group)-3:] + result
		group = group[:len(group)-3]
	}
	result = group + result

	if negative {
		return "-" + result
	}
	return result
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	if value > 0 {
		return fmt.Sprintf("+%.2f%%", value)
	}
	return fmt.Sprintf("%.2f%%", value)
}
