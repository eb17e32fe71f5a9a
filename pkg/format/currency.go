// Package format renders amounts for human-readable output.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/algoinvest/pkg/constants"
)

// Currency returns a currency string with the given symbol and thousands
// separators (e.g., "-€1,234.56"). An empty symbol uses the default.
func Currency(amount float64, symbol string) string {
	if symbol == "" {
		symbol = constants.DefaultCurrencySymbol
	}
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// Percent returns a percentage with two decimals (e.g., "17.22%").
func Percent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
