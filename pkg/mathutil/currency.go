// Package mathutil provides common mathematical utility functions and the
// fixed-point money types used by the solvers.
package mathutil

import (
	"math"

	"github.com/iwvelando/algoinvest/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for display and tolerance comparisons only.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}
