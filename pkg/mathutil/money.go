package mathutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/shopspring/decimal"
)

// ErrAmountOverflow is returned when an amount does not fit in 64 bits at the
// requested precision.
var ErrAmountOverflow = errors.New("amount overflows fixed-point range")

// Cents is a monetary amount in hundredths of a currency unit. Costs and
// budgets are carried as Cents so that every comparison and sum is exact.
type Cents int64

// Micros is a monetary amount in millionths of a currency unit. Profit
// amounts are carried as Micros so that cost * rate keeps sub-cent precision.
type Micros int64

// ParseAmount parses a decimal string such as "1,204.99" without rounding.
func ParseAmount(value string) (decimal.Decimal, error) {
	trimmed := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if trimmed == "" {
		return decimal.Decimal{}, fmt.Errorf("amount cannot be empty")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d, nil
}

// CentsFromDecimal converts a currency amount into Cents, rounding half away
// from zero to the nearest cent.
func CentsFromDecimal(d decimal.Decimal) (Cents, error) {
	scaled := d.Shift(2).Round(0)
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrAmountOverflow, d.String())
	}
	return Cents(scaled.IntPart()), nil
}

// FloorCents converts a currency amount into Cents, dropping any fraction of
// a cent toward negative infinity. Budgets use it so the discretized budget
// never exceeds the caller's.
func FloorCents(d decimal.Decimal) (Cents, error) {
	scaled := d.Shift(2).Floor()
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrAmountOverflow, d.String())
	}
	return Cents(scaled.IntPart()), nil
}

// BudgetCentsFromFloat converts a float budget into Cents with FloorCents.
func BudgetCentsFromFloat(f float64) (Cents, error) {
	return FloorCents(decimal.NewFromFloat(f))
}

// Decimal returns the amount in currency units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Float64 returns the amount in currency units for display.
func (c Cents) Float64() float64 {
	return float64(c) / constants.CentsPerUnit
}

// Micros widens the amount to micro-units.
func (c Cents) Micros() Micros {
	return Micros(int64(c) * constants.MicrosPerCent)
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// MicrosFromDecimal converts a currency amount into Micros, rounding half away
// from zero to the nearest micro-unit.
func MicrosFromDecimal(d decimal.Decimal) (Micros, error) {
	scaled := d.Shift(6).Round(0)
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrAmountOverflow, d.String())
	}
	return Micros(scaled.IntPart()), nil
}

// Decimal returns the amount in currency units.
func (m Micros) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -6)
}

// Float64 returns the amount in currency units for display.
func (m Micros) Float64() float64 {
	return float64(m) / constants.MicrosPerUnit
}

// String renders the amount rounded to cents.
func (m Micros) String() string {
	return m.Decimal().StringFixed(2)
}
