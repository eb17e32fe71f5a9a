// Package asset defines the investable asset model and the rules that turn
// raw dataset records into validated assets.
package asset

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Validation failures. Parse wraps one of these with the record context.
var (
	ErrMissingField      = errors.New("missing field")
	ErrNotNumeric        = errors.New("non-numeric field")
	ErrNonPositiveCost   = errors.New("cost must be positive")
	ErrBelowPrecision    = errors.New("cost is below one cent")
	ErrNegativeRate      = errors.New("profit rate must not be negative")
	ErrInconsistentScale = errors.New("profit value does not match the configured scale")
	ErrUnknownScale      = errors.New("unknown profit scale")
)

// Asset is one investable item. Profit is derived from Cost and Rate once at
// construction and never recomputed.
type Asset struct {
	ID     string
	Cost   mathutil.Cents
	Rate   decimal.Decimal
	Profit mathutil.Micros
}

// Record is a raw, unvalidated dataset row.
type Record struct {
	ID     string
	Cost   string
	Profit string
}

// New builds an Asset from typed values.
func New(id string, cost mathutil.Cents, rate decimal.Decimal) (Asset, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Asset{}, fmt.Errorf("%w: identifier", ErrMissingField)
	}
	if cost <= 0 {
		return Asset{}, fmt.Errorf("asset %s: %w (got %s)", id, ErrNonPositiveCost, cost)
	}
	if rate.IsNegative() {
		return Asset{}, fmt.Errorf("asset %s: %w (got %s)", id, ErrNegativeRate, rate.String())
	}
	profit, err := mathutil.MicrosFromDecimal(cost.Decimal().Mul(rate))
	if err != nil {
		return Asset{}, fmt.Errorf("asset %s: %w", id, err)
	}
	return Asset{ID: id, Cost: cost, Rate: rate, Profit: profit}, nil
}

// Parse validates a raw record under the given profit scale.
func Parse(rec Record, scale string) (Asset, error) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return Asset{}, fmt.Errorf("%w: identifier", ErrMissingField)
	}
	if strings.TrimSpace(rec.Cost) == "" {
		return Asset{}, fmt.Errorf("asset %s: %w: cost", id, ErrMissingField)
	}
	if strings.TrimSpace(rec.Profit) == "" {
		return Asset{}, fmt.Errorf("asset %s: %w: profit", id, ErrMissingField)
	}

	amount, err := mathutil.ParseAmount(rec.Cost)
	if err != nil {
		return Asset{}, fmt.Errorf("asset %s: %w: cost %q", id, ErrNotNumeric, rec.Cost)
	}
	cost, err := mathutil.CentsFromDecimal(amount)
	if err != nil {
		return Asset{}, fmt.Errorf("asset %s: %w", id, err)
	}
	if cost == 0 && amount.IsPositive() {
		return Asset{}, fmt.Errorf("asset %s: %w (got %s)", id, ErrBelowPrecision, strings.TrimSpace(rec.Cost))
	}

	rate, err := NormalizeRate(rec.Profit, scale)
	if err != nil {
		return Asset{}, fmt.Errorf("asset %s: %w", id, err)
	}

	return New(id, cost, rate)
}

// NormalizeRate converts a profit indicator into a fractional rate.
//
// Under the percent scale "12.25" and "12.25%" both mean 0.1225. Under the
// fraction scale "0.1225" means 0.1225 and a "%" suffix is rejected.
func NormalizeRate(value, scale string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	hasPercent := strings.HasSuffix(trimmed, "%")
	number := strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))
	if number == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: profit", ErrMissingField)
	}

	d, err := decimal.NewFromString(number)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: profit %q", ErrNotNumeric, value)
	}

	switch CanonicalScale(scale) {
	case constants.ProfitScalePercent:
		d = d.Shift(-2)
	case constants.ProfitScaleFraction:
		if hasPercent {
			return decimal.Decimal{}, fmt.Errorf("%w: %q under %s scale", ErrInconsistentScale, value, constants.ProfitScaleFraction)
		}
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnknownScale, scale)
	}

	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w (got %s)", ErrNegativeRate, value)
	}
	return d, nil
}

// CanonicalScale maps an empty or mixed-case scale name onto its canonical
// form. An empty scale means percent.
func CanonicalScale(scale string) string {
	trimmed := strings.ToLower(strings.TrimSpace(scale))
	switch trimmed {
	case "", "percent", "percentage", "pct":
		return constants.ProfitScalePercent
	case "fraction", "fractional", "decimal":
		return constants.ProfitScaleFraction
	default:
		return trimmed
	}
}

// Ratio returns profit per unit of cost for display. Ranking uses CompareRatio.
func (a Asset) Ratio() float64 {
	if a.Cost <= 0 {
		return 0
	}
	return a.Profit.Float64() / a.Cost.Float64()
}

// CompareRatio compares a.Profit/a.Cost with b.Profit/b.Cost exactly and
// returns -1, 0 or +1.
func CompareRatio(a, b Asset) int {
	// a.Profit*b.Cost vs b.Profit*a.Cost; all operands are non-negative.
	hi1, lo1 := bits.Mul64(uint64(a.Profit), uint64(b.Cost))
	hi2, lo2 := bits.Mul64(uint64(b.Profit), uint64(a.Cost))
	switch {
	case hi1 < hi2:
		return -1
	case hi1 > hi2:
		return 1
	case lo1 < lo2:
		return -1
	case lo1 > lo2:
		return 1
	default:
		return 0
	}
}

// RatePercent returns the rate as a percentage for display.
func (a Asset) RatePercent() float64 {
	return a.Rate.Shift(2).InexactFloat64()
}
