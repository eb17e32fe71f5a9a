package asset

import (
	"errors"
	"strings"

	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/mathutil"
)

// Rejections counts records excluded during ParseAll, keyed by reason.
type Rejections struct {
	Total   int
	Reasons map[string]int
}

// Add records one rejected record.
func (r *Rejections) Add(err error) {
	if r.Reasons == nil {
		r.Reasons = make(map[string]int)
	}
	r.Total++
	r.Reasons[Reason(err)]++
}

// Reason maps a validation error onto a short, stable reason key.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrNotNumeric):
		return "non_numeric"
	case errors.Is(err, ErrNonPositiveCost):
		return "non_positive_cost"
	case errors.Is(err, ErrBelowPrecision):
		return "below_precision"
	case errors.Is(err, ErrNegativeRate):
		return "negative_rate"
	case errors.Is(err, ErrInconsistentScale):
		return "inconsistent_scale"
	case errors.Is(err, mathutil.ErrAmountOverflow):
		return "overflow"
	default:
		return "invalid"
	}
}

// ParseAll validates every record under one scale. Invalid records are
// excluded and counted; they never abort the batch. An unknown scale is
// returned as an error since it would reject every record.
func ParseAll(records []Record, scale string) ([]Asset, Rejections, error) {
	var rejected Rejections
	if _, err := NormalizeRate("0", scale); errors.Is(err, ErrUnknownScale) {
		return nil, rejected, err
	}

	assets := make([]Asset, 0, len(records))
	for _, rec := range records {
		a, err := Parse(rec, scale)
		if err != nil {
			rejected.Add(err)
			continue
		}
		assets = append(assets, a)
	}
	return assets, rejected, nil
}

// MixedPercentShapes reports whether a batch read under the percent scale has
// both "%"-suffixed and bare profit values. Both are accepted as percentages,
// so a bare "0.10" written as a fraction silently becomes 0.1%.
func MixedPercentShapes(records []Record, scale string) bool {
	if CanonicalScale(scale) != constants.ProfitScalePercent {
		return false
	}
	var suffixed, bare bool
	for _, rec := range records {
		profit := strings.TrimSpace(rec.Profit)
		if profit == "" {
			continue
		}
		if strings.HasSuffix(profit, "%") {
			suffixed = true
		} else {
			bare = true
		}
		if suffixed && bare {
			return true
		}
	}
	return false
}

// Feasible drops assets whose cost alone exceeds the budget and returns the
// remaining assets in input order along with the number excluded.
func Feasible(assets []Asset, budget mathutil.Cents) ([]Asset, int) {
	kept := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if a.Cost > budget {
			continue
		}
		kept = append(kept, a)
	}
	return kept, len(assets) - len(kept)
}
