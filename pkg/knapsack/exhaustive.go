package knapsack

import (
	"fmt"

	"github.com/iwvelando/algoinvest/pkg/asset"
	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/mathutil"
)

// Exhaustive evaluates every subset of the feasible assets. It is the
// correctness oracle for small inputs and refuses inputs above MaxAssets.
type Exhaustive struct {
	// MaxAssets is the size guard; zero means constants.DefaultExhaustiveMaxAssets.
	// Values above constants.ExhaustiveHardLimit are clamped to it.
	MaxAssets int
}

// Name implements Solver.
func (Exhaustive) Name() string { return constants.SolverExhaustive }

func (e Exhaustive) limit() int {
	limit := e.MaxAssets
	if limit <= 0 {
		limit = constants.DefaultExhaustiveMaxAssets
	}
	if limit > constants.ExhaustiveHardLimit {
		limit = constants.ExhaustiveHardLimit
	}
	return limit
}

// Solve enumerates subsets as bitmasks in increasing order. A subset replaces
// the incumbent only on strictly greater profit, so the first optimal mask
// wins and the result is reproducible for a fixed input order.
func (e Exhaustive) Solve(assets []asset.Asset, budget mathutil.Cents) (Selection, error) {
	feasible, err := prepare(assets, budget)
	if err != nil {
		return Selection{}, err
	}
	n := len(feasible)
	if limit := e.limit(); n > limit {
		return Selection{}, fmt.Errorf("%w: %d feasible assets exceeds limit of %d", ErrTooManyAssets, n, limit)
	}

	var (
		bestMask   uint64
		bestProfit mathutil.Micros
	)
	total := uint64(1) << uint(n)
	for mask := uint64(1); mask < total; mask++ {
		var cost mathutil.Cents
		var profit mathutil.Micros
		over := false
		for i := 0; i < n; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			cost += feasible[i].Cost
			if cost > budget {
				over = true
				break
			}
			profit += feasible[i].Profit
		}
		if over {
			continue
		}
		if profit > bestProfit {
			bestProfit = profit
			bestMask = mask
		}
	}

	var picked []asset.Asset
	for i := 0; i < n; i++ {
		if bestMask&(1<<uint(i)) != 0 {
			picked = append(picked, feasible[i])
		}
	}
	return newSelection(e.Name(), picked), nil
}
