package knapsack

import (
	"fmt"
	"slices"

	"github.com/iwvelando/algoinvest/pkg/asset"
	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/mathutil"
)

// Dynamic solves the 0/1 knapsack exactly over a table indexed by asset
// count and budget in whole cents.
type Dynamic struct {
	// MaxCells caps (n+1)*(budget+1); zero means constants.DefaultDynamicMaxCells.
	MaxCells int64
	// Compact keeps a single rolling row plus a one-bit-per-cell decision
	// trace instead of the full profit table.
	Compact bool
}

// Name implements Solver.
func (Dynamic) Name() string { return constants.SolverDynamic }

func (d Dynamic) limit() int64 {
	if d.MaxCells <= 0 {
		return constants.DefaultDynamicMaxCells
	}
	return d.MaxCells
}

// Solve returns an optimal selection. Costs are already whole cents, so the
// table is indexed exactly and never by floating-point comparison.
func (d Dynamic) Solve(assets []asset.Asset, budget mathutil.Cents) (Selection, error) {
	feasible, err := prepare(assets, budget)
	if err != nil {
		return Selection{}, err
	}
	n := int64(len(feasible))
	if n == 0 {
		return newSelection(d.Name(), nil), nil
	}

	limit := d.limit()
	width := int64(budget) + 1
	if int64(budget) >= limit || n+1 > limit/width {
		return Selection{}, fmt.Errorf("%w: %d assets x %d cents exceeds %d cells",
			ErrTableTooLarge, n, int64(budget), limit)
	}

	var picked []asset.Asset
	if d.Compact {
		picked = solveCompact(feasible, width)
	} else {
		picked = solveTable(feasible, width)
	}
	return newSelection(d.Name(), picked), nil
}

// solveTable fills the full (n+1) x width table, stored row-major so that
// T[i][c] lives at i*width+c.
//
//	T[0][c] = 0
//	T[i][c] = T[i-1][c]                                  if cost_i > c
//	T[i][c] = max(T[i-1][c], T[i-1][c-cost_i] + profit_i) otherwise
func solveTable(items []asset.Asset, width int64) []asset.Asset {
	n := int64(len(items))
	table := make([]mathutil.Micros, (n+1)*width)

	for i := int64(1); i <= n; i++ {
		cost := int64(items[i-1].Cost)
		profit := items[i-1].Profit
		prev := table[(i-1)*width : i*width]
		row := table[i*width : (i+1)*width]

		copy(row[:cost], prev[:cost])
		for c := cost; c < width; c++ {
			keep := prev[c]
			take := prev[c-cost] + profit
			if take > keep {
				row[c] = take
			} else {
				row[c] = keep
			}
		}
	}

	// Asset i is in the optimum exactly when including it changed T[i][c].
	var picked []asset.Asset
	c := width - 1
	for i := n; i > 0; i-- {
		if table[i*width+c] != table[(i-1)*width+c] {
			picked = append(picked, items[i-1])
			c -= int64(items[i-1].Cost)
		}
	}
	slices.Reverse(picked)
	return picked
}

// solveCompact runs the same recurrence over one row updated in place from
// high to low cost, recording T[i][c] != T[i-1][c] in a bitset.
func solveCompact(items []asset.Asset, width int64) []asset.Asset {
	n := int64(len(items))
	row := make([]mathutil.Micros, width)
	trace := newBitset(n * width)

	for i := int64(0); i < n; i++ {
		cost := int64(items[i].Cost)
		profit := items[i].Profit
		base := i * width
		for c := width - 1; c >= cost; c-- {
			if take := row[c-cost] + profit; take > row[c] {
				row[c] = take
				trace.set(base + c)
			}
		}
	}

	var picked []asset.Asset
	c := width - 1
	for i := n - 1; i >= 0; i-- {
		if trace.get(i*width + c) {
			picked = append(picked, items[i])
			c -= int64(items[i].Cost)
		}
	}
	slices.Reverse(picked)
	return picked
}

type bitset []uint64

func newBitset(size int64) bitset {
	return make(bitset, (size+63)/64)
}

func (b bitset) set(i int64) {
	b[i>>6] |= 1 << uint(i&63)
}

func (b bitset) get(i int64) bool {
	return b[i>>6]&(1<<uint(i&63)) != 0
}
