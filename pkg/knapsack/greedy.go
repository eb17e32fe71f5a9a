package knapsack

import (
	"slices"

	"github.com/iwvelando/algoinvest/pkg/asset"
	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/mathutil"
)

// Greedy ranks assets by profit per unit cost and takes every asset that
// still fits. It is fast but not guaranteed optimal.
type Greedy struct{}

// Name implements Solver.
func (Greedy) Name() string { return constants.SolverGreedy }

// Solve never backtracks: once an asset is taken it stays taken. Equal
// ratios keep their input order. The selection lists assets in pick order.
func (g Greedy) Solve(assets []asset.Asset, budget mathutil.Cents) (Selection, error) {
	feasible, err := prepare(assets, budget)
	if err != nil {
		return Selection{}, err
	}

	ranked := slices.Clone(feasible)
	slices.SortStableFunc(ranked, func(a, b asset.Asset) int {
		return asset.CompareRatio(b, a)
	})

	var (
		picked []asset.Asset
		spent  mathutil.Cents
	)
	for _, a := range ranked {
		if spent+a.Cost > budget {
			continue
		}
		picked = append(picked, a)
		spent += a.Cost
	}
	return newSelection(g.Name(), picked), nil
}
