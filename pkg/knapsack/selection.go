// Package knapsack implements the three asset selection solvers: exhaustive
// search, the ratio-greedy heuristic, and exact dynamic programming. Each
// solver is a pure function of the asset list and the budget.
package knapsack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/algoinvest/pkg/asset"
	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/mathutil"
)

var (
	// ErrInvalidBudget is returned when the budget is not positive.
	ErrInvalidBudget = errors.New("budget must be positive")

	// ErrTooManyAssets is returned when the exhaustive solver's size guard is exceeded.
	ErrTooManyAssets = errors.New("too many assets for exhaustive search")

	// ErrTableTooLarge is returned when the dynamic-programming table would exceed its cell ceiling.
	ErrTableTooLarge = errors.New("dynamic-programming table exceeds size limit")

	// ErrUnknownSolver is returned by New for an unrecognised solver name.
	ErrUnknownSolver = errors.New("unknown solver")
)

// Selection is the feasible subset chosen by one solver invocation.
type Selection struct {
	Solver      string
	Assets      []asset.Asset
	TotalCost   mathutil.Cents
	TotalProfit mathutil.Micros
}

func newSelection(solver string, picked []asset.Asset) Selection {
	sel := Selection{Solver: solver, Assets: picked}
	if sel.Assets == nil {
		sel.Assets = []asset.Asset{}
	}
	for _, a := range picked {
		sel.TotalCost += a.Cost
		sel.TotalProfit += a.Profit
	}
	return sel
}

// Len returns the number of selected assets.
func (s Selection) Len() int {
	return len(s.Assets)
}

// IDs returns the selected asset identifiers in selection order.
func (s Selection) IDs() []string {
	ids := make([]string, len(s.Assets))
	for i, a := range s.Assets {
		ids[i] = a.ID
	}
	return ids
}

// Profitability returns total profit as a percentage of total cost.
func (s Selection) Profitability() float64 {
	return mathutil.CalculatePercentage(s.TotalProfit.Float64(), s.TotalCost.Float64())
}

// Solver selects assets under a budget.
type Solver interface {
	Name() string
	Solve(assets []asset.Asset, budget mathutil.Cents) (Selection, error)
}

// Limits bounds the exponential and pseudo-polynomial solvers.
type Limits struct {
	ExhaustiveMaxAssets int
	DynamicMaxCells     int64
	DynamicCompact      bool
}

// New returns the solver registered under name.
func New(name string, limits Limits) (Solver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case constants.SolverExhaustive:
		return Exhaustive{MaxAssets: limits.ExhaustiveMaxAssets}, nil
	case constants.SolverGreedy:
		return Greedy{}, nil
	case constants.SolverDynamic:
		return Dynamic{MaxCells: limits.DynamicMaxCells, Compact: limits.DynamicCompact}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSolver, name)
	}
}

// Names lists every solver in the order reports present them.
func Names() []string {
	return []string{constants.SolverExhaustive, constants.SolverGreedy, constants.SolverDynamic}
}

// IsCapacityError reports whether err is a size guard or resource limit
// rather than a failure of the input.
func IsCapacityError(err error) bool {
	return errors.Is(err, ErrTooManyAssets) || errors.Is(err, ErrTableTooLarge)
}

func prepare(assets []asset.Asset, budget mathutil.Cents) ([]asset.Asset, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("%w (got %s)", ErrInvalidBudget, budget)
	}
	feasible, _ := asset.Feasible(assets, budget)
	return feasible, nil
}
