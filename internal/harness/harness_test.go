package harness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/algoinvest/internal/dataset"
	"github.com/iwvelando/algoinvest/pkg/asset"
	"github.com/iwvelando/algoinvest/pkg/knapsack"
	"github.com/iwvelando/algoinvest/pkg/mathutil"
	"github.com/iwvelando/algoinvest/pkg/optimization"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testAssets(t *testing.T) []asset.Asset {
	t.Helper()
	specs := []struct {
		id   string
		cost mathutil.Cents
		rate string
	}{
		{"A", 4000, "0.2"},
		{"B", 5000, "0.15"},
		{"C", 3000, "0.1"},
		{"D", 2000, "0.21"},
		{"E", 20000, "0.5"},
	}
	assets := make([]asset.Asset, len(specs))
	for i, s := range specs {
		a, err := asset.New(s.id, s.cost, decimal.RequireFromString(s.rate))
		require.NoError(t, err)
		assets[i] = a
	}
	return assets
}

func defaultSolvers() []knapsack.Solver {
	return []knapsack.Solver{knapsack.Exhaustive{}, knapsack.Greedy{}, knapsack.Dynamic{}}
}

type failingSolver struct{ err error }

func (failingSolver) Name() string { return "failing" }

func (f failingSolver) Solve([]asset.Asset, mathutil.Cents) (knapsack.Selection, error) {
	return knapsack.Selection{}, f.err
}

type slowSolver struct {
	knapsack.Greedy
	delay time.Duration
}

func (s slowSolver) Solve(assets []asset.Asset, budget mathutil.Cents) (knapsack.Selection, error) {
	time.Sleep(s.delay)
	return s.Greedy.Solve(assets, budget)
}

func TestNewRunner(t *testing.T) {
	_, err := NewRunner(nil, nil, Options{})
	assert.Error(t, err)

	r, err := NewRunner(nil, defaultSolvers(), Options{})
	require.NoError(t, err)
	assert.NotNil(t, r.logger)
	assert.Positive(t, r.opts.WarnAfter)
}

func TestRunComparesSolvers(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run(map[bool]string{false: "sequential", true: "parallel"}[parallel], func(t *testing.T) {
			r, err := NewRunner(zap.NewNop(), defaultSolvers(), Options{Parallel: parallel})
			require.NoError(t, err)

			report, err := r.Run(context.Background(), Input{
				Dataset:   "scenario",
				Assets:    testAssets(t),
				Budget:    10000,
				LoadStats: dataset.LoadStats{Total: 6, Valid: 5, Rejected: 1},
			})
			require.NoError(t, err)

			assert.Equal(t, "scenario", report.Dataset)
			assert.Equal(t, 100.0, report.Budget)
			assert.Equal(t, 1, report.Excluded)
			assert.Equal(t, 5, report.Stats.Count)
			assert.Equal(t, 1, report.LoadStats.Rejected)
			require.Len(t, report.Summaries, 3)

			// Summaries keep solver order regardless of completion order.
			assert.Equal(t, "exhaustive", report.Summaries[0].Solver)
			assert.Equal(t, "greedy", report.Summaries[1].Solver)
			assert.Equal(t, "dynamic", report.Summaries[2].Solver)

			dp := report.Summary("dynamic")
			require.NotNil(t, dp)
			assert.Equal(t, []string{"A", "B"}, dp.Assets)
			assert.Equal(t, 15.5, dp.TotalProfit)
			assert.Equal(t, 90.0, dp.TotalCost)
			assert.True(t, dp.Best)
			assert.Zero(t, dp.Gap)

			greedy := report.Summary("greedy")
			require.NotNil(t, greedy)
			assert.Equal(t, []string{"D", "A", "C"}, greedy.Assets)
			assert.Equal(t, 15.2, greedy.TotalProfit)
			assert.False(t, greedy.Best)
			assert.InDelta(t, 0.3, greedy.Gap, 1e-9)

			require.Len(t, report.Selections["dynamic"], 2)
			assert.Equal(t, Holding{ID: "A", Cost: 40, RatePercent: 20, Profit: 8}, report.Selections["dynamic"][0])
			assert.Nil(t, report.Summary("missing"))
		})
	}
}

func TestRunSkipsCapacityErrors(t *testing.T) {
	solvers := []knapsack.Solver{knapsack.Exhaustive{MaxAssets: 2}, knapsack.Dynamic{MaxCells: 10}, knapsack.Greedy{}}
	r, err := NewRunner(nil, solvers, Options{Parallel: true})
	require.NoError(t, err)

	report, err := r.Run(context.Background(), Input{Dataset: "d", Assets: testAssets(t), Budget: 10000})
	require.NoError(t, err)

	for _, name := range []string{"exhaustive", "dynamic"} {
		s := report.Summary(name)
		require.NotNil(t, s)
		assert.True(t, s.Skipped, name)
		assert.NotEmpty(t, s.Notes, name)
		assert.False(t, s.Best, name)
		_, ok := report.Selections[name]
		assert.False(t, ok, name)
	}

	greedy := report.Summary("greedy")
	require.NotNil(t, greedy)
	assert.False(t, greedy.Skipped)
	assert.True(t, greedy.Best)
}

func TestRunAbortsOnSolverError(t *testing.T) {
	boom := errors.New("boom")
	for _, parallel := range []bool{false, true} {
		r, err := NewRunner(nil, []knapsack.Solver{knapsack.Greedy{}, failingSolver{err: boom}}, Options{Parallel: parallel})
		require.NoError(t, err)

		_, err = r.Run(context.Background(), Input{Dataset: "d", Assets: testAssets(t), Budget: 10000})
		assert.ErrorIs(t, err, boom)
	}
}

func TestRunInvalidBudget(t *testing.T) {
	r, err := NewRunner(nil, defaultSolvers(), Options{})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), Input{Assets: testAssets(t), Budget: 0})
	assert.ErrorIs(t, err, knapsack.ErrInvalidBudget)
}

func TestRunCancelledContext(t *testing.T) {
	r, err := NewRunner(nil, defaultSolvers(), Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, Input{Assets: testAssets(t), Budget: 10000})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyDataset(t *testing.T) {
	r, err := NewRunner(nil, defaultSolvers(), Options{Parallel: true})
	require.NoError(t, err)

	report, err := r.Run(context.Background(), Input{Dataset: "empty", Budget: 50000})
	require.NoError(t, err)
	for _, s := range report.Summaries {
		assert.Zero(t, s.TotalProfit, s.Solver)
		assert.Zero(t, s.Count, s.Solver)
		assert.Contains(t, s.Notes, "no affordable assets", s.Solver)
		assert.True(t, s.Best, s.Solver)
	}
}

func TestRunWarnsOnSlowSolver(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r, err := NewRunner(zap.New(core), []knapsack.Solver{slowSolver{delay: 20 * time.Millisecond}}, Options{WarnAfter: time.Millisecond})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), Input{Dataset: "d", Assets: testAssets(t), Budget: 10000})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("solver run was slow").Len())
}

func TestRunWarnsOnMixedScale(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r, err := NewRunner(zap.New(core), defaultSolvers(), Options{})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), Input{
		Dataset:   "d",
		Assets:    testAssets(t),
		Budget:    10000,
		LoadStats: dataset.LoadStats{Total: 5, Valid: 5, MixedScale: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage(dataset.MixedScaleWarning).Len())

	logs.TakeAll()
	_, err = r.Run(context.Background(), Input{Dataset: "d", Assets: testAssets(t), Budget: 10000})
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage(dataset.MixedScaleWarning).Len())
}

func TestRunWithReference(t *testing.T) {
	r, err := NewRunner(nil, defaultSolvers(), Options{})
	require.NoError(t, err)

	ref := &Reference{Name: "Sienna", Assets: []string{"A", "C"}, TotalCost: 70, TotalProfit: 11}
	report, err := r.Run(context.Background(), Input{Dataset: "d", Assets: testAssets(t), Budget: 10000, Reference: ref})
	require.NoError(t, err)

	for _, s := range report.Summaries {
		require.NotNil(t, s.Comparison, s.Solver)
		assert.Equal(t, "Sienna", s.Comparison.Reference)
		assert.Equal(t, optimization.VerdictBetter, s.Comparison.Verdict, s.Solver)
	}
	dp := report.Summary("dynamic")
	assert.Equal(t, 4.5, dp.Comparison.ProfitDelta)
	assert.Equal(t, 20.0, dp.Comparison.CostDelta)
	assert.Equal(t, 0, dp.Comparison.CountDelta)
}

func TestCompare(t *testing.T) {
	ref := Reference{Name: "ref", Assets: []string{"x", "y"}, TotalCost: 498.76, TotalProfit: 196.61}

	tests := []struct {
		name        string
		summary     optimization.Summary
		wantVerdict string
		wantPercent float64
	}{
		{
			name:        "Better",
			summary:     optimization.Summary{Count: 3, TotalCost: 499.94, TotalProfit: 198.51, Profitability: 39.71},
			wantVerdict: optimization.VerdictBetter,
			wantPercent: 0.97,
		},
		{
			name:        "Worse",
			summary:     optimization.Summary{Count: 1, TotalCost: 400, TotalProfit: 150},
			wantVerdict: optimization.VerdictWorse,
			wantPercent: -23.71,
		},
		{
			name:        "Equal within tolerance",
			summary:     optimization.Summary{Count: 2, TotalCost: 498.76, TotalProfit: 196.615},
			wantVerdict: optimization.VerdictEqual,
			wantPercent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compare(tt.summary, ref)
			assert.Equal(t, tt.wantVerdict, c.Verdict)
			assert.InDelta(t, tt.wantPercent, c.ProfitDeltaPercent, 0.01)
			assert.Equal(t, tt.summary.Count-2, c.CountDelta)
		})
	}

	zero := Compare(optimization.Summary{TotalProfit: 5}, Reference{Name: "empty"})
	assert.Zero(t, zero.ProfitDeltaPercent)
	assert.Equal(t, optimization.VerdictBetter, zero.Verdict)
}
