package integration

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/algoinvest/internal/dataset"
	"github.com/iwvelando/algoinvest/internal/harness"
	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/knapsack"
	"go.uber.org/zap"
)

// syntheticDataset renders n shares with costs up to 100.00 and rates up to
// 40%, plus a few invalid rows.
func syntheticDataset(n int) string {
	rng := rand.New(rand.NewSource(42))
	var b strings.Builder
	b.WriteString("name,price,profit\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Share-%04d,%d.%02d,%d.%02d\n", i, rng.Intn(100), rng.Intn(100), rng.Intn(40), rng.Intn(100))
	}
	b.WriteString("Share-BAD,-1.00,10\n")
	return b.String()
}

// TestPerformance checks that greedy and dynamic handle a thousand assets
// quickly while exhaustive search is skipped.
func TestPerformance(t *testing.T) {
	start := time.Now()
	assets, stats, err := dataset.Read(strings.NewReader(syntheticDataset(1000)), constants.ProfitScalePercent)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	loadTime := time.Since(start)

	runner, err := harness.NewRunner(zap.NewNop(),
		[]knapsack.Solver{knapsack.Exhaustive{}, knapsack.Greedy{}, knapsack.Dynamic{Compact: true}},
		harness.Options{Parallel: true})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	start = time.Now()
	report, err := runner.Run(context.Background(), harness.Input{
		Dataset:   "synthetic",
		Assets:    assets,
		Budget:    50000,
		LoadStats: stats,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	runTime := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Load dataset: %v", loadTime)
	t.Logf("  Run solvers: %v", runTime)
	for _, s := range report.Summaries {
		t.Logf("  %s: %v", s.Solver, s.Elapsed)
	}

	if runTime > 10*time.Second {
		t.Errorf("Total solver time %v exceeds 10 second threshold", runTime)
	}
	if stats.Rejected < 1 {
		t.Errorf("expected the invalid row to be rejected")
	}
	if s := report.Summary(constants.SolverExhaustive); s == nil || !s.Skipped {
		t.Errorf("expected exhaustive search to be skipped for %d assets", len(assets))
	}
	greedy := report.Summary(constants.SolverGreedy)
	dynamic := report.Summary(constants.SolverDynamic)
	if dynamic.Skipped {
		t.Fatalf("dynamic solver unexpectedly skipped: %v", dynamic.Notes)
	}
	if greedy.TotalProfit > dynamic.TotalProfit {
		t.Errorf("greedy profit %.2f exceeds optimum %.2f", greedy.TotalProfit, dynamic.TotalProfit)
	}
}

// TestRepeatedRuns checks that repeated runs stay deterministic.
func TestRepeatedRuns(t *testing.T) {
	assets, _, err := dataset.Read(strings.NewReader(syntheticDataset(200)), constants.ProfitScalePercent)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	runner, err := harness.NewRunner(zap.NewNop(), []knapsack.Solver{knapsack.Greedy{}, knapsack.Dynamic{Compact: true}}, harness.Options{})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	var first []string
	for i := 0; i < 10; i++ {
		report, err := runner.Run(context.Background(), harness.Input{Dataset: "synthetic", Assets: assets, Budget: 50000})
		if err != nil {
			t.Fatalf("Run failed on iteration %d: %v", i, err)
		}
		ids := report.Summary(constants.SolverDynamic).Assets
		if i == 0 {
			first = ids
			continue
		}
		if strings.Join(ids, ",") != strings.Join(first, ",") {
			t.Fatalf("iteration %d selected a different portfolio", i)
		}
	}
}
