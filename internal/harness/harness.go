// Package harness runs several knapsack solvers on the same dataset and
// budget and reports their results side by side.
package harness

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/algoinvest/internal/dataset"
	"github.com/iwvelando/algoinvest/pkg/asset"
	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/knapsack"
	"github.com/iwvelando/algoinvest/pkg/mathutil"
	"github.com/iwvelando/algoinvest/pkg/optimization"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options controls how a Runner executes solvers.
type Options struct {
	Parallel  bool
	WarnAfter time.Duration
}

// Runner executes a fixed set of solvers.
type Runner struct {
	logger  *zap.Logger
	solvers []knapsack.Solver
	opts    Options
}

// Reference is an externally chosen portfolio to compare solver results with.
type Reference struct {
	Name        string   `json:"name" yaml:"name"`
	Assets      []string `json:"assets,omitempty" yaml:"assets,omitempty"`
	TotalCost   float64  `json:"totalCost" yaml:"totalCost"`
	TotalProfit float64  `json:"totalProfit" yaml:"totalProfit"`
}

// Profitability returns the reference profit as a percentage of its cost.
func (r Reference) Profitability() float64 {
	return mathutil.CalculatePercentage(r.TotalProfit, r.TotalCost)
}

// Input is one dataset to run every solver on.
type Input struct {
	Dataset   string
	Assets    []asset.Asset
	Budget    mathutil.Cents
	Reference *Reference
	LoadStats dataset.LoadStats
}

// Holding is one selected asset as reported.
type Holding struct {
	ID          string  `json:"id" yaml:"id"`
	Cost        float64 `json:"cost" yaml:"cost"`
	RatePercent float64 `json:"ratePercent" yaml:"ratePercent"`
	Profit      float64 `json:"profit" yaml:"profit"`
}

// Report is the outcome of one Run.
type Report struct {
	Dataset    string                 `json:"dataset" yaml:"dataset"`
	Budget     float64                `json:"budget" yaml:"budget"`
	LoadStats  dataset.LoadStats      `json:"loadStats" yaml:"loadStats"`
	Stats      dataset.Stats          `json:"stats" yaml:"stats"`
	Excluded   int                    `json:"excluded" yaml:"excluded"`
	Reference  *Reference             `json:"reference,omitempty" yaml:"reference,omitempty"`
	Summaries  []optimization.Summary `json:"summaries" yaml:"summaries"`
	Selections map[string][]Holding   `json:"selections" yaml:"selections"`
}

// Summary returns the summary for the named solver, or nil.
func (r *Report) Summary(solver string) *optimization.Summary {
	for i := range r.Summaries {
		if r.Summaries[i].Solver == solver {
			return &r.Summaries[i]
		}
	}
	return nil
}

// NewRunner constructs a Runner for the provided solvers.
func NewRunner(logger *zap.Logger, solvers []knapsack.Solver, opts Options) (*Runner, error) {
	if len(solvers) == 0 {
		return nil, fmt.Errorf("at least one solver is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.WarnAfter <= 0 {
		opts.WarnAfter = constants.DefaultWarnAfter
	}
	return &Runner{logger: logger, solvers: solvers, opts: opts}, nil
}

type outcome struct {
	selection knapsack.Selection
	elapsed   time.Duration
	skipped   error
}

// Run executes every solver on the same assets and budget. A solver that
// hits its size limit is reported as skipped; any other solver error aborts
// the run.
func (r *Runner) Run(ctx context.Context, in Input) (*Report, error) {
	if in.Budget <= 0 {
		return nil, fmt.Errorf("%w (got %s)", knapsack.ErrInvalidBudget, in.Budget)
	}

	_, excluded := asset.Feasible(in.Assets, in.Budget)
	r.logger.Info("running solvers",
		zap.String("op", "harness.Run"),
		zap.String("dataset", in.Dataset),
		zap.Int("assets", len(in.Assets)),
		zap.Int("unaffordable", excluded),
		zap.String("budget", in.Budget.String()),
		zap.Bool("parallel", r.opts.Parallel),
	)
	if in.LoadStats.MixedScale {
		r.logger.Warn(dataset.MixedScaleWarning,
			zap.String("op", "harness.Run"),
			zap.String("dataset", in.Dataset),
		)
	}

	outcomes := make([]outcome, len(r.solvers))
	if r.opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, s := range r.solvers {
			i, s := i, s
			g.Go(func() error {
				o, err := r.runOne(gctx, s, in)
				outcomes[i] = o
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, s := range r.solvers {
			o, err := r.runOne(ctx, s, in)
			if err != nil {
				return nil, err
			}
			outcomes[i] = o
		}
	}

	report := &Report{
		Dataset:    in.Dataset,
		Budget:     in.Budget.Float64(),
		LoadStats:  in.LoadStats,
		Stats:      dataset.Describe(in.Assets),
		Excluded:   excluded,
		Reference:  in.Reference,
		Summaries:  make([]optimization.Summary, len(r.solvers)),
		Selections: make(map[string][]Holding, len(r.solvers)),
	}

	best, haveBest := bestProfit(outcomes)
	for i, s := range r.solvers {
		report.Summaries[i] = summarize(s.Name(), outcomes[i], best, haveBest)
		if outcomes[i].skipped != nil {
			continue
		}
		report.Selections[s.Name()] = holdings(outcomes[i].selection)
		if in.Reference != nil {
			report.Summaries[i].Comparison = Compare(report.Summaries[i], *in.Reference)
		}
	}

	return report, nil
}

func (r *Runner) runOne(ctx context.Context, s knapsack.Solver, in Input) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	start := time.Now()
	sel, err := s.Solve(in.Assets, in.Budget)
	elapsed := time.Since(start)

	if err != nil {
		if knapsack.IsCapacityError(err) {
			r.logger.Warn("solver skipped",
				zap.String("op", "harness.runOne"),
				zap.String("dataset", in.Dataset),
				zap.String("solver", s.Name()),
				zap.Error(err),
			)
			return outcome{elapsed: elapsed, skipped: err}, nil
		}
		return outcome{}, fmt.Errorf("solver %s failed on %s: %w", s.Name(), in.Dataset, err)
	}

	if elapsed > r.opts.WarnAfter {
		r.logger.Warn("solver run was slow",
			zap.String("op", "harness.runOne"),
			zap.String("dataset", in.Dataset),
			zap.String("solver", s.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Duration("warnAfter", r.opts.WarnAfter),
		)
	}

	r.logger.Debug("solver finished",
		zap.String("op", "harness.runOne"),
		zap.String("dataset", in.Dataset),
		zap.String("solver", s.Name()),
		zap.Int("selected", sel.Len()),
		zap.String("totalCost", sel.TotalCost.String()),
		zap.String("totalProfit", sel.TotalProfit.String()),
		zap.Duration("elapsed", elapsed),
	)

	return outcome{selection: sel, elapsed: elapsed}, nil
}

func bestProfit(outcomes []outcome) (mathutil.Micros, bool) {
	var best mathutil.Micros
	found := false
	for _, o := range outcomes {
		if o.skipped != nil {
			continue
		}
		if !found || o.selection.TotalProfit > best {
			best = o.selection.TotalProfit
			found = true
		}
	}
	return best, found
}

func summarize(name string, o outcome, best mathutil.Micros, haveBest bool) optimization.Summary {
	if o.skipped != nil {
		return optimization.Summary{
			Solver:  name,
			Assets:  []string{},
			Elapsed: o.elapsed,
			Skipped: true,
			Notes:   []string{o.skipped.Error()},
		}
	}

	sel := o.selection
	summary := optimization.Summary{
		Solver:        name,
		Assets:        sel.IDs(),
		Count:         sel.Len(),
		TotalCost:     sel.TotalCost.Float64(),
		TotalProfit:   mathutil.Round(sel.TotalProfit.Float64()),
		Profitability: mathutil.Round(sel.Profitability()),
		Elapsed:       o.elapsed,
	}
	if haveBest {
		summary.Gap = mathutil.Round((best - sel.TotalProfit).Float64())
		summary.Best = sel.TotalProfit == best
	}
	if sel.Len() == 0 {
		summary.Notes = append(summary.Notes, "no affordable assets")
	}
	return summary
}

func holdings(sel knapsack.Selection) []Holding {
	out := make([]Holding, len(sel.Assets))
	for i, a := range sel.Assets {
		out[i] = Holding{
			ID:          a.ID,
			Cost:        a.Cost.Float64(),
			RatePercent: a.RatePercent(),
			Profit:      mathutil.Round(a.Profit.Float64()),
		}
	}
	return out
}

// Compare measures a solver summary against a reference portfolio. Profits
// within constants.CurrencyTolerance of each other are equal.
func Compare(s optimization.Summary, ref Reference) *optimization.Comparison {
	profitDelta := s.TotalProfit - ref.TotalProfit
	c := &optimization.Comparison{
		Reference:          ref.Name,
		CountDelta:         s.Count - len(ref.Assets),
		CostDelta:          mathutil.Round(s.TotalCost - ref.TotalCost),
		ProfitDelta:        mathutil.Round(profitDelta),
		ProfitabilityDelta: mathutil.Round(s.Profitability - ref.Profitability()),
	}
	if ref.TotalProfit > 0 {
		c.ProfitDeltaPercent = mathutil.Round(profitDelta / ref.TotalProfit * constants.PercentageMultiplier)
	}

	switch {
	case math.Abs(profitDelta) <= constants.CurrencyTolerance:
		c.Verdict = optimization.VerdictEqual
	case profitDelta > 0:
		c.Verdict = optimization.VerdictBetter
	default:
		c.Verdict = optimization.VerdictWorse
	}
	return c
}
