// Package optimization provides shared data structures for optimization results.
package optimization

import "time"

// Verdicts for a solver result compared with a reference portfolio.
const (
	VerdictBetter = "better"
	VerdictWorse  = "worse"
	VerdictEqual  = "equal"
)

// Summary captures the result of a single solver run.
type Summary struct {
	Solver        string        `json:"solver" yaml:"solver"`
	Assets        []string      `json:"assets" yaml:"assets"`
	Count         int           `json:"count" yaml:"count"`
	TotalCost     float64       `json:"totalCost" yaml:"totalCost"`
	TotalProfit   float64       `json:"totalProfit" yaml:"totalProfit"`
	Profitability float64       `json:"profitability" yaml:"profitability"`
	Elapsed       time.Duration `json:"elapsed" yaml:"elapsed"`
	Gap           float64       `json:"gap" yaml:"gap"`
	Best          bool          `json:"best" yaml:"best"`
	Skipped       bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Notes         []string      `json:"notes,omitempty" yaml:"notes,omitempty"`
	Comparison    *Comparison   `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

// Comparison captures the difference between a solver result and a
// reference portfolio. Deltas are solver minus reference.
type Comparison struct {
	Reference          string  `json:"reference" yaml:"reference"`
	CountDelta         int     `json:"countDelta" yaml:"countDelta"`
	CostDelta          float64 `json:"costDelta" yaml:"costDelta"`
	ProfitDelta        float64 `json:"profitDelta" yaml:"profitDelta"`
	ProfitDeltaPercent float64 `json:"profitDeltaPercent" yaml:"profitDeltaPercent"`
	ProfitabilityDelta float64 `json:"profitabilityDelta" yaml:"profitabilityDelta"`
	Verdict            string  `json:"verdict" yaml:"verdict"`
}
