// Package output provides utilities for formatting and displaying selection reports.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/algoinvest/internal/dataset"
	"github.com/iwvelando/algoinvest/internal/harness"
	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Write renders reports in the named format.
func Write(w io.Writer, outputFormat string, reports []*harness.Report, currency string) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, reports, currency)
	case constants.OutputFormatCSV:
		return CsvFormat(w, reports)
	case constants.OutputFormatJSON:
		return JSONFormat(w, reports)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, reports)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, reports []*harness.Report, currency string) error {
	p := message.NewPrinter(language.English)
	money := func(v float64) string { return format.Currency(v, currency) }

	for i, report := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		ls := report.LoadStats
		_, _ = p.Fprintf(w, "--- Results for dataset %s ---\n", report.Dataset)
		_, _ = p.Fprintf(w, "Budget: %s\n", money(report.Budget))
		_, _ = p.Fprintf(w, "Rows: %d read, %d valid, %d rejected (%.1f%%)\n",
			ls.Total, ls.Valid, ls.Rejected, ls.RejectedPercent())
		for _, reason := range sortedKeys(ls.Reasons) {
			_, _ = p.Fprintf(w, "  %s: %d\n", reason, ls.Reasons[reason])
		}
		if ls.MixedScale {
			_, _ = p.Fprintf(w, "Warning: %s\n", dataset.MixedScaleWarning)
		}
		if report.Excluded > 0 {
			_, _ = p.Fprintf(w, "Unaffordable assets: %d\n", report.Excluded)
		}

		st := report.Stats
		if st.Count > 0 {
			_, _ = p.Fprintf(w, "Assets: %d, total cost %s\n", st.Count, money(st.TotalCost))
			_, _ = p.Fprintf(w, "  Cost   min %s, max %s, mean %s, std dev %s\n",
				money(st.Cost.Min), money(st.Cost.Max), money(st.Cost.Mean), money(st.Cost.StdDev))
			_, _ = p.Fprintf(w, "  Profit min %.2f%%, max %.2f%%, mean %.2f%%, std dev %.2f\n",
				st.RatePercent.Min, st.RatePercent.Max, st.RatePercent.Mean, st.RatePercent.StdDev)
		}

		_, _ = fmt.Fprintf(w, "\n%-12s | %6s | %14s | %14s | %13s | %10s | %12s | Notes\n",
			"Solver", "Assets", "Total Cost", "Total Profit", "Profitability", "Gap", "Elapsed")
		_, _ = fmt.Fprintf(w, "%-12s | %6s | %14s | %14s | %13s | %10s | %12s | _____\n",
			"______", "______", "__________", "____________", "_____________", "___", "_______")
		for _, s := range report.Summaries {
			if s.Skipped {
				_, _ = fmt.Fprintf(w, "%-12s | %6s | %14s | %14s | %13s | %10s | %12s | %s\n",
					s.Solver, "-", "-", "-", "-", "-", s.Elapsed.String(), "skipped: "+strings.Join(s.Notes, "; "))
				continue
			}
			notes := s.Notes
			if s.Best {
				notes = append([]string{"best"}, s.Notes...)
			}
			_, _ = fmt.Fprintf(w, "%-12s | %6d | %14s | %14s | %13s | %10s | %12s | %s\n",
				s.Solver, s.Count, money(s.TotalCost), money(s.TotalProfit),
				format.Percent(s.Profitability), money(s.Gap), s.Elapsed.String(), strings.Join(notes, "; "))
		}

		for _, s := range report.Summaries {
			holdings, ok := report.Selections[s.Solver]
			if !ok || len(holdings) == 0 {
				continue
			}
			_, _ = p.Fprintf(w, "\nSelected by %s:\n", s.Solver)
			for _, h := range holdings {
				_, _ = p.Fprintf(w, "  %-16s %12s %8.2f%% %12s\n", h.ID, money(h.Cost), h.RatePercent, money(h.Profit))
			}
		}

		if ref := report.Reference; ref != nil {
			_, _ = p.Fprintf(w, "\nReference %s: %d assets, cost %s, profit %s (%s)\n",
				ref.Name, len(ref.Assets), money(ref.TotalCost), money(ref.TotalProfit), format.Percent(ref.Profitability()))
			for _, s := range report.Summaries {
				c := s.Comparison
				if c == nil {
					continue
				}
				_, err := p.Fprintf(w, "  %-12s %-6s profit %s (%+.2f%%), cost %s, profitability %+.2f pts, assets %+d\n",
					s.Solver, c.Verdict, money(c.ProfitDelta), c.ProfitDeltaPercent, money(c.CostDelta),
					c.ProfitabilityDelta, c.CountDelta)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// CsvFormat outputs one row per dataset and solver in comma-separated value format.
func CsvFormat(w io.Writer, reports []*harness.Report) error {
	cw := csv.NewWriter(w)
	header := []string{"dataset", "solver", "skipped", "count", "total_cost", "total_profit",
		"profitability", "gap", "elapsed_ms", "assets", "verdict"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, report := range reports {
		for _, s := range report.Summaries {
			verdict := ""
			if s.Comparison != nil {
				verdict = s.Comparison.Verdict
			}
			row := []string{
				report.Dataset,
				s.Solver,
				strconv.FormatBool(s.Skipped),
				strconv.Itoa(s.Count),
				strconv.FormatFloat(s.TotalCost, 'f', 2, 64),
				strconv.FormatFloat(s.TotalProfit, 'f', 2, 64),
				strconv.FormatFloat(s.Profitability, 'f', 2, 64),
				strconv.FormatFloat(s.Gap, 'f', 2, 64),
				strconv.FormatFloat(float64(s.Elapsed.Microseconds())/1000, 'f', 3, 64),
				strings.Join(s.Assets, ";"),
				verdict,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the reports as indented JSON.
func JSONFormat(w io.Writer, reports []*harness.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// YAMLFormat outputs the reports as YAML.
func YAMLFormat(w io.Writer, reports []*harness.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return err
	}
	return enc.Close()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
