// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/algoinvest/internal/harness"
	"github.com/iwvelando/algoinvest/pkg/optimization"
)

// FindReport finds a report by dataset name in the results slice.
// Returns nil if not found.
func FindReport(reports []*harness.Report, dataset string) *harness.Report {
	for _, r := range reports {
		if r != nil && r.Dataset == dataset {
			return r
		}
	}
	return nil
}

// FindSummary finds the summary for a solver on a dataset.
// Returns nil if either is not found.
func FindSummary(reports []*harness.Report, dataset, solver string) *optimization.Summary {
	r := FindReport(reports, dataset)
	if r == nil {
		return nil
	}
	return r.Summary(solver)
}
