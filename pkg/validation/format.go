// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/algoinvest/pkg/constants"
)

var outputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatJSON,
	constants.OutputFormatYAML,
}

var solverNames = []string{
	constants.SolverExhaustive,
	constants.SolverGreedy,
	constants.SolverDynamic,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, f := range outputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %s",
		strings.Join(outputFormats, ", "), format)
}

// ValidateSolvers checks that every name refers to a known solver and that
// none is listed twice.
func ValidateSolvers(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one solver is required")
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		known := false
		for _, s := range solverNames {
			if name == s {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("expected solver of %s, got %s", strings.Join(solverNames, ", "), name)
		}
		if seen[name] {
			return fmt.Errorf("solver %s listed more than once", name)
		}
		seen[name] = true
	}
	return nil
}
