// Package constants provides shared constants for the algoinvest application.
package constants

import "time"

// Monetary constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CentsPerUnit is the number of cents in one currency unit
	CentsPerUnit = 100

	// MicrosPerUnit is the number of micro-units in one currency unit
	MicrosPerUnit = 1_000_000

	// MicrosPerCent is the number of micro-units in one cent
	MicrosPerCent = MicrosPerUnit / CentsPerUnit

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DefaultCurrencySymbol is prefixed to amounts in human-readable output
	DefaultCurrencySymbol = "€"
)

// Selection defaults
const (
	// DefaultBudget is the spending budget in currency units when none is configured
	DefaultBudget = 500.0

	// DefaultExhaustiveMaxAssets is the largest asset count the exhaustive solver accepts by default
	DefaultExhaustiveMaxAssets = 20

	// ExhaustiveHardLimit bounds the exhaustive solver regardless of configuration
	ExhaustiveHardLimit = 30

	// ExhaustiveWarnAssets is the configured limit above which a warning is emitted
	ExhaustiveWarnAssets = 24

	// DefaultDynamicMaxCells is the largest dynamic-programming table, in cells, allocated by default
	DefaultDynamicMaxCells int64 = 64 << 20

	// DefaultServerDynamicMaxCells is the per-request table ceiling of the HTTP API
	DefaultServerDynamicMaxCells int64 = 8 << 20

	// DefaultWarnAfter is the solver duration above which a slow-run warning is logged
	DefaultWarnAfter = time.Second
)

// Solver names
const (
	SolverExhaustive = "exhaustive"
	SolverGreedy     = "greedy"
	SolverDynamic    = "dynamic"
)

// Profit scales
const (
	// ProfitScalePercent reads "12.25" and "12.25%" as a 12.25% return
	ProfitScalePercent = "percent"

	// ProfitScaleFraction reads "0.1225" as a 12.25% return
	ProfitScaleFraction = "fraction"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for CSV datasets (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
