// Package config defines the data structures related to configuration and
// includes functions for loading, normalizing and validating the config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/algoinvest/pkg/asset"
	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/knapsack"
	"github.com/iwvelando/algoinvest/pkg/mathutil"
	"github.com/iwvelando/algoinvest/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for algoinvest.
type Configuration struct {
	Budget    float64         `yaml:"budget,omitempty" mapstructure:"budget"`
	Currency  string          `yaml:"currency,omitempty" mapstructure:"currency"`
	Solvers   []string        `yaml:"solvers,omitempty" mapstructure:"solvers"`
	Ingestion IngestionConfig `yaml:"ingestion,omitempty" mapstructure:"ingestion"`
	Limits    LimitsConfig    `yaml:"limits,omitempty" mapstructure:"limits"`
	Harness   HarnessConfig   `yaml:"harness,omitempty" mapstructure:"harness"`
	Datasets  []Dataset       `yaml:"datasets,omitempty" mapstructure:"datasets"`
	Logging   LoggingConfig   `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig    `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json, yaml
}

// IngestionConfig controls how raw dataset records become assets.
type IngestionConfig struct {
	ProfitScale string `yaml:"profitScale,omitempty" mapstructure:"profitScale"` // percent, fraction
}

// LimitsConfig bounds the exponential and table-based solvers.
type LimitsConfig struct {
	ExhaustiveMaxAssets int   `yaml:"exhaustiveMaxAssets,omitempty" mapstructure:"exhaustiveMaxAssets"`
	DynamicMaxCells     int64 `yaml:"dynamicMaxCells,omitempty" mapstructure:"dynamicMaxCells"`
	DynamicCompact      bool  `yaml:"dynamicCompact,omitempty" mapstructure:"dynamicCompact"`
}

// HarnessConfig controls how solvers are run side by side.
type HarnessConfig struct {
	Parallel  *bool         `yaml:"parallel,omitempty" mapstructure:"parallel"`
	WarnAfter time.Duration `yaml:"warnAfter,omitempty" mapstructure:"warnAfter"`
}

// Dataset names one CSV file of asset records.
type Dataset struct {
	Name      string     `yaml:"name,omitempty" mapstructure:"name"`
	Path      string     `yaml:"path" mapstructure:"path"`
	Reference *Reference `yaml:"reference,omitempty" mapstructure:"reference"`
}

// Reference is an externally chosen portfolio that solver results are
// compared against.
type Reference struct {
	Name        string   `yaml:"name,omitempty" mapstructure:"name"`
	Assets      []string `yaml:"assets,omitempty" mapstructure:"assets"`
	TotalCost   float64  `yaml:"totalCost" mapstructure:"totalCost"`
	TotalProfit float64  `yaml:"totalProfit" mapstructure:"totalProfit"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Defaults are applied but not validated.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("ALGOINVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	return &configuration, nil
}

// Default returns a normalized configuration with no datasets.
func Default() *Configuration {
	conf := &Configuration{}
	conf.Normalize()
	return conf
}

// Normalize ensures defaults and canonical values are applied before validation.
func (c *Configuration) Normalize() {
	if c.Budget == 0 {
		c.Budget = constants.DefaultBudget
	}
	if strings.TrimSpace(c.Currency) == "" {
		c.Currency = constants.DefaultCurrencySymbol
	}

	if len(c.Solvers) == 0 {
		c.Solvers = knapsack.Names()
	}
	for i := range c.Solvers {
		c.Solvers[i] = strings.ToLower(strings.TrimSpace(c.Solvers[i]))
	}

	c.Ingestion.ProfitScale = asset.CanonicalScale(c.Ingestion.ProfitScale)

	if c.Limits.ExhaustiveMaxAssets <= 0 {
		c.Limits.ExhaustiveMaxAssets = constants.DefaultExhaustiveMaxAssets
	}
	if c.Limits.DynamicMaxCells <= 0 {
		c.Limits.DynamicMaxCells = constants.DefaultDynamicMaxCells
	}

	if c.Harness.Parallel == nil {
		parallel := true
		c.Harness.Parallel = &parallel
	}
	if c.Harness.WarnAfter <= 0 {
		c.Harness.WarnAfter = constants.DefaultWarnAfter
	}

	for i := range c.Datasets {
		d := &c.Datasets[i]
		d.Path = strings.TrimSpace(d.Path)
		if strings.TrimSpace(d.Name) == "" {
			d.Name = d.Path
		}
		if d.Reference != nil && strings.TrimSpace(d.Reference.Name) == "" {
			d.Reference.Name = "reference"
		}
	}

	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
}

// Validate returns an error when the configuration cannot drive a run.
func (c *Configuration) Validate() error {
	if _, err := c.BudgetCents(); err != nil {
		return err
	}
	if err := validation.ValidateSolvers(c.Solvers); err != nil {
		return err
	}
	switch c.Ingestion.ProfitScale {
	case constants.ProfitScalePercent, constants.ProfitScaleFraction:
	default:
		return fmt.Errorf("profit scale %q is not supported", c.Ingestion.ProfitScale)
	}
	if c.Limits.ExhaustiveMaxAssets > constants.ExhaustiveHardLimit {
		return fmt.Errorf("exhaustive limit %d exceeds hard limit of %d",
			c.Limits.ExhaustiveMaxAssets, constants.ExhaustiveHardLimit)
	}
	for i, d := range c.Datasets {
		if d.Path == "" {
			return fmt.Errorf("dataset %d (%s) requires a path", i, d.Name)
		}
		if d.Reference != nil && d.Reference.TotalCost < 0 {
			return fmt.Errorf("dataset %s reference cost cannot be negative", d.Name)
		}
	}
	return validation.ValidateOutputFormat(c.Output.Format)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	exhaustive := false
	for _, s := range c.Solvers {
		if s == constants.SolverExhaustive {
			exhaustive = true
		}
	}
	if exhaustive && c.Limits.ExhaustiveMaxAssets > constants.ExhaustiveWarnAssets {
		warnings = append(warnings, fmt.Sprintf(
			"exhaustive search limit of %d assets may run for a very long time (2^%d subsets)",
			c.Limits.ExhaustiveMaxAssets, c.Limits.ExhaustiveMaxAssets))
	}

	if len(c.Datasets) == 0 {
		warnings = append(warnings, "no datasets configured")
	}

	seen := make(map[string]bool)
	for _, d := range c.Datasets {
		if seen[d.Name] {
			warnings = append(warnings, fmt.Sprintf("dataset name '%s' is used more than once", d.Name))
		}
		seen[d.Name] = true

		if d.Reference != nil && d.Reference.TotalCost > c.Budget {
			warnings = append(warnings, fmt.Sprintf(
				"reference portfolio '%s' for dataset '%s' costs %.2f, above the budget of %.2f",
				d.Reference.Name, d.Name, d.Reference.TotalCost, c.Budget))
		}
	}

	return warnings
}

// BudgetCents returns the budget floored to whole cents.
func (c *Configuration) BudgetCents() (mathutil.Cents, error) {
	cents, err := mathutil.BudgetCentsFromFloat(c.Budget)
	if err != nil {
		return 0, fmt.Errorf("invalid budget %v: %w", c.Budget, err)
	}
	if cents <= 0 {
		return 0, fmt.Errorf("%w (got %.2f)", knapsack.ErrInvalidBudget, c.Budget)
	}
	return cents, nil
}

// KnapsackLimits converts the configured limits for the solver constructors.
func (c *Configuration) KnapsackLimits() knapsack.Limits {
	return knapsack.Limits{
		ExhaustiveMaxAssets: c.Limits.ExhaustiveMaxAssets,
		DynamicMaxCells:     c.Limits.DynamicMaxCells,
		DynamicCompact:      c.Limits.DynamicCompact,
	}
}

// BuildSolvers returns the configured solvers in configuration order.
func (c *Configuration) BuildSolvers() ([]knapsack.Solver, error) {
	limits := c.KnapsackLimits()
	solvers := make([]knapsack.Solver, 0, len(c.Solvers))
	for _, name := range c.Solvers {
		s, err := knapsack.New(name, limits)
		if err != nil {
			return nil, err
		}
		solvers = append(solvers, s)
	}
	return solvers, nil
}

// IsParallel reports whether solvers run concurrently.
func (c *Configuration) IsParallel() bool {
	return c.Harness.Parallel == nil || *c.Harness.Parallel
}
