package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/iwvelando/algoinvest/internal/config"
	"github.com/iwvelando/algoinvest/internal/dataset"
	"github.com/iwvelando/algoinvest/internal/harness"
	"github.com/iwvelando/algoinvest/internal/logging"
	"github.com/iwvelando/algoinvest/pkg/constants"
	"github.com/iwvelando/algoinvest/pkg/output"
	"github.com/iwvelando/algoinvest/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	datasetPath := flag.String("dataset", "", "run a single CSV dataset instead of the configured ones")
	budget := flag.Float64("budget", 0, "budget override in currency units")
	solvers := flag.String("solvers", "", "comma-separated solver override: exhaustive, greedy, dynamic")
	profitScale := flag.String("profit-scale", "", "profit scale override: percent, fraction")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json, yaml")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := loadConfiguration(*configLocation, *datasetPath)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// CLI overrides take precedence over the config file
	if *budget != 0 {
		conf.Budget = *budget
	}
	if *solvers != "" {
		conf.Solvers = strings.Split(*solvers, ",")
	}
	if *profitScale != "" {
		conf.Ingestion.ProfitScale = *profitScale
	}
	if *outputFormatFlag != "" {
		conf.Output.Format = *outputFormatFlag
	}
	if *datasetPath != "" {
		conf.Datasets = []config.Dataset{{Name: filepath.Base(*datasetPath), Path: *datasetPath}}
	}
	conf.Normalize()

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	if len(conf.Datasets) == 0 {
		logger.Fatal("no datasets to run; configure datasets or pass -dataset",
			zap.String("op", "main"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports, err := run(ctx, logger, conf)
	if err != nil {
		logger.Fatal("failed to run selection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Write(os.Stdout, conf.Output.Format, reports, conf.Currency); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// loadConfiguration reads the config file. A missing default config file is
// not an error when a dataset is given on the command line.
func loadConfiguration(path, datasetPath string) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(path)
	if err == nil {
		return conf, nil
	}
	if datasetPath == "" || path != constants.DefaultConfigFile {
		return nil, err
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, fs.ErrNotExist) {
		return nil, err
	}
	return config.Default(), nil
}

func run(ctx context.Context, logger *zap.Logger, conf *config.Configuration) ([]*harness.Report, error) {
	budget, err := conf.BudgetCents()
	if err != nil {
		return nil, err
	}
	solvers, err := conf.BuildSolvers()
	if err != nil {
		return nil, err
	}
	runner, err := harness.NewRunner(logger, solvers, harness.Options{
		Parallel:  conf.IsParallel(),
		WarnAfter: conf.Harness.WarnAfter,
	})
	if err != nil {
		return nil, err
	}

	reports := make([]*harness.Report, 0, len(conf.Datasets))
	for _, d := range conf.Datasets {
		assets, stats, err := dataset.Load(d.Path, conf.Ingestion.ProfitScale)
		if err != nil {
			return nil, err
		}
		logger.Info("dataset loaded",
			zap.String("op", "main.run"),
			zap.String("dataset", d.Name),
			zap.Int("total", stats.Total),
			zap.Int("valid", stats.Valid),
			zap.Int("rejected", stats.Rejected),
		)

		report, err := runner.Run(ctx, harness.Input{
			Dataset:   d.Name,
			Assets:    assets,
			Budget:    budget,
			Reference: referenceFor(d),
			LoadStats: stats,
		})
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", d.Name, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func referenceFor(d config.Dataset) *harness.Reference {
	if d.Reference == nil {
		return nil
	}
	return &harness.Reference{
		Name:        d.Reference.Name,
		Assets:      append([]string(nil), d.Reference.Assets...),
		TotalCost:   d.Reference.TotalCost,
		TotalProfit: d.Reference.TotalProfit,
	}
}
