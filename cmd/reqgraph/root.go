package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pdx-hq/reqgraph/pkg/cli"
	"pdx-hq/reqgraph/pkg/config"
	"pdx-hq/reqgraph/pkg/telemetry/logging"
	"pdx-hq/reqgraph/pkg/telemetry/tracing"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	logLevel string
	gameRoot string
)

var rootCmd = &cobra.Command{
	Use:   "reqgraph",
	Short: "reqgraph - requirement graphs for Paradox game scripts",
	Long: `reqgraph reads Paradox-style script files and builds a graph of what every
entity requires and forbids.

It provides:
  - A recovering parser for the script format with line/column diagnostics
  - Requirement extraction driven by per-collection facet schemas
  - Symmetric incompatibility closure across collections
  - JSON/YAML output, SQLite run history and a watch mode with metrics`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code derived from the error.
func Execute() {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default "+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&gameRoot, "game-root", "", "override the game installation directory")
}

// loadConfig returns the process configuration with flag overrides applied.
// The returned value is a copy, so commands may adjust it freely.
func loadConfig() (*config.Config, error) {
	if config.GetConfig() == nil {
		if err := config.Initialize(cfgFile); err != nil {
			return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
		}
	}
	base := config.GetConfig()
	if base == nil {
		return nil, cli.NewConfigError("", "configuration is not initialized")
	}

	cfg := *base
	if gameRoot != "" {
		cfg.GameRoot = gameRoot
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if err := config.Validate(&cfg); err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return &cfg, nil
}

// newLogger creates the process logger and makes it the default.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	logging.SetDefault(logger)
	return logger, nil
}

// newTracer creates the process tracer. The caller shuts it down.
func newTracer(cfg *config.Config) (*tracing.Tracer, error) {
	tracer, err := tracing.New(cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}
	return tracer, nil
}

// shutdownTracer flushes pending spans, giving up after a few seconds.
func shutdownTracer(tracer *tracing.Tracer, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracer.Shutdown(ctx); err != nil {
		logger.Warn("Failed to flush traces", "error", err)
	}
}

// setup loads configuration and logging for a command.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
