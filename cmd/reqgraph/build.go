package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pdx-hq/reqgraph/pkg/cli"
	"pdx-hq/reqgraph/pkg/config"
	"pdx-hq/reqgraph/pkg/pipeline"
	"pdx-hq/reqgraph/pkg/storage"
	"pdx-hq/reqgraph/pkg/telemetry/logging"
	"pdx-hq/reqgraph/pkg/telemetry/tracing"
)

var buildFlags struct {
	output   string
	format   string
	store    bool
	progress bool
	workers  int
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the requirement graph",
	Long: `Parse every configured collection, extract requirements, apply
incompatibility closure and write the resulting graph.

Examples:
  # Graph of the configured game root as JSON on stdout
  reqgraph build

  # YAML to a file, also recording the run in the database
  reqgraph build --format yaml --output out/graph.yaml --store

  # Build another installation with a progress bar
  reqgraph build --game-root ~/stellaris --progress`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildFlags.output, "output", "o", "", "output file (default from config, stdout when empty)")
	buildCmd.Flags().StringVarP(&buildFlags.format, "format", "f", "", "output format: json, yaml (default from config)")
	buildCmd.Flags().BoolVar(&buildFlags.store, "store", false, "save the run in the graph database")
	buildCmd.Flags().BoolVar(&buildFlags.progress, "progress", false, "show a progress bar on stderr")
	buildCmd.Flags().IntVarP(&buildFlags.workers, "workers", "w", 0, "documents parsed concurrently (default from config)")
}

func runBuild(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if buildFlags.output != "" {
		cfg.Output.Path = buildFlags.output
	}
	if buildFlags.format != "" {
		cfg.Output.Format = buildFlags.format
	}
	if buildFlags.workers > 0 {
		cfg.Workers = buildFlags.workers
	}
	if buildFlags.store {
		cfg.Storage.Enabled = true
	}
	if cfg.Output.Format != pipeline.FormatJSON && cfg.Output.Format != pipeline.FormatYAML {
		return cli.NewConfigError("output.format", fmt.Sprintf("unsupported format %q (want json or yaml)", cfg.Output.Format))
	}

	tracer, err := newTracer(cfg)
	if err != nil {
		return err
	}
	defer shutdownTracer(tracer, logger)

	opts := []pipeline.Option{pipeline.WithLogger(logger), pipeline.WithTracer(tracer)}
	var reporter cli.ProgressReporter
	if buildFlags.progress {
		reporter = cli.NewProgressReporter(stderr)
		opts = append(opts, pipeline.WithProgress(reporter.Observe))
	}

	builder, err := pipeline.NewBuilder(cfg, opts...)
	if err != nil {
		return cli.NewConfigError("collections", err.Error())
	}

	graph, err := builder.Build(ctx)
	if reporter != nil {
		if err != nil {
			reporter.Error(err)
		} else {
			reporter.Finish()
		}
	}
	if err != nil {
		return cli.NewCommandError("build", err)
	}

	if cfg.Storage.Enabled {
		if err := storeGraph(ctx, cfg, logger, tracer, graph); err != nil {
			return cli.NewCommandError("build", err)
		}
	}

	if err := writeGraph(cfg, stdout, graph); err != nil {
		return cli.NewCommandError("build", err)
	}

	printSummary(stderr, graph)
	return nil
}

// storeGraph saves graph and prunes old runs.
func storeGraph(ctx context.Context, cfg *config.Config, logger *logging.Logger, tracer *tracing.Tracer, graph *pipeline.Graph) error {
	store, err := storage.Open(cfg.Storage, storage.WithLogger(logger), storage.WithTracer(tracer))
	if err != nil {
		return err
	}
	defer store.Close()

	return saveAndPrune(ctx, store, cfg.Storage.KeepRuns, graph)
}

// saveAndPrune saves graph and keeps the newest keep runs.
func saveAndPrune(ctx context.Context, store *storage.Store, keep int, graph *pipeline.Graph) error {
	if err := store.Save(ctx, graph); err != nil {
		return err
	}
	if _, err := store.Prune(ctx, keep); err != nil {
		return err
	}
	return nil
}

// writeGraph encodes graph to the configured output file, or to w.
func writeGraph(cfg *config.Config, w io.Writer, graph *pipeline.Graph) error {
	if cfg.Output.Path == "" {
		return graph.Encode(w, cfg.Output.Format, cfg.PrettyOutput())
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := graph.Encode(f, cfg.Output.Format, cfg.PrettyOutput()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printSummary writes a short description of graph.
func printSummary(w io.Writer, graph *pipeline.Graph) {
	s := graph.Stats
	fmt.Fprintf(w, "✓ Built run %s: %d entities in %d collections (%d files, %dms)\n",
		graph.RunID, s.Entities, len(graph.Collections), s.Files, s.DurationMS)
	if src := graph.Source; src != nil {
		fmt.Fprintf(w, "  source %s (%s)\n", src.Short(), src.Subject)
	}
	if s.Pruned > 0 {
		fmt.Fprintf(w, "  %d entities pruned by availability\n", s.Pruned)
	}
	if s.ClosurePairs > 0 {
		fmt.Fprintf(w, "  %d incompatibility pairs closed\n", s.ClosurePairs)
	}
	if s.Diagnostics > 0 {
		fmt.Fprintf(w, "  %d diagnostics (run \"reqgraph lint\" for details)\n", s.Diagnostics)
	}
}
