package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"pdx-hq/reqgraph/pkg/cli"
	"pdx-hq/reqgraph/pkg/pipeline"
	"pdx-hq/reqgraph/pkg/storage"
)

var runsFlags struct {
	limit  int
	format string
	keep   int
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored builds",
	Long: `List, show and prune builds saved in the graph database.

Examples:
  # The 20 newest runs
  reqgraph runs

  # Print a stored graph, addressed by run id prefix
  reqgraph runs show 3f2a

  # Keep only the 5 newest runs
  reqgraph runs prune --keep 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRunsList(cmd.Context(), cmd.OutOrStdout())
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show RUN_ID|latest",
	Short: "Print a stored graph",
	Long: `Print a stored graph as JSON or YAML. RUN_ID may be any unique prefix of
a run id; "latest" selects the most recently built run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRunsShow(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRunsPrune(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsPruneCmd)

	runsCmd.Flags().IntVarP(&runsFlags.limit, "limit", "n", 20, "maximum number of runs to list (0 lists all)")
	runsCmd.PersistentFlags().StringVarP(&runsFlags.format, "format", "f", "", "output format: text, json, yaml (show: json, yaml)")
	runsPruneCmd.Flags().IntVar(&runsFlags.keep, "keep", 0, "number of runs to keep (default storage.keep_runs)")
}

// runList is the output of the runs command.
type runList []storage.RunSummary

// RenderText prints the runs as a table.
func (r runList) RenderText(w io.Writer) error {
	if len(r) == 0 {
		fmt.Fprintln(w, "No stored runs")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tBUILT AT\tREVISION\tCOLLECTIONS\tENTITIES\tPRUNED\tCLOSURE PAIRS")
	for _, run := range r {
		revision := run.Revision
		if revision == "" {
			revision = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.BuiltAt.Local().Format(time.DateTime),
			revision,
			run.Collections,
			run.Stats.Entities,
			run.Stats.Pruned,
			run.Stats.ClosurePairs,
		)
	}
	return tw.Flush()
}

// openStore opens the configured graph database.
func openStore() (*storage.Store, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.Storage, storage.WithLogger(logger))
	if err != nil {
		return nil, cli.NewCommandError("runs", err)
	}
	return store, nil
}

func runRunsList(ctx context.Context, w io.Writer) error {
	format, err := cli.ParseFormat(runsFlags.format)
	if err != nil {
		return err
	}
	formatter, err := cli.NewFormatter(format, true)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, runsFlags.limit)
	if err != nil {
		return cli.NewCommandError("runs", err)
	}
	return formatter.FormatTo(w, runList(runs))
}

// latestRun is the run id alias for the newest stored build.
const latestRun = "latest"

func runRunsShow(ctx context.Context, w io.Writer, id string) error {
	format := runsFlags.format
	switch format {
	case "":
		format = pipeline.FormatJSON
	case pipeline.FormatJSON, pipeline.FormatYAML:
	default:
		return fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var graph *pipeline.Graph
	if id == latestRun {
		graph, err = store.Latest(ctx)
	} else {
		graph, err = store.Load(ctx, id)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return cli.NewCommandError("runs show", fmt.Errorf("run %q not found", id))
	}
	if err != nil {
		return cli.NewCommandError("runs show", err)
	}
	return graph.Encode(w, format, true)
}

func runRunsPrune(ctx context.Context, w io.Writer) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	keep := runsFlags.keep
	if keep <= 0 {
		keep = cfg.Storage.KeepRuns
	}
	if keep <= 0 {
		return cli.NewConfigError("keep", "specify --keep or storage.keep_runs")
	}

	store, err := storage.Open(cfg.Storage, storage.WithLogger(logger))
	if err != nil {
		return cli.NewCommandError("runs prune", err)
	}
	defer store.Close()

	removed, err := store.Prune(ctx, keep)
	if err != nil {
		return cli.NewCommandError("runs prune", err)
	}
	fmt.Fprintf(w, "✓ Removed %d run(s), kept the newest %d\n", removed, keep)
	return nil
}
