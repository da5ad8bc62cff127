/*
Package cli provides command-line interface utilities for reqgraph.

The cli package includes output formatters, a progress reporter, error types
and signal handling used by the reqgraph command.

Output Formatting:

Command results can be printed as text, JSON or YAML:

	formatter, err := cli.NewFormatter(cli.FormatYAML, true)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Values that implement TextRenderer control their own text output.

Progress Reporting:

For long builds, report parsed files to stderr:

	progress := cli.NewProgressReporter(os.Stderr)
	builder, _ := pipeline.NewBuilder(cfg, pipeline.WithProgress(progress.Observe))

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
