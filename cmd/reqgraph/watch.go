package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"pdx-hq/reqgraph/pkg/cli"
	"pdx-hq/reqgraph/pkg/config"
	"pdx-hq/reqgraph/pkg/pipeline"
	"pdx-hq/reqgraph/pkg/server"
	"pdx-hq/reqgraph/pkg/storage"
	"pdx-hq/reqgraph/pkg/telemetry/health"
	"pdx-hq/reqgraph/pkg/telemetry/logging"
	"pdx-hq/reqgraph/pkg/telemetry/metrics"
	"pdx-hq/reqgraph/pkg/telemetry/tracing"
	"pdx-hq/reqgraph/pkg/watch"
)

var watchFlags struct {
	listen   string
	schedule string
	store    bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the graph whenever game files change",
	Long: `Build the graph, then keep rebuilding it when script files change or on a
cron schedule. Metrics and health endpoints are served while watching.

Endpoints:
  /metrics        Prometheus metrics (telemetry.metrics.path)
  /health/live    liveness
  /health/ready   readiness, fails until a build succeeds
  /version        build information

Examples:
  # Watch the configured game root
  reqgraph watch

  # Also rebuild every hour and store each run
  reqgraph watch --schedule "@every 1h" --store`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.listen, "listen", "", "address for metrics and health endpoints (default from config)")
	watchCmd.Flags().StringVar(&watchFlags.schedule, "schedule", "", "cron schedule for periodic rebuilds (default from config)")
	watchCmd.Flags().BoolVar(&watchFlags.store, "store", false, "save every run in the graph database")
}

// watchService holds everything a watch session runs.
type watchService struct {
	cfg       *config.Config
	logger    *logging.Logger
	collector *metrics.Collector
	checker   *health.Checker
	builder   *pipeline.Builder
	store     *storage.Store
	rebuilder *watch.Rebuilder
	out       io.Writer
}

// newWatchService wires the builder, store, health checker and rebuilder.
func newWatchService(cfg *config.Config, logger *logging.Logger, tracer *tracing.Tracer, out io.Writer) (*watchService, error) {
	s := &watchService{
		cfg:       cfg,
		logger:    logger,
		collector: metrics.NewCollector(cfg.Telemetry.Metrics, nil),
		checker:   health.New(0),
		out:       out,
	}

	builder, err := pipeline.NewBuilder(cfg,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(s.collector),
		pipeline.WithTracer(tracer),
	)
	if err != nil {
		return nil, cli.NewConfigError("collections", err.Error())
	}
	s.builder = builder

	if cfg.Storage.Enabled {
		store, err := storage.Open(cfg.Storage,
			storage.WithLogger(logger),
			storage.WithMetrics(s.collector),
			storage.WithTracer(tracer),
		)
		if err != nil {
			return nil, cli.NewCommandError("watch", err)
		}
		s.store = store
		s.checker.RegisterCheck("storage", store.Ping)
	}

	s.rebuilder = watch.NewRebuilder(s.build, logger, s.collector)
	return s, nil
}

// build runs one pipeline build and records its outcome.
func (s *watchService) build(ctx context.Context) error {
	graph, err := s.builder.Build(ctx)
	if err != nil {
		s.checker.RecordBuild("", err)
		return err
	}

	if s.store != nil {
		if err := saveAndPrune(ctx, s.store, s.cfg.Storage.KeepRuns, graph); err != nil {
			s.checker.RecordBuild(graph.RunID, err)
			return err
		}
	}
	if s.cfg.Output.Path != "" {
		if err := writeGraph(s.cfg, nil, graph); err != nil {
			s.checker.RecordBuild(graph.RunID, err)
			return err
		}
	}

	s.checker.RecordBuild(graph.RunID, nil)
	printSummary(s.out, graph)
	return nil
}

// handler returns the metrics and health endpoints.
func (s *watchService) handler() http.Handler {
	mux := http.NewServeMux()
	if s.cfg.MetricsEnabled() {
		mux.Handle(s.cfg.Telemetry.Metrics.Path, s.collector.Handler())
	}
	health.Register(mux, s.checker, Version, GitCommit, BuildDate)
	return mux
}

// close releases the store.
func (s *watchService) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("Failed to close graph store", "error", err)
		}
	}
}

func runWatch(ctx context.Context, out io.Writer) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if watchFlags.listen != "" {
		cfg.Watch.ListenAddress = watchFlags.listen
	}
	if watchFlags.schedule != "" {
		cfg.Watch.Schedule = watchFlags.schedule
	}
	if watchFlags.store {
		cfg.Storage.Enabled = true
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}

	tracer, err := newTracer(cfg)
	if err != nil {
		return err
	}
	defer shutdownTracer(tracer, logger)

	svc, err := newWatchService(cfg, logger, tracer, out)
	if err != nil {
		return err
	}
	defer svc.close()

	// The initial build may fail; readiness reports it until a rebuild succeeds.
	if err := svc.rebuilder.Run(ctx, watch.TriggerManual); err != nil {
		logger.Warn("Initial build failed", "error", err)
	}

	var patterns []string
	for _, cc := range cfg.Collections {
		patterns = append(patterns, cc.Paths...)
	}
	roots := watch.Roots(cfg.GameRoot, patterns)
	if len(roots) == 0 {
		roots = []string{cfg.GameRoot}
	}
	fw, err := watch.NewFileWatcher(watch.FileWatcherConfig{
		Paths:      roots,
		Debounce:   cfg.Watch.Debounce,
		Extensions: cfg.Watch.Extensions,
	}, logger, svc.collector)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	scheduler := watch.NewScheduler(cfg.Watch.Schedule, func(ctx context.Context) {
		svc.rebuilder.Trigger(ctx, watch.TriggerSchedule)
	}, logger)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewConfigError("watch.schedule", err.Error())
	}

	srv := server.New(cfg.Watch.ListenAddress, svc.handler(), server.WithLogger(logger))

	errCh := make(chan error, 2)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- fmt.Errorf("status server: %w", err)
		}
	}()
	go func() {
		err := fw.Watch(ctx, func() {
			svc.rebuilder.Trigger(ctx, watch.TriggerFileChange)
		})
		if err != nil {
			errCh <- fmt.Errorf("file watcher: %w", err)
		}
	}()

	logger.Info("Watching for changes", "roots", roots, "schedule", cfg.Watch.Schedule)
	fmt.Fprintf(out, "Watching %d director(ies), press Ctrl+C to stop\n", len(roots))

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case runErr = <-errCh:
		logger.Error("Watch failed", "error", runErr)
	}

	if err := fw.Stop(); err != nil {
		logger.Warn("Failed to stop file watcher", "error", err)
	}
	scheduler.Stop()
	svc.rebuilder.Wait()

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Warn("Failed to shut down status server", "error", err)
	}

	if runErr != nil {
		return cli.NewCommandError("watch", runErr)
	}
	return nil
}
