// Package telemetry groups the observability packages used by reqgraph.
//
//   - logging: slog-based structured logging with build and run IDs in context
//   - metrics: Prometheus counters and histograms for parsing, builds, storage and watch
//   - tracing: OpenTelemetry spans around builds and storage, exported over OTLP/gRPC
//   - health: liveness, readiness and version endpoints for the watch server
//
// Commands create each piece from config.TelemetryConfig and pass it down
// with functional options, for example:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(cfg.Telemetry.Tracing, version)
//	builder, _ := pipeline.NewBuilder(cfg,
//		pipeline.WithMetrics(collector),
//		pipeline.WithTracer(tracer))
//
// Tracing is disabled by default; a disabled tracer hands out no-op spans.
package telemetry
