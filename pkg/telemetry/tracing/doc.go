// Package tracing provides OpenTelemetry tracing for reqgraph builds.
//
// A build produces one trace: a "pipeline.build" root span with a child span
// per parsed file, one for extraction and closure, and one for each storage
// write. Spans are exported over OTLP/gRPC to the collector named by
// telemetry.tracing.endpoint.
//
// # Sampling Strategies
//
//   - always: sample every build (default)
//   - never: record nothing
//   - ratio: sample a fraction of builds (telemetry.tracing.sample_ratio)
//
// All samplers respect the sampling decision of a parent span.
//
// # Usage
//
//	tracer, err := tracing.New(cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "pipeline.build")
//	defer span.End()
//
// A nil *Tracer, or one created with Nop, hands out non-recording spans, so
// components accept a tracer without checking whether tracing is on.
package tracing
