// Package metrics provides Prometheus metrics collection for reqgraph.
//
// # Metrics Categories
//
//   - Build Metrics: build count and duration, entities and pruned entities
//     per collection, closure size
//   - Parse Metrics: files parsed, parse duration, file size, tokens, diagnostics
//   - Storage Metrics: persistence operations and their duration
//   - Watch Metrics: file system events and rebuild triggers
//
// # Usage
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	collector.RecordBuild("success", time.Since(start), rel.Len())
//
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", collector.Handler())
//
// Every metric is registered on the collector's own registry, never the
// global default registry, so tests can create collectors freely.
package metrics
