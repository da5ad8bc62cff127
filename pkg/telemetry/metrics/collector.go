package metrics

import (
	"time"

	"pdx-hq/reqgraph/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in reqgraph.
// It manages metric registration and provides one interface for recording
// metrics across the pipeline, storage and watch components.
//
// A nil *Collector is valid and records nothing, so components can take an
// optional collector without checks at every call site.
type Collector struct {
	config   config.MetricsConfig
	enabled  bool
	registry *prometheus.Registry

	buildMetrics   *BuildMetrics
	parseMetrics   *ParseMetrics
	storageMetrics *StorageMetrics
	watchMetrics   *WatchMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	http.Handle("/metrics", collector.Handler())
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	c := &Collector{
		config:   cfg,
		enabled:  cfg.Enabled == nil || *cfg.Enabled,
		registry: registry,
	}

	c.buildMetrics = NewBuildMetrics(&cfg, registry)
	c.parseMetrics = NewParseMetrics(&cfg, registry)
	c.storageMetrics = NewStorageMetrics(&cfg, registry)
	c.watchMetrics = NewWatchMetrics(&cfg, registry)

	return c
}

func (c *Collector) active() bool {
	return c != nil && c.enabled
}

// RecordBuild records a completed build.
//
// Parameters:
//   - status: "success" or "error"
//   - duration: Total build duration
//   - closurePairs: Number of incompatible pairs in the closure relation
func (c *Collector) RecordBuild(status string, duration time.Duration, closurePairs int) {
	if !c.active() {
		return
	}

	c.buildMetrics.RecordBuild(status, duration, closurePairs)
}

// RecordCollection records the size of a built collection.
//
// Parameters:
//   - collection: Collection name (e.g. "civics")
//   - entities: Number of entities kept
//   - pruned: Number of entities dropped by the availability pre-filter
func (c *Collector) RecordCollection(collection string, entities, pruned int) {
	if !c.active() {
		return
	}

	c.buildMetrics.RecordCollection(collection, entities, pruned)
}

// RecordFileParsed records one parsed source file.
//
// Parameters:
//   - collection: Collection the file belongs to
//   - status: "success" or "error"
//   - duration: Parse duration
//   - sizeBytes: File size
//   - tokens: Number of tokens produced by the lexer
func (c *Collector) RecordFileParsed(collection, status string, duration time.Duration, sizeBytes, tokens int) {
	if !c.active() {
		return
	}

	c.parseMetrics.RecordFile(collection, status, duration, sizeBytes, tokens)
}

// RecordDiagnostics records parser diagnostics by type
// ("lexical", "structural", "schema").
func (c *Collector) RecordDiagnostics(diagType string, count int) {
	if !c.active() {
		return
	}

	c.parseMetrics.RecordDiagnostics(diagType, count)
}

// RecordStorageOperation records a storage operation.
//
// Parameters:
//   - operation: "save", "load", "list", "prune"
//   - status: "success" or "error"
//   - duration: Operation duration
func (c *Collector) RecordStorageOperation(operation, status string, duration time.Duration) {
	if !c.active() {
		return
	}

	c.storageMetrics.RecordOperation(operation, status, duration)
}

// RecordFileEvent records a file system event seen by the watcher.
func (c *Collector) RecordFileEvent(op string) {
	if !c.active() {
		return
	}

	c.watchMetrics.RecordEvent(op)
}

// RecordRebuildTrigger records why a rebuild was started
// ("file_change", "schedule", "manual").
func (c *Collector) RecordRebuildTrigger(trigger string) {
	if !c.active() {
		return
	}

	c.watchMetrics.RecordTrigger(trigger)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Enabled reports whether the collector records metrics.
func (c *Collector) Enabled() bool {
	return c.active()
}
