package metrics

import (
	"time"

	"pdx-hq/reqgraph/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ParseMetrics tracks source file parsing.
//
// Metrics:
//   - reqgraph_pipeline_files_parsed_total: Files parsed by collection and status
//   - reqgraph_pipeline_parse_duration_seconds: Parse duration histogram
//   - reqgraph_pipeline_file_size_bytes: Source file size histogram
//   - reqgraph_pipeline_tokens_total: Tokens produced by the lexer
//   - reqgraph_pipeline_diagnostics_total: Parser diagnostics by type
type ParseMetrics struct {
	filesTotal    *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	fileSize      prometheus.Histogram
	tokensTotal   *prometheus.CounterVec
	diagnostics   *prometheus.CounterVec
}

// NewParseMetrics creates and registers parse metrics with the provided registry.
func NewParseMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ParseMetrics {
	pm := &ParseMetrics{
		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "files_parsed_total",
				Help:      "Total number of source files parsed",
			},
			[]string{"collection", "status"},
		),

		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parse_duration_seconds",
				Help:      "Duration of parsing one source file in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"collection"},
		),

		fileSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "file_size_bytes",
				Help:      "Size of parsed source files in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to 4MB
			},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tokens_total",
				Help:      "Total number of tokens produced by the lexer",
			},
			[]string{"collection"},
		),

		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "diagnostics_total",
				Help:      "Total number of parser diagnostics by type",
			},
			[]string{"type"},
		),
	}

	registry.MustRegister(
		pm.filesTotal,
		pm.parseDuration,
		pm.fileSize,
		pm.tokensTotal,
		pm.diagnostics,
	)

	return pm
}

// RecordFile records one parsed file.
func (pm *ParseMetrics) RecordFile(collection, status string, duration time.Duration, sizeBytes, tokens int) {
	pm.filesTotal.WithLabelValues(collection, status).Inc()
	pm.parseDuration.WithLabelValues(collection).Observe(duration.Seconds())

	if sizeBytes > 0 {
		pm.fileSize.Observe(float64(sizeBytes))
	}
	if tokens > 0 {
		pm.tokensTotal.WithLabelValues(collection).Add(float64(tokens))
	}
}

// RecordDiagnostics adds count diagnostics of the given type.
func (pm *ParseMetrics) RecordDiagnostics(diagType string, count int) {
	if count > 0 {
		pm.diagnostics.WithLabelValues(diagType).Add(float64(count))
	}
}
