package metrics

import (
	"time"

	"pdx-hq/reqgraph/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BuildMetrics tracks graph builds.
//
// Metrics:
//   - reqgraph_pipeline_builds_total: Builds by status
//   - reqgraph_pipeline_build_duration_seconds: Build duration histogram
//   - reqgraph_pipeline_last_build_timestamp_seconds: Unix time of the last successful build
//   - reqgraph_pipeline_closure_pairs: Incompatible pairs in the last closure
//   - reqgraph_pipeline_entities: Entities per collection in the last build
//   - reqgraph_pipeline_pruned_entities: Pruned entities per collection in the last build
type BuildMetrics struct {
	buildsTotal   *prometheus.CounterVec
	buildDuration prometheus.Histogram
	lastBuild     prometheus.Gauge
	closurePairs  prometheus.Gauge
	entities      *prometheus.GaugeVec
	pruned        *prometheus.GaugeVec
}

// NewBuildMetrics creates and registers build metrics with the provided registry.
func NewBuildMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BuildMetrics {
	bm := &BuildMetrics{
		buildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "builds_total",
				Help:      "Total number of requirement graph builds",
			},
			[]string{"status"},
		),

		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "build_duration_seconds",
				Help:      "Duration of requirement graph builds in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),

		lastBuild: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_build_timestamp_seconds",
				Help:      "Unix time of the last successful build",
			},
		),

		closurePairs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "closure_pairs",
				Help:      "Number of incompatible entity pairs in the last closure",
			},
		),

		entities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "entities",
				Help:      "Number of entities per collection in the last build",
			},
			[]string{"collection"},
		),

		pruned: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pruned_entities",
				Help:      "Number of entities dropped by the availability pre-filter",
			},
			[]string{"collection"},
		),
	}

	registry.MustRegister(
		bm.buildsTotal,
		bm.buildDuration,
		bm.lastBuild,
		bm.closurePairs,
		bm.entities,
		bm.pruned,
	)

	return bm
}

// RecordBuild records a completed build.
func (bm *BuildMetrics) RecordBuild(status string, duration time.Duration, closurePairs int) {
	bm.buildsTotal.WithLabelValues(status).Inc()
	bm.buildDuration.Observe(duration.Seconds())

	if status == "success" {
		bm.lastBuild.SetToCurrentTime()
		bm.closurePairs.Set(float64(closurePairs))
	}
}

// RecordCollection records collection sizes.
func (bm *BuildMetrics) RecordCollection(collection string, entities, pruned int) {
	bm.entities.WithLabelValues(collection).Set(float64(entities))
	bm.pruned.WithLabelValues(collection).Set(float64(pruned))
}
