package metrics

import (
	"pdx-hq/reqgraph/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// WatchMetrics tracks watch mode activity.
//
// Metrics:
//   - reqgraph_pipeline_file_events_total: File system events by operation
//   - reqgraph_pipeline_rebuild_triggers_total: Rebuilds by trigger
type WatchMetrics struct {
	fileEvents *prometheus.CounterVec
	triggers   *prometheus.CounterVec
}

// NewWatchMetrics creates and registers watch metrics with the provided registry.
func NewWatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *WatchMetrics {
	wm := &WatchMetrics{
		fileEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "file_events_total",
				Help:      "Total number of file system events seen by the watcher",
			},
			[]string{"op"},
		),

		triggers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rebuild_triggers_total",
				Help:      "Total number of rebuilds by trigger",
			},
			[]string{"trigger"},
		),
	}

	registry.MustRegister(wm.fileEvents, wm.triggers)

	return wm
}

// RecordEvent records a file system event.
func (wm *WatchMetrics) RecordEvent(op string) {
	wm.fileEvents.WithLabelValues(op).Inc()
}

// RecordTrigger records a rebuild trigger.
func (wm *WatchMetrics) RecordTrigger(trigger string) {
	wm.triggers.WithLabelValues(trigger).Inc()
}
