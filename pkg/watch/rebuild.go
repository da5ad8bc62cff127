package watch

import (
	"context"
	"sync"
	"time"

	"pdx-hq/reqgraph/pkg/telemetry/logging"
	"pdx-hq/reqgraph/pkg/telemetry/metrics"
)

// Trigger names why a rebuild started.
type Trigger string

const (
	TriggerFileChange Trigger = "file_change"
	TriggerSchedule   Trigger = "schedule"
	TriggerManual     Trigger = "manual"
)

// BuildFunc runs one rebuild.
type BuildFunc func(ctx context.Context) error

// Rebuilder runs rebuilds one at a time. Triggers that arrive while a
// rebuild is running collapse into one follow-up rebuild.
type Rebuilder struct {
	build   BuildFunc
	logger  *logging.Logger
	metrics *metrics.Collector

	buildMu sync.Mutex // held while build runs
	mu      sync.Mutex
	running bool
	pending Trigger
	wg      sync.WaitGroup
}

// NewRebuilder creates a rebuilder around build. logger and collector may be nil.
func NewRebuilder(build BuildFunc, logger *logging.Logger, collector *metrics.Collector) *Rebuilder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Rebuilder{
		build:   build,
		logger:  logger.WithComponent("rebuild"),
		metrics: collector,
	}
}

// Trigger starts a rebuild in the background and returns immediately. If a
// rebuild is already running, one more is queued to run after it.
func (r *Rebuilder) Trigger(ctx context.Context, trigger Trigger) {
	r.metrics.RecordRebuildTrigger(string(trigger))

	r.mu.Lock()
	if r.running {
		r.pending = trigger
		r.mu.Unlock()
		r.logger.Debug("Rebuild queued", "trigger", trigger)
		return
	}
	r.running = true
	r.wg.Add(1)
	r.mu.Unlock()

	go r.loop(ctx, trigger)
}

// Run rebuilds synchronously and returns the build error.
func (r *Rebuilder) Run(ctx context.Context, trigger Trigger) error {
	r.metrics.RecordRebuildTrigger(string(trigger))
	return r.run(ctx, trigger)
}

// Wait blocks until no background rebuild is running or queued.
func (r *Rebuilder) Wait() {
	r.wg.Wait()
}

func (r *Rebuilder) loop(ctx context.Context, trigger Trigger) {
	defer r.wg.Done()

	for {
		_ = r.run(ctx, trigger)

		r.mu.Lock()
		if r.pending == "" || ctx.Err() != nil {
			r.pending = ""
			r.running = false
			r.mu.Unlock()
			return
		}
		trigger = r.pending
		r.pending = ""
		r.mu.Unlock()
	}
}

func (r *Rebuilder) run(ctx context.Context, trigger Trigger) error {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	r.logger.Info("Rebuild started", "trigger", trigger)

	if err := r.build(ctx); err != nil {
		r.logger.Error("Rebuild failed",
			"trigger", trigger,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	r.logger.Info("Rebuild finished",
		"trigger", trigger,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
