package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"pdx-hq/reqgraph/pkg/telemetry/logging"
)

// Scheduler runs a job on a cron schedule.
//
// Common expressions:
//   - "@every 1h"   - Every hour
//   - "0 */6 * * *" - Every 6 hours
//   - "0 3 * * *"   - Daily at 3 AM
type Scheduler struct {
	schedule string
	job      func(ctx context.Context)
	cron     *cron.Cron
	logger   *logging.Logger
	mu       sync.Mutex
	running  bool
}

// NewScheduler creates a scheduler. An empty schedule makes Start a no-op.
func NewScheduler(schedule string, job func(ctx context.Context), logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Scheduler{
		schedule: schedule,
		job:      job,
		cron:     cron.New(),
		logger:   logger.WithComponent("scheduler"),
	}
}

// Start validates the schedule and starts running the job. The scheduler
// stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Debug("Rebuild schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.logger.Info("Scheduled rebuild")
		s.job(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule rebuild: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled time, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
