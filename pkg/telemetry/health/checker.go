package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status values reported by checks and by the checker.
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusDegraded = "degraded"
)

// CheckFunc is a function that performs a health check for a component.
// It returns nil if the component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckResult represents the result of a single health check.
type CheckResult struct {
	// Status is "ok" or "unhealthy"
	Status string `json:"status"`

	// Message describes the problem for unhealthy checks
	Message string `json:"message,omitempty"`

	// Duration is how long the check took
	Duration time.Duration `json:"duration_ms,omitempty"`
}

// HealthStatus represents the overall health status of the process.
type HealthStatus struct {
	// Status is "ok" for liveness; "ready", "not_ready" or "degraded" for readiness
	Status string `json:"status"`

	// Checks contains the status of individual components (for readiness)
	Checks map[string]CheckResult `json:"checks,omitempty"`

	// LastBuild describes the most recent build, if any
	LastBuild *BuildState `json:"last_build,omitempty"`

	// Timestamp is when the health check was performed
	Timestamp time.Time `json:"timestamp"`
}

// BuildState is the outcome of the most recent graph build.
type BuildState struct {
	RunID    string    `json:"run_id,omitempty"`
	Finished time.Time `json:"finished"`
	Error    string    `json:"error,omitempty"`
}

// Checker manages health checks for watch mode. The process is ready once a
// build has succeeded; a later failed build degrades readiness until the
// next success.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	lastBuild  *BuildState
	everBuilt  bool
	checkLimit time.Duration
}

// ErrNoBuild is reported by the build check before the first build finishes.
var ErrNoBuild = errors.New("no build has completed yet")

// New creates a new health checker with the specified per-check timeout.
// If timeout is 0, defaults to 5 seconds per check.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}

	c := &Checker{
		checks:     make(map[string]CheckFunc),
		checkLimit: checkTimeout,
	}
	c.checks["build"] = c.buildCheck
	return c
}

// RegisterCheck registers a health check function for a named component.
// If a check with the same name already exists, it will be replaced.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// UnregisterCheck removes a health check for a named component.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.checks, name)
}

// RecordBuild stores the outcome of a build.
func (c *Checker) RecordBuild(runID string, err error) {
	state := &BuildState{RunID: runID, Finished: time.Now()}
	if err != nil {
		state.Error = err.Error()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastBuild = state
	if err == nil {
		c.everBuilt = true
	}
}

// LastBuild returns a copy of the most recent build state, or nil.
func (c *Checker) LastBuild() *BuildState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.lastBuild == nil {
		return nil
	}
	state := *c.lastBuild
	return &state
}

func (c *Checker) buildCheck(ctx context.Context) error {
	state := c.LastBuild()
	switch {
	case state == nil:
		return ErrNoBuild
	case state.Error != "":
		return fmt.Errorf("last build failed: %s", state.Error)
	default:
		return nil
	}
}

// CheckLiveness reports that the process is running.
func (c *Checker) CheckLiveness(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}

// CheckReadiness runs every registered check concurrently and aggregates the
// results.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	everBuilt := c.everBuilt
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := c.runCheck(ctx, check)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}

	wg.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status != StatusOK {
			status = StatusDegraded
		}
	}
	if !everBuilt {
		status = StatusNotReady
	}

	return HealthStatus{
		Status:    status,
		Checks:    results,
		LastBuild: c.LastBuild(),
		Timestamp: time.Now(),
	}
}

// runCheck executes a single health check with timeout.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkLimit)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return CheckResult{Status: "unhealthy", Message: err.Error(), Duration: time.Since(start)}
		}
		return CheckResult{Status: StatusOK, Duration: time.Since(start)}

	case <-checkCtx.Done():
		return CheckResult{Status: "unhealthy", Message: "health check timeout", Duration: time.Since(start)}
	}
}

// ListChecks returns the names of all registered health checks, sorted.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
