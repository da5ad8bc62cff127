package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"pdx-hq/reqgraph/pkg/config"
	"pdx-hq/reqgraph/pkg/telemetry/metrics"
)

func TestRebuilder_CoalescesTriggers(t *testing.T) {
	var builds, concurrent, maxConcurrent atomic.Int32
	release := make(chan struct{})

	r := NewRebuilder(func(ctx context.Context) error {
		n := concurrent.Add(1)
		defer concurrent.Add(-1)
		if n > maxConcurrent.Load() {
			maxConcurrent.Store(n)
		}
		if builds.Add(1) == 1 {
			<-release
		}
		return nil
	}, nil, nil)

	ctx := context.Background()
	r.Trigger(ctx, TriggerFileChange)
	time.Sleep(20 * time.Millisecond)

	// These arrive while the first build is blocked
	for i := 0; i < 5; i++ {
		r.Trigger(ctx, TriggerFileChange)
	}
	close(release)
	r.Wait()

	if got := builds.Load(); got != 2 {
		t.Errorf("ran %d builds, want 2 (one plus one follow-up)", got)
	}
	if got := maxConcurrent.Load(); got != 1 {
		t.Errorf("%d builds ran at once", got)
	}
}

func TestRebuilder_Run(t *testing.T) {
	want := errors.New("parse failed")
	r := NewRebuilder(func(ctx context.Context) error { return want }, nil, nil)

	if err := r.Run(context.Background(), TriggerManual); !errors.Is(err, want) {
		t.Errorf("Run() error = %v, want %v", err, want)
	}
}

func TestRebuilder_CancelledContext(t *testing.T) {
	var builds atomic.Int32
	r := NewRebuilder(func(ctx context.Context) error {
		builds.Add(1)
		return nil
	}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx, TriggerManual); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	r.Trigger(ctx, TriggerSchedule)
	r.Wait()

	if got := builds.Load(); got != 0 {
		t.Errorf("ran %d builds with a cancelled context", got)
	}
}

func TestRebuilder_RecordsTriggers(t *testing.T) {
	collector := metrics.NewCollector(config.MetricsConfig{}, nil)
	r := NewRebuilder(func(ctx context.Context) error { return nil }, nil, collector)

	ctx := context.Background()
	_ = r.Run(ctx, TriggerManual)
	r.Trigger(ctx, TriggerSchedule)
	r.Wait()

	count, err := testutil.GatherAndCount(collector.Registry(), "reqgraph_pipeline_rebuild_triggers_total")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 trigger series, got %d", count)
	}
}
