package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdx-hq/reqgraph/pkg/telemetry/health"
	"pdx-hq/reqgraph/pkg/telemetry/logging"
	"pdx-hq/reqgraph/pkg/telemetry/tracing"
)

func TestWatchService_Build(t *testing.T) {
	cfg := useTestConfig(t)
	cfg.Storage.Enabled = true

	var out bytes.Buffer
	svc, err := newWatchService(cfg, logging.Nop(), tracing.Nop(), &out)
	if err != nil {
		t.Fatalf("newWatchService() error = %v", err)
	}
	defer svc.close()

	ctx := context.Background()
	if status := svc.checker.CheckReadiness(ctx); status.Status == health.StatusReady {
		t.Error("service should not be ready before the first build")
	}

	if err := svc.build(ctx); err != nil {
		t.Fatalf("build() error = %v", err)
	}
	if !strings.Contains(out.String(), "✓ Built run") {
		t.Errorf("missing build summary:\n%s", out.String())
	}

	state := svc.checker.LastBuild()
	if state == nil || state.Error != "" || state.RunID == "" {
		t.Fatalf("LastBuild() = %+v, want a successful run", state)
	}
	if _, err := svc.store.Load(ctx, state.RunID); err != nil {
		t.Errorf("run was not stored: %v", err)
	}
	if status := svc.checker.CheckReadiness(ctx); status.Status != health.StatusReady {
		t.Errorf("readiness = %s after a successful build", status.Status)
	}
}

func TestWatchService_BuildFailure(t *testing.T) {
	cfg := useTestConfig(t)
	cfg.Parser.MaxFileSize = 1

	svc, err := newWatchService(cfg, logging.Nop(), tracing.Nop(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newWatchService() error = %v", err)
	}
	defer svc.close()

	if err := svc.build(context.Background()); err == nil {
		t.Fatal("build() should fail on oversized files")
	}
	state := svc.checker.LastBuild()
	if state == nil || state.Error == "" {
		t.Errorf("LastBuild() = %+v, want the failure recorded", state)
	}
}

func TestWatchService_Handler(t *testing.T) {
	cfg := useTestConfig(t)

	svc, err := newWatchService(cfg, logging.Nop(), tracing.Nop(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newWatchService() error = %v", err)
	}
	defer svc.close()
	if err := svc.build(context.Background()); err != nil {
		t.Fatalf("build() error = %v", err)
	}

	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{path: health.LivenessPath, wantCode: http.StatusOK},
		{path: health.ReadinessPath, wantCode: http.StatusOK},
		{path: health.VersionPath, wantCode: http.StatusOK, wantBody: Version},
		{path: cfg.Telemetry.Metrics.Path, wantCode: http.StatusOK, wantBody: "reqgraph_pipeline_builds_total"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			var body bytes.Buffer
			if _, err := body.ReadFrom(resp.Body); err != nil {
				t.Fatalf("read body: %v", err)
			}
			if tt.wantBody != "" && !strings.Contains(body.String(), tt.wantBody) {
				t.Errorf("body missing %q", tt.wantBody)
			}
		})
	}
}

func TestRunWatch_Shutdown(t *testing.T) {
	useTestConfig(t)
	watchFlags.listen = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() { done <- runWatch(ctx, &out) }()

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("runWatch() error = %v", err)
	}
}
