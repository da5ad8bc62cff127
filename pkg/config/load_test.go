package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reqgraph.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
game_root: /games/stellaris
workers: 8
output:
  format: yaml
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q, want yaml", cfg.Output.Format)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read configuration file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: postgres\n")

	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "storage.driver") {
		t.Errorf("expected storage.driver validation error, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "game_root: /from/file\n")

	t.Setenv("REQGRAPH_GAME_ROOT", "/from/env")
	t.Setenv("REQGRAPH_WORKERS", "2")
	t.Setenv("REQGRAPH_STORAGE_DRIVER", "sqlite3")
	t.Setenv("REQGRAPH_STORAGE_PATH", "/tmp/graph.db")
	t.Setenv("REQGRAPH_LOG_LEVEL", "debug")
	t.Setenv("REQGRAPH_LOG_FORMAT", "json")
	t.Setenv("REQGRAPH_METRICS_ENABLED", "false")
	t.Setenv("REQGRAPH_WATCH_SCHEDULE", "@every 30m")
	t.Setenv("REQGRAPH_TRACING_ENABLED", "true")
	t.Setenv("REQGRAPH_TRACING_ENDPOINT", "collector:4317")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.GameRoot != "/from/env" {
		t.Errorf("GameRoot = %q, want /from/env", cfg.GameRoot)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.Storage.Driver != "sqlite3" || cfg.Storage.Path != "/tmp/graph.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Telemetry.Logging)
	}
	if cfg.MetricsEnabled() {
		t.Error("metrics should be disabled by env")
	}
	if cfg.Watch.Schedule != "@every 30m" {
		t.Errorf("Schedule = %q", cfg.Watch.Schedule)
	}
	if !cfg.Telemetry.Tracing.Enabled || cfg.Telemetry.Tracing.Endpoint != "collector:4317" {
		t.Errorf("Tracing = %+v", cfg.Telemetry.Tracing)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("REQGRAPH_STORAGE_DRIVER", "mysql")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("expected validation error after override")
	}
}

func TestLoadConfigWithEnvOverrides_NoDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.GameRoot != DefaultGameRoot {
		t.Errorf("GameRoot = %q, want %q", cfg.GameRoot, DefaultGameRoot)
	}
}
