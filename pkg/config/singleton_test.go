package config

import (
	"path/filepath"
	"testing"
)

func restoreConfig(t *testing.T) {
	t.Helper()
	prev := GetConfig()
	t.Cleanup(func() { SetConfig(prev) })
}

func TestSetGetConfig(t *testing.T) {
	restoreConfig(t)

	cfg := DefaultConfig()
	cfg.Workers = 7
	SetConfig(cfg)

	if got := GetConfig(); got != cfg {
		t.Error("GetConfig() should return the stored config")
	}

	SetConfig(nil)
	if GetConfig() != nil {
		t.Error("SetConfig(nil) should clear the config")
	}
}

func TestInitialize(t *testing.T) {
	restoreConfig(t)
	SetConfig(nil)

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if err := Initialize(missing); err == nil {
		t.Fatal("expected error for missing config file")
	}
	if GetConfig() != nil {
		t.Fatal("failed Initialize must not install a config")
	}

	if err := Initialize(writeConfig(t, "workers: 3\n")); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := GetConfig().Workers; got != 3 {
		t.Errorf("Workers = %d, want 3", got)
	}

	// Installed config wins over later calls.
	if err := Initialize(writeConfig(t, "workers: 5\n")); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if got := GetConfig().Workers; got != 3 {
		t.Errorf("Workers = %d after second Initialize, want 3", got)
	}
}
