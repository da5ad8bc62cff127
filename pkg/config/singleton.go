package config

import (
	"sync"
	"sync/atomic"
)

var (
	current atomic.Pointer[Config]
	initMu  sync.Mutex
)

// Initialize loads the configuration at path, applies REQGRAPH_* environment
// overrides and installs the result as the process configuration. An empty
// path reads DefaultPath when it exists.
//
// Once a configuration is installed, later calls do nothing. A failed load
// installs nothing, so the caller may retry with another path.
func Initialize(path string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if current.Load() != nil {
		return nil
	}
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return err
	}
	current.Store(cfg)
	return nil
}

// GetConfig returns the process configuration, or nil before Initialize
// succeeds. Callers must treat the value as read-only and copy it before
// changing fields.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig replaces the process configuration. Tests use it to inject a
// configuration without touching the filesystem; nil clears it.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}
