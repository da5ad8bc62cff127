package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

// Default values for configuration fields.
const (
	// Pipeline defaults
	DefaultGameRoot = "."
	DefaultWorkers  = 4

	// Closure defaults
	DefaultClosureFacet = "civics"
	DefaultLinkFacet    = "origins"

	// Parser defaults
	DefaultParserEncoding    = "utf-8"
	DefaultParserMaxFileSize = int64(10 * 1024 * 1024) // 10MB

	// Output defaults
	DefaultOutputFormat = "json"

	// Storage defaults
	DefaultStorageDriver      = "sqlite"
	DefaultStoragePath        = "data/reqgraph.db"
	DefaultStorageBusyTimeout = 5 * time.Second

	// Watch defaults
	DefaultWatchDebounce      = 500 * time.Millisecond
	DefaultWatchExtension     = ".txt"
	DefaultWatchListenAddress = "127.0.0.1:9464"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "text"
	DefaultMetricsNamespace = "reqgraph"
	DefaultMetricsSubsystem = "pipeline"
	DefaultMetricsPath      = "/metrics"
	DefaultTracingSampler   = "always"
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingTimeout   = 10 * time.Second
	DefaultServiceName      = "reqgraph"
)

// Built-in collection source locations, relative to the game root.
const (
	DefaultCivicsPath = "common/governments/civics/*.txt"
	DefaultEthicsPath = "common/ethics/*.txt"
	DefaultTraitsPath = "common/traits/*.txt"
)

// DefaultCollections returns the built-in collections with their default
// source locations. Origins are read from the civics directory and told apart
// by their is_origin flag.
func DefaultCollections() []CollectionConfig {
	return []CollectionConfig{
		{Name: "civics", Builtin: "civics", Paths: []string{DefaultCivicsPath}},
		{Name: "origins", Builtin: "origins", Paths: []string{DefaultCivicsPath}},
		{Name: "ethics", Builtin: "ethics", Paths: []string{DefaultEthicsPath}},
		{Name: "traits", Builtin: "traits", Paths: []string{DefaultTraitsPath}},
	}
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	enabled := true
	pretty := true
	wal := true

	return &Config{
		GameRoot:    DefaultGameRoot,
		Collections: DefaultCollections(),
		Closure: ClosureConfig{
			Facet:      DefaultClosureFacet,
			LinkFacets: []string{DefaultLinkFacet},
		},
		Parser: ParserConfig{
			Encoding:    DefaultParserEncoding,
			MaxFileSize: DefaultParserMaxFileSize,
		},
		Workers: DefaultWorkers,
		Output: OutputConfig{
			Format: DefaultOutputFormat,
			Pretty: &pretty,
		},
		Storage: StorageConfig{
			Driver:      DefaultStorageDriver,
			Path:        DefaultStoragePath,
			BusyTimeout: DefaultStorageBusyTimeout,
			WALMode:     &wal,
		},
		Watch: WatchConfig{
			Debounce:      DefaultWatchDebounce,
			Extensions:    []string{DefaultWatchExtension},
			ListenAddress: DefaultWatchListenAddress,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLoggingLevel,
				Format: DefaultLoggingFormat,
			},
			Metrics: MetricsConfig{
				Enabled:   &enabled,
				Namespace: DefaultMetricsNamespace,
				Subsystem: DefaultMetricsSubsystem,
				Path:      DefaultMetricsPath,
			},
			Tracing: TracingConfig{
				Sampler:     DefaultTracingSampler,
				Endpoint:    DefaultTracingEndpoint,
				Timeout:     DefaultTracingTimeout,
				ServiceName: DefaultServiceName,
			},
		},
	}
}

// ApplyDefaults fills every zero-valued field of cfg from DefaultConfig.
// Fields already set are left untouched. A configured collection whose name
// (or builtin) matches a built-in collection inherits its default paths.
func ApplyDefaults(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot apply defaults to a nil configuration")
	}

	if err := mergo.Merge(cfg, DefaultConfig()); err != nil {
		return fmt.Errorf("failed to merge default configuration: %w", err)
	}

	builtins := make(map[string]CollectionConfig)
	for _, c := range DefaultCollections() {
		builtins[c.Name] = c
	}
	for i := range cfg.Collections {
		c := &cfg.Collections[i]
		name := c.Builtin
		if name == "" {
			name = c.Name
		}
		if def, ok := builtins[name]; ok {
			if err := mergo.Merge(c, def); err != nil {
				return fmt.Errorf("failed to merge defaults for collection %q: %w", c.Name, err)
			}
		}
	}
	return nil
}
