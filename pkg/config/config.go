package config

import "time"

// Config is the root configuration structure for reqgraph.
// It contains all configuration sections for the build pipeline and
// its supporting services.
type Config struct {
	// GameRoot is the directory collection paths are resolved against.
	GameRoot string `yaml:"game_root"`

	// Collections lists the entity collections to build. When empty, the
	// built-in civics, origins, ethics and traits collections are used.
	Collections []CollectionConfig `yaml:"collections"`

	// Closure configures incompatibility closure.
	Closure ClosureConfig `yaml:"closure"`

	// Parser configures the script parser.
	Parser ParserConfig `yaml:"parser"`

	// Workers is the number of documents parsed concurrently.
	// Default: 4
	Workers int `yaml:"workers"`

	// Output controls how built graphs are written.
	Output OutputConfig `yaml:"output"`

	// Storage configures persistence of built graphs.
	Storage StorageConfig `yaml:"storage"`

	// Watch configures watch mode.
	Watch WatchConfig `yaml:"watch"`

	// Telemetry contains observability configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CollectionConfig describes one entity collection.
type CollectionConfig struct {
	// Name identifies the collection in the graph (e.g. "civics").
	Name string `yaml:"name"`

	// Builtin names the built-in schema this collection starts from.
	// Default: Name, when a built-in collection with that name exists
	Builtin string `yaml:"builtin"`

	// Paths are doublestar patterns relative to GameRoot.
	// Example: "common/governments/civics/*.txt"
	Paths []string `yaml:"paths"`

	// Keys maps raw condition keys to facet ids. Entries are merged over the
	// built-in schema.
	Keys map[string]string `yaml:"keys"`

	// Sections names the condition blocks to walk.
	// Default: potential, possible
	Sections []string `yaml:"sections"`

	// FlattenSingleAlternatives unwraps one-element alternative groups.
	// Unset keeps the built-in setting.
	FlattenSingleAlternatives *bool `yaml:"flatten_single_alternatives"`

	// Closure is the collection's closure role.
	// Options: "both", "source", "target", "none"
	Closure string `yaml:"closure"`

	// IncludeFlags lists top-level keys an entity must set to yes.
	IncludeFlags []string `yaml:"include_flags"`

	// ExcludeFlags lists top-level keys that drop an entity when set to yes.
	ExcludeFlags []string `yaml:"exclude_flags"`

	// Availability configures the expansion pre-filter.
	Availability AvailabilityConfig `yaml:"availability"`
}

// AvailabilityConfig configures the expansion pre-filter of a collection.
type AvailabilityConfig struct {
	// Block is the availability block key.
	// Default: "playable"
	Block string `yaml:"block"`

	// Predicate is the "requires expansion" trigger.
	// Default: "host_has_dlc"
	Predicate string `yaml:"predicate"`
}

// ClosureConfig configures incompatibility closure.
type ClosureConfig struct {
	// Facet is made symmetric across collections.
	// Default: "civics"
	Facet string `yaml:"facet"`

	// LinkFacets fold forbidden entries that name members of target
	// collections into the closure relation.
	// Default: ["origins"]
	LinkFacets []string `yaml:"link_facets"`
}

// ParserConfig configures the script parser.
type ParserConfig struct {
	// Encoding of source files.
	// Options: "utf-8", "windows-1252"
	// Default: "utf-8"
	Encoding string `yaml:"encoding"`

	// MaxFileSize is the largest file the parser accepts, in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`
}

// OutputConfig controls graph output.
type OutputConfig struct {
	// Format of the written graph.
	// Options: "json", "yaml"
	// Default: "json"
	Format string `yaml:"format"`

	// Path of the output file. Empty writes to stdout.
	Path string `yaml:"path"`

	// Pretty indents JSON output.
	// Default: true
	Pretty *bool `yaml:"pretty"`
}

// StorageConfig configures persistence of built graphs.
type StorageConfig struct {
	// Enabled stores every build.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Driver selects the SQLite driver.
	// Options: "sqlite" (modernc.org/sqlite), "sqlite3" (mattn/go-sqlite3)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "data/reqgraph.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode *bool `yaml:"wal_mode"`

	// KeepRuns is the number of most recent runs retained by pruning.
	// Zero keeps every run.
	KeepRuns int `yaml:"keep_runs"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Debounce delays rebuilds until files stop changing.
	// Default: 500ms
	Debounce time.Duration `yaml:"debounce"`

	// Schedule is a cron expression for periodic rebuilds. Empty disables it.
	// Example: "@every 1h", "0 */6 * * *"
	Schedule string `yaml:"schedule"`

	// Extensions are the file extensions that trigger rebuilds.
	// Default: [".txt"]
	Extensions []string `yaml:"extensions"`

	// ListenAddress serves metrics and health endpoints in watch mode.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled turns on the Prometheus collector.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "reqgraph"
	Namespace string `yaml:"namespace"`

	// Subsystem is the second metric name component.
	// Default: "pipeline"
	Subsystem string `yaml:"subsystem"`

	// Path is the HTTP path metrics are served on.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled exports spans for builds, parsed files and storage writes.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of builds to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "reqgraph"
	ServiceName string `yaml:"service_name"`
}

// MetricsEnabled reports whether metrics collection is on.
func (c *Config) MetricsEnabled() bool {
	return c.Telemetry.Metrics.Enabled == nil || *c.Telemetry.Metrics.Enabled
}

// PrettyOutput reports whether JSON output is indented.
func (c *Config) PrettyOutput() bool {
	return c.Output.Pretty == nil || *c.Output.Pretty
}

// WALEnabled reports whether SQLite write-ahead logging is on.
func (c *Config) WALEnabled() bool {
	return c.Storage.WALMode == nil || *c.Storage.WALMode
}

// Collection returns the collection config with the given name, or nil.
func (c *Config) Collection(name string) *CollectionConfig {
	for i := range c.Collections {
		if c.Collections[i].Name == name {
			return &c.Collections[i]
		}
	}
	return nil
}
