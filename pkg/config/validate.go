package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "storage.driver").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.GameRoot == "" {
		errs = append(errs, FieldError{
			Field:   "game_root",
			Message: "game root is required",
		})
	}
	if cfg.Workers < 1 {
		errs = append(errs, FieldError{
			Field:   "workers",
			Message: "workers must be at least 1",
		})
	}

	errs = append(errs, validateCollections(cfg.Collections)...)
	errs = append(errs, validateClosure(&cfg.Closure)...)
	errs = append(errs, validateParser(&cfg.Parser)...)
	errs = append(errs, validateOutput(&cfg.Output)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateCollections validates collection configurations.
func validateCollections(collections []CollectionConfig) []FieldError {
	var errs []FieldError

	if len(collections) == 0 {
		return append(errs, FieldError{
			Field:   "collections",
			Message: "at least one collection must be configured",
		})
	}

	validRoles := map[string]bool{"": true, "both": true, "source": true, "target": true, "none": true}
	seen := make(map[string]bool)

	for i, c := range collections {
		prefix := fmt.Sprintf("collections[%d]", i)

		if c.Name == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: "collection name is required",
			})
		} else if seen[c.Name] {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate collection name %q", c.Name),
			})
		}
		seen[c.Name] = true

		if len(c.Paths) == 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".paths",
				Message: "at least one path pattern is required",
			})
		}
		for j, p := range c.Paths {
			if strings.TrimSpace(p) == "" {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("%s.paths[%d]", prefix, j),
					Message: "path pattern must not be empty",
				})
			}
		}

		if !validRoles[c.Closure] {
			errs = append(errs, FieldError{
				Field:   prefix + ".closure",
				Message: fmt.Sprintf("invalid closure role %q: must be 'both', 'source', 'target', or 'none'", c.Closure),
			})
		}

		for raw, facet := range c.Keys {
			if raw == "" || facet == "" {
				errs = append(errs, FieldError{
					Field:   prefix + ".keys",
					Message: "schema keys and facets must not be empty",
				})
				break
			}
		}
	}

	return errs
}

// validateClosure validates closure configuration.
func validateClosure(cfg *ClosureConfig) []FieldError {
	var errs []FieldError

	if cfg.Facet == "" {
		errs = append(errs, FieldError{
			Field:   "closure.facet",
			Message: "closure facet is required",
		})
	}
	for i, f := range cfg.LinkFacets {
		if f == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("closure.link_facets[%d]", i),
				Message: "link facet must not be empty",
			})
		}
	}

	return errs
}

// validateParser validates parser configuration.
func validateParser(cfg *ParserConfig) []FieldError {
	var errs []FieldError

	validEncodings := map[string]bool{"utf-8": true, "utf8": true, "windows-1252": true, "cp1252": true}
	if !validEncodings[strings.ToLower(cfg.Encoding)] {
		errs = append(errs, FieldError{
			Field:   "parser.encoding",
			Message: fmt.Sprintf("invalid encoding %q: must be 'utf-8' or 'windows-1252'", cfg.Encoding),
		})
	}
	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "parser.max_file_size",
			Message: "max file size must be positive",
		})
	}

	return errs
}

// validateOutput validates output configuration.
func validateOutput(cfg *OutputConfig) []FieldError {
	var errs []FieldError

	validFormats := map[string]bool{"json": true, "yaml": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "output.format",
			Message: fmt.Sprintf("invalid output format %q: must be 'json' or 'yaml'", cfg.Format),
		})
	}

	return errs
}

// validateStorage validates storage configuration.
func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true}
	if !validDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "storage.driver",
			Message: fmt.Sprintf("invalid storage driver %q: must be 'sqlite' or 'sqlite3'", cfg.Driver),
		})
	}
	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "storage.path",
			Message: "storage path is required when storage is enabled",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}
	if cfg.KeepRuns < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.keep_runs",
			Message: "keep runs must be non-negative",
		})
	}

	return errs
}

// validateWatch validates watch configuration.
func validateWatch(cfg *WatchConfig) []FieldError {
	var errs []FieldError

	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce",
			Message: "debounce must be non-negative",
		})
	}
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "watch.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("watch.extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with '.'", ext),
			})
		}
	}
	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "watch.listen_address",
			Message: "listen address is required",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Path != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}
	if cfg.Metrics.Namespace == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.namespace",
			Message: "metrics namespace is required",
		})
	}

	errs = append(errs, validateTracing(&cfg.Tracing)...)

	return errs
}

// validateTracing validates tracing configuration. Settings are only checked
// when tracing is enabled.
func validateTracing(cfg *TracingConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}
	var errs []FieldError

	switch cfg.Sampler {
	case "always", "never":
	case "ratio":
		if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %g", cfg.SampleRatio),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Sampler),
		})
	}
	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required",
		})
	}

	return errs
}
