// Package logging provides structured logging for reqgraph.
//
// The logging package wraps Go's log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Context-aware logging with run, collection, file and entity fields
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithCollection(ctx, "civics")
//	logger.InfoContext(ctx, "Collection built", "entities", 212)
//
// Logs are written to stderr by default so that graph output on stdout can be
// piped.
package logging
