// Package server serves the status endpoints of a long-running reqgraph
// process.
//
// A Server wraps an http.Handler (usually the metrics and health mux built
// by watch mode) in a middleware chain and manages its lifecycle. Start
// blocks until the context is cancelled or the listener fails, then shuts
// down gracefully.
//
// # Basic Usage
//
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", collector.Handler())
//	health.Register(mux, checker, version, commit, buildDate)
//
//	srv := server.New(cfg.Watch.ListenAddress, mux, server.WithLogger(logger))
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// # Middleware Chain
//
// Requests pass through, outermost first:
//
//  1. RequestID: reads or assigns the X-Request-ID header
//  2. Recovery: turns handler panics into 500 responses and logs the stack
//  3. Logging: logs method, path, status and latency
package server
