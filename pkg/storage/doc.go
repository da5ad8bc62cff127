// Package storage persists built requirement graphs in SQLite.
//
// Every build is stored as a run keyed by its run ID. A run keeps its
// statistics, the ordered collections with their pruned ids, the ordered
// entities and one row per requirement atom, so a stored graph reloads to
// the same value the pipeline produced.
//
// Two drivers are supported:
//
//   - "sqlite": modernc.org/sqlite, pure Go (default)
//   - "sqlite3": github.com/mattn/go-sqlite3, requires cgo
//
// Example:
//
//	store, err := storage.Open(cfg.Storage, storage.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	if err := store.Save(ctx, graph); err != nil {
//		return err
//	}
//	runs, err := store.ListRuns(ctx, 10)
//
// The store serializes writes through a single connection. It is safe for
// concurrent use.
package storage
