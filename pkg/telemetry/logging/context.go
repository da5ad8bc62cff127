package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for build run IDs.
	RunIDKey contextKey = "run_id"

	// CollectionKey is the context key for collection names.
	CollectionKey contextKey = "collection"

	// FileKey is the context key for source file paths.
	FileKey contextKey = "file"

	// EntityKey is the context key for entity identifiers.
	EntityKey contextKey = "entity"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	return getString(ctx, RunIDKey)
}

// WithCollection adds a collection name to the context.
func WithCollection(ctx context.Context, collection string) context.Context {
	return context.WithValue(ctx, CollectionKey, collection)
}

// GetCollection retrieves the collection name from the context.
func GetCollection(ctx context.Context) string {
	return getString(ctx, CollectionKey)
}

// WithFile adds a source file path to the context.
func WithFile(ctx context.Context, file string) context.Context {
	return context.WithValue(ctx, FileKey, file)
}

// GetFile retrieves the source file path from the context.
func GetFile(ctx context.Context) string {
	return getString(ctx, FileKey)
}

// WithEntity adds an entity identifier to the context.
func WithEntity(ctx context.Context, entity string) context.Context {
	return context.WithValue(ctx, EntityKey, entity)
}

// GetEntity retrieves the entity identifier from the context.
func GetEntity(ctx context.Context) string {
	return getString(ctx, EntityKey)
}

func getString(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields returns key-value pairs for every field set on ctx,
// in a fixed order.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	for _, key := range []contextKey{RunIDKey, CollectionKey, FileKey, EntityKey} {
		if v := getString(ctx, key); v != "" {
			fields = append(fields, string(key), v)
		}
	}
	return fields
}
