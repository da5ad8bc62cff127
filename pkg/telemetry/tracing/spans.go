package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set on reqgraph spans.
const (
	AttrRunID        = "reqgraph.run_id"
	AttrCollection   = "reqgraph.collection"
	AttrFile         = "reqgraph.file"
	AttrTokens       = "reqgraph.tokens"
	AttrDiagnostics  = "reqgraph.diagnostics"
	AttrFiles        = "reqgraph.files"
	AttrEntities     = "reqgraph.entities"
	AttrPruned       = "reqgraph.pruned"
	AttrClosurePairs = "reqgraph.closure_pairs"
	AttrStorageOp    = "reqgraph.storage.operation"
	AttrDriver       = "db.system"
)

// FileAttributes describe one parsed file.
func FileAttributes(path, collection string, tokens, diagnostics int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrFile, path),
		attribute.String(AttrCollection, collection),
		attribute.Int(AttrTokens, tokens),
		attribute.Int(AttrDiagnostics, diagnostics),
	}
}

// BuildAttributes describe a finished build.
func BuildAttributes(files, entities, pruned, closurePairs int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrFiles, files),
		attribute.Int(AttrEntities, entities),
		attribute.Int(AttrPruned, pruned),
		attribute.Int(AttrClosurePairs, closurePairs),
	}
}

// RunID tags a span with the build's run ID.
func RunID(id string) attribute.KeyValue {
	return attribute.String(AttrRunID, id)
}

// StorageAttributes describe a storage operation.
func StorageAttributes(operation, driver string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrStorageOp, operation),
		attribute.String(AttrDriver, driver),
	}
}

// TraceID returns the trace ID of span, or "" for a non-recording span.
func TraceID(span trace.Span) string {
	sc := span.SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// End records err on span, sets the status and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
