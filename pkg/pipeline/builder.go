package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"pdx-hq/reqgraph/pkg/config"
	"pdx-hq/reqgraph/pkg/pdx/ast"
	pdxErrors "pdx-hq/reqgraph/pkg/pdx/errors"
	"pdx-hq/reqgraph/pkg/pdx/parser"
	"pdx-hq/reqgraph/pkg/requirements"
	"pdx-hq/reqgraph/pkg/telemetry/logging"
	"pdx-hq/reqgraph/pkg/telemetry/metrics"
	"pdx-hq/reqgraph/pkg/telemetry/tracing"
)

// Builder builds requirement graphs from a configuration.
type Builder struct {
	cfg      *config.Config
	specs    []collectionSpec
	closure  requirements.ClosureOptions
	parser   *parser.Parser
	logger   *logging.Logger
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	progress ProgressFunc
}

// ProgressFunc is told how many of the run's files have been parsed. Calls
// are serialized.
type ProgressFunc func(done, total int)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithMetrics sets the metrics collector. The default records nothing.
func WithMetrics(m *metrics.Collector) Option {
	return func(b *Builder) {
		b.metrics = m
	}
}

// WithTracer sets the tracer. The default records no spans.
func WithTracer(t *tracing.Tracer) Option {
	return func(b *Builder) {
		b.tracer = t
	}
}

// WithProgress sets a callback invoked after each parsed file.
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) {
		b.progress = fn
	}
}

// NewBuilder validates the collection settings of cfg and prepares a builder.
func NewBuilder(cfg *config.Config, opts ...Option) (*Builder, error) {
	specs, err := resolveCollections(cfg)
	if err != nil {
		return nil, err
	}

	enc, err := parser.ParseEncoding(cfg.Parser.Encoding)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		cfg:     cfg,
		specs:   specs,
		closure: ClosureOptions(cfg),
		parser: parser.NewParser().
			WithMaxFileSize(cfg.Parser.MaxFileSize).
			WithEncoding(enc),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent("pipeline")

	return b, nil
}

// parsedFile is one source file after parsing.
type parsedFile struct {
	path        string
	document    *ast.Document
	diagnostics *pdxErrors.ErrorList
}

// Build runs the whole pipeline once.
func (b *Builder) Build(ctx context.Context) (*Graph, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx, span := b.tracer.Start(ctx, "pipeline.build", trace.WithAttributes(tracing.RunID(runID)))

	graph, err := b.build(ctx, runID, start)
	if err != nil {
		b.metrics.RecordBuild("error", time.Since(start), 0)
		b.logger.ErrorContext(ctx, "Build failed", "error", err)
		tracing.End(span, err)
		return nil, err
	}

	span.SetAttributes(tracing.BuildAttributes(graph.Stats.Files, graph.Stats.Entities, graph.Stats.Pruned, graph.Stats.ClosurePairs)...)
	tracing.End(span, nil)

	b.metrics.RecordBuild("success", time.Since(start), graph.Stats.ClosurePairs)
	b.logger.InfoContext(ctx, "Build completed",
		"collections", len(graph.Collections),
		"entities", graph.Stats.Entities,
		"pruned", graph.Stats.Pruned,
		"closure_pairs", graph.Stats.ClosurePairs,
		"revision", graph.Source.Short(),
		"duration_ms", graph.Stats.DurationMS,
	)
	return graph, nil
}

func (b *Builder) build(ctx context.Context, runID string, start time.Time) (*Graph, error) {
	// Resolve every collection's files; a file may feed several collections
	sources := make([][]string, len(b.specs))
	owner := make(map[string]string)
	var unique []string
	for i, spec := range b.specs {
		files, err := ResolveFiles(b.cfg.GameRoot, spec.paths)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", spec.config.Name, err)
		}
		if len(files) == 0 {
			b.logger.WarnContext(logging.WithCollection(ctx, spec.config.Name), "No source files matched", "paths", spec.paths)
		}
		sources[i] = files
		for _, f := range files {
			if _, ok := owner[f]; !ok {
				owner[f] = spec.config.Name
				unique = append(unique, f)
			}
		}
	}

	parsed, err := b.parseAll(ctx, unique, owner)
	if err != nil {
		return nil, err
	}

	stats := Stats{Files: len(unique)}
	for _, pf := range parsed {
		stats.Tokens += pf.document.TokenCount
		stats.Diagnostics += pf.diagnostics.Count()
	}

	extractCtx, span := b.tracer.Start(ctx, "pipeline.extract")
	collections, err := b.extract(extractCtx, parsed, sources)
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}

	_, span = b.tracer.Start(ctx, "pipeline.closure")
	closed, rel := requirements.Close(collections, b.closure)
	span.SetAttributes(attribute.Int(tracing.AttrClosurePairs, rel.Len()))
	tracing.End(span, nil)

	for _, c := range closed {
		stats.Entities += c.Len()
		stats.Pruned += len(c.Pruned)
	}
	stats.ClosurePairs = rel.Len()

	// A game root outside git, or an unreadable repository, only loses
	// the revision.
	source, err := SourceRevision(b.cfg.GameRoot)
	if err != nil {
		b.logger.WarnContext(ctx, "Failed to read source revision", "error", err)
	}
	stats.DurationMS = time.Since(start).Milliseconds()

	return &Graph{
		RunID:       runID,
		BuiltAt:     start.UTC(),
		Source:      source,
		Stats:       stats,
		Collections: closed,
	}, nil
}

// extract builds every collection from its parsed documents.
func (b *Builder) extract(ctx context.Context, parsed map[string]*parsedFile, sources [][]string) ([]*requirements.Collection, error) {
	collections := make([]*requirements.Collection, len(b.specs))
	for i, spec := range b.specs {
		cb := requirements.NewBuilder(spec.config)
		for _, f := range sources[i] {
			cb.AddDocument(parsed[f].document)
		}
		c := cb.Collection()
		collections[i] = c

		b.metrics.RecordCollection(c.Name, c.Len(), len(c.Pruned))
		b.logger.DebugContext(logging.WithCollection(ctx, c.Name), "Collection extracted",
			"files", len(sources[i]),
			"entities", c.Len(),
			"pruned", len(c.Pruned),
		)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return collections, nil
}

// parseAll parses files concurrently, at most cfg.Workers at a time. The
// first read failure cancels the remaining work.
func (b *Builder) parseAll(ctx context.Context, files []string, owner map[string]string) (map[string]*parsedFile, error) {
	var mu sync.Mutex
	parsed := make(map[string]*parsedFile, len(files))

	g, ctx := errgroup.WithContext(ctx)
	workers := b.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			pf, err := b.parseFile(ctx, path, owner[path])
			if err != nil {
				return err
			}

			mu.Lock()
			parsed[path] = pf
			if b.progress != nil {
				b.progress(len(parsed), len(files))
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parsed, nil
}

func (b *Builder) parseFile(ctx context.Context, path, collection string) (pf *parsedFile, err error) {
	ctx = logging.WithFile(logging.WithCollection(ctx, collection), path)
	start := time.Now()

	ctx, span := b.tracer.Start(ctx, "pipeline.parse")
	defer func() {
		if pf != nil {
			span.SetAttributes(tracing.FileAttributes(path, collection, pf.document.TokenCount, pf.diagnostics.Count())...)
		}
		tracing.End(span, err)
	}()

	var size int
	if info, err := os.Stat(path); err == nil {
		size = int(info.Size())
	}

	res, err := b.parser.Parse(path)
	if err != nil {
		b.metrics.RecordFileParsed(collection, "error", time.Since(start), size, 0)
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	b.metrics.RecordFileParsed(collection, "success", time.Since(start), size, res.Document.TokenCount)
	for _, t := range []pdxErrors.ErrorType{pdxErrors.ErrorTypeLexical, pdxErrors.ErrorTypeStructural} {
		b.metrics.RecordDiagnostics(string(t), len(res.Diagnostics.ByType(t)))
	}
	if res.Diagnostics.HasErrors() {
		b.logger.WarnContext(ctx, "Source file has diagnostics", "count", res.Diagnostics.Count())
		for _, d := range res.Diagnostics.Errors {
			b.logger.DebugContext(ctx, d.Message, "type", string(d.Type), "location", d.Location.String())
		}
	}

	return &parsedFile{
		path:        path,
		document:    res.Document,
		diagnostics: res.Diagnostics,
	}, nil
}
