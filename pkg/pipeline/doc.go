// Package pipeline turns a game installation into a requirement graph.
//
// A build resolves every collection's path patterns (doublestar globs
// relative to the game root), parses each distinct file once with bounded
// concurrency, extracts entities per collection and closes the
// incompatibility relation across all collections. The result is a Graph
// tagged with a fresh run ID and, when the game root is a git checkout, the
// commit it was built from.
//
//	b, err := pipeline.NewBuilder(cfg, pipeline.WithLogger(logger), pipeline.WithMetrics(collector))
//	graph, err := b.Build(ctx)
//	err = graph.Encode(os.Stdout, "json", true)
package pipeline
