// Package health provides liveness and readiness probes for watch mode.
//
// Liveness always succeeds while the process runs. Readiness requires at
// least one successful graph build and every registered check to pass; the
// storage layer registers a database ping when persistence is enabled.
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("storage", store.Ping)
//	health.Register(mux, checker, version, commit, buildTime)
//
//	graph, err := builder.Build(ctx)
//	checker.RecordBuild(graph.RunID, err)
package health
