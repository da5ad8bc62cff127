// reqgraph builds requirement graphs from Paradox script files.
//
// It reads game entity definitions (civics, origins, ethics, traits), extracts
// what each entity requires and forbids, makes incompatibilities symmetric and
// writes the result as JSON or YAML:
//   - Parse script files into value trees
//   - Lint files for structural problems and misspelled condition keys
//   - Build, store and compare requirement graphs
//   - Rebuild on file changes in watch mode
//
// Usage:
//
//	# Build with default configuration
//	reqgraph build --game-root ~/stellaris
//
//	# Build with a config file and store the run
//	reqgraph build --config reqgraph.yaml --store
//
//	# Print the value tree of one file
//	reqgraph parse common/governments/civics/00_civics.txt
//
//	# Lint every configured collection
//	reqgraph lint --strict
//
//	# Rebuild on changes and serve metrics
//	reqgraph watch
package main

func main() {
	Execute()
}
