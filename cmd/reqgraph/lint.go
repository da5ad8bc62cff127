package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pdx-hq/reqgraph/pkg/cli"
	"pdx-hq/reqgraph/pkg/config"
	"pdx-hq/reqgraph/pkg/pipeline"
	"pdx-hq/reqgraph/pkg/requirements"
)

var lintFlags struct {
	collection string
	strict     bool
	format     string
}

var lintCmd = &cobra.Command{
	Use:   "lint [files...]",
	Short: "Report parse and schema diagnostics",
	Long: `Check script files for structural problems and misspelled condition keys.

Without arguments every file of every configured collection is checked
against that collection's schema. With arguments the files are checked
against the schema named by --collection, or structurally only.

Examples:
  # Lint the whole configured game tree
  reqgraph lint

  # Lint one file against the civics schema
  reqgraph lint --collection civics mod/common/governments/civics/my_civics.txt

  # Fail (exit code 3) when anything is reported
  reqgraph lint --strict`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLint(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVar(&lintFlags.collection, "collection", "", "collection whose schema checks condition keys")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "exit with code 3 when any diagnostic is reported")
	lintCmd.Flags().StringVarP(&lintFlags.format, "format", "f", "text", "output format: text, json, yaml")
}

// lintTarget is a file and the collection schema it is checked against.
type lintTarget struct {
	path       string
	collection *requirements.CollectionConfig
}

// lintResult is the output of the lint command.
type lintResult struct {
	Files       []*pipeline.FileReport `json:"files" yaml:"files"`
	Diagnostics int                    `json:"diagnostics" yaml:"diagnostics"`
}

// RenderText prints one status line per file and a summary.
func (r *lintResult) RenderText(w io.Writer) error {
	for _, f := range r.Files {
		if len(f.Diagnostics) == 0 {
			fmt.Fprintf(w, "✓ %s: No diagnostics\n", f.Path)
			continue
		}
		fmt.Fprintf(w, "✗ %s: %d diagnostic(s)\n", f.Path, len(f.Diagnostics))
		for _, d := range f.Diagnostics {
			writeDiagnostic(w, d)
		}
	}
	fmt.Fprintf(w, "\n%d file(s) checked, %d diagnostic(s)\n", len(r.Files), r.Diagnostics)
	return nil
}

func runLint(w io.Writer, files []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}
	formatter, err := cli.NewFormatter(format, true)
	if err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	targets, err := lintTargets(cfg, files, lintFlags.collection)
	if err != nil {
		return err
	}
	p, err := newParser(cfg, "")
	if err != nil {
		return err
	}

	result := &lintResult{Files: make([]*pipeline.FileReport, 0, len(targets))}
	for _, t := range targets {
		report, err := pipeline.LintFile(p, t.path, t.collection)
		if err != nil {
			return cli.NewCommandError("lint", err)
		}
		result.Files = append(result.Files, report)
		result.Diagnostics += len(report.Diagnostics)
	}
	logger.Debug("Lint completed", "files", len(result.Files), "diagnostics", result.Diagnostics)

	if err := formatter.FormatTo(w, result); err != nil {
		return err
	}
	if lintFlags.strict && result.Diagnostics > 0 {
		return cli.NewCommandError("lint", cli.ErrDiagnostics)
	}
	return nil
}

// lintTargets pairs files with schemas. Explicit files share the schema of
// the named collection. Without files, each configured collection's sources
// are used; a file claimed by an earlier collection is not checked again.
func lintTargets(cfg *config.Config, files []string, collection string) ([]lintTarget, error) {
	if len(files) > 0 {
		var schema *requirements.CollectionConfig
		if collection != "" {
			var err error
			if schema, err = lintCollection(cfg, collection); err != nil {
				return nil, err
			}
		}
		targets := make([]lintTarget, 0, len(files))
		for _, f := range files {
			targets = append(targets, lintTarget{path: f, collection: schema})
		}
		return targets, nil
	}

	seen := make(map[string]bool)
	var targets []lintTarget
	for _, cc := range cfg.Collections {
		if collection != "" && cc.Name != collection {
			continue
		}
		schema, err := pipeline.ResolveCollection(cc)
		if err != nil {
			return nil, cli.NewConfigError("collections", err.Error())
		}
		paths, err := pipeline.ResolveFiles(cfg.GameRoot, cc.Paths)
		if err != nil {
			return nil, cli.NewConfigError("collections", err.Error())
		}
		for _, path := range paths {
			if seen[path] {
				continue
			}
			seen[path] = true
			targets = append(targets, lintTarget{path: path, collection: schema})
		}
	}
	if collection != "" && cfg.Collection(collection) == nil {
		return nil, cli.NewConfigError("collection", fmt.Sprintf("collection %q is not configured", collection))
	}
	return targets, nil
}

// lintCollection resolves a collection by name from the configuration,
// falling back to the built-in collections.
func lintCollection(cfg *config.Config, name string) (*requirements.CollectionConfig, error) {
	if cc := cfg.Collection(name); cc != nil {
		schema, err := pipeline.ResolveCollection(*cc)
		if err != nil {
			return nil, cli.NewConfigError("collections", err.Error())
		}
		return schema, nil
	}
	schema, err := requirements.BuiltinCollection(name)
	if err != nil {
		return nil, cli.NewConfigError("collection", err.Error())
	}
	return schema, nil
}
