package main

import (
	"os"
	"path/filepath"
	"testing"

	"pdx-hq/reqgraph/pkg/config"
)

const civicsFixture = `
civic_imperial_cult = {
	potential = {
		authority = { value = auth_imperial }
	}
	possible = {
		ethics = { OR = { value = ethic_spiritualist value = ethic_fanatic_spiritualist } }
		civics = { NOT = { value = civic_cutthroat_politics } }
	}
}

civic_cutthroat_politics = {
	possible = {
		authority = { NOT = { value = auth_corporate } }
	}
}

civic_legacy = {
	playable = { NOT = { host_has_dlc = "Utopia" } }
}
`

const ethicsFixture = `
ethic_spiritualist = {
	cost = 1
	possible = { ethics = { NOT = { value = ethic_materialist } } }
}
ethic_materialist = { cost = 1 }
`

const misspelledFixture = `
civic_typo = {
	possible = {
		authoritiy = { value = auth_imperial }
	}
}
`

// writeFile writes content under root, creating directories.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

// useTestConfig installs a configuration over a fresh game tree and resets
// command flags. It returns the configuration so tests can adjust it.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	writeFile(t, root, "common/governments/civics/00_civics.txt", civicsFixture)
	writeFile(t, root, "common/ethics/00_ethics.txt", ethicsFixture)

	cfg := config.DefaultConfig()
	cfg.GameRoot = root
	cfg.Workers = 2
	cfg.Storage.Path = filepath.Join(t.TempDir(), "runs.db")
	cfg.Telemetry.Logging.Level = "error"

	prev := config.GetConfig()
	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(prev) })

	resetFlags()
	t.Cleanup(resetFlags)
	return cfg
}

// resetFlags restores every command flag to its zero value.
func resetFlags() {
	cfgFile, verbose, logLevel, gameRoot = "", false, "", ""
	parseFlags.format, parseFlags.encoding = "json", ""
	lintFlags.collection, lintFlags.strict, lintFlags.format = "", false, "text"
	buildFlags.output, buildFlags.format = "", ""
	buildFlags.store, buildFlags.progress, buildFlags.workers = false, false, 0
	runsFlags.limit, runsFlags.format, runsFlags.keep = 20, "", 0
	watchFlags.listen, watchFlags.schedule, watchFlags.store = "", "", false
}
