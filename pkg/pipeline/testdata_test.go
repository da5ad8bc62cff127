package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"pdx-hq/reqgraph/pkg/config"
)

const civicsSource = `
@civic_cost = 1

civic_imperial_cult = {
	potential = {
		ethics = { NOT = { value = ethic_gestalt_consciousness } }
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

civic_no_origin_x = {
	possible = {
		origin = { NOT = { value = origin_void_dwellers } }
	}
}

civic_legacy = {
	playable = { NOT = { host_has_dlc = "Utopia" } }
	possible = { civics = { NOT = { value = civic_imperial_cult } } }
}

origin_void_dwellers = {
	is_origin = yes
	possible = {
		ethics = { OR = { value = ethic_materialist } }
	}
}
`

const ethicsSource = `
ethic_spiritualist = {
	cost = 1
	possible = { ethics = { NOT = { value = ethic_materialist } } }
}
ethic_materialist = { cost = 1 }
`

// writeGame lays out a minimal game tree and returns its root.
func writeGame(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"common/governments/civics/00_civics.txt": civicsSource,
		"common/ethics/00_ethics.txt":             ethicsSource,
		"common/traits/readme.md":                 "not a script",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.GameRoot = writeGame(t)
	cfg.Workers = 2
	return cfg
}
