package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"pdx-hq/reqgraph/pkg/cli"
	"pdx-hq/reqgraph/pkg/pipeline"
)

func TestRunBuild_Stdout(t *testing.T) {
	useTestConfig(t)

	var stdout, stderr bytes.Buffer
	if err := runBuild(context.Background(), &stdout, &stderr); err != nil {
		t.Fatalf("runBuild() error = %v", err)
	}

	g, err := pipeline.DecodeGraph(&stdout)
	if err != nil {
		t.Fatalf("DecodeGraph() error = %v", err)
	}
	civics := g.Collection("civics")
	if civics == nil {
		t.Fatal("civics collection missing")
	}
	if got, want := civics.IDs(), []string{"civic_imperial_cult", "civic_cutthroat_politics"}; !reflect.DeepEqual(got, want) {
		t.Errorf("civics IDs = %v, want %v", got, want)
	}
	if got := g.Pruned(); !reflect.DeepEqual(got, map[string][]string{"civics": {"civic_legacy"}}) {
		t.Errorf("Pruned() = %v", got)
	}

	summary := stderr.String()
	if !strings.Contains(summary, "✓ Built run "+g.RunID) {
		t.Errorf("summary missing run id:\n%s", summary)
	}
	if !strings.Contains(summary, "1 entities pruned") {
		t.Errorf("summary missing pruned count:\n%s", summary)
	}
}

func TestRunBuild_YAMLFile(t *testing.T) {
	useTestConfig(t)
	out := filepath.Join(t.TempDir(), "nested", "graph.yaml")
	buildFlags.output = out
	buildFlags.format = "yaml"

	var stdout, stderr bytes.Buffer
	if err := runBuild(context.Background(), &stdout, &stderr); err != nil {
		t.Fatalf("runBuild() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty when writing a file, got %q", stdout.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	var doc struct {
		RunID       string `yaml:"run_id"`
		Collections []struct {
			Name string `yaml:"name"`
		} `yaml:"collections"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if doc.RunID == "" || len(doc.Collections) != 4 {
		t.Errorf("run_id = %q, %d collections; want a run id and 4 collections", doc.RunID, len(doc.Collections))
	}
}

func TestRunBuild_Progress(t *testing.T) {
	useTestConfig(t)
	buildFlags.progress = true

	var stdout, stderr bytes.Buffer
	if err := runBuild(context.Background(), &stdout, &stderr); err != nil {
		t.Fatalf("runBuild() error = %v", err)
	}
	if !strings.Contains(stderr.String(), "Parsing:") {
		t.Errorf("progress not rendered:\n%s", stderr.String())
	}
}

func TestRunBuild_BadFormat(t *testing.T) {
	useTestConfig(t)
	buildFlags.format = "toml"

	err := runBuild(context.Background(), &bytes.Buffer{}, &bytes.Buffer{})
	if got := cli.ExitCode(err); got != cli.ExitConfig {
		t.Errorf("ExitCode() = %d, want %d (err = %v)", got, cli.ExitConfig, err)
	}
}

func TestRunBuild_Cancelled(t *testing.T) {
	useTestConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runBuild(ctx, &bytes.Buffer{}, &bytes.Buffer{})
	if got := cli.ExitCode(err); got != cli.ExitFailure {
		t.Errorf("ExitCode() = %d, want %d (err = %v)", got, cli.ExitFailure, err)
	}
}
