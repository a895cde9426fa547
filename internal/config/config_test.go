package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gazemap/internal/model"
	"gazemap/internal/pipeline"
	"gazemap/internal/sampling"
)

const sampleYAML = `
participant: Participant1
mode: path
axis: plot
bins: 120
sigma: 4.5
on_stimulus: true
stimuli:
  from: 2
  to: 5
sampling:
  mode: random
  cap: 50
  seed: 7
duration:
  min: 60
markers:
  start: ["Question start"]
columns:
  participant: Subject
`

func TestParseAndApply(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	cfg := pipeline.DefaultConfig()
	if err := f.Apply(&cfg); err != nil {
		t.Fatalf("unexpected apply error: %v", err)
	}
	if cfg.Participant != "Participant1" || cfg.Mode != model.KindPath || cfg.Axis != model.AxisPlot {
		t.Fatalf("unexpected identity fields: %+v", cfg)
	}
	if cfg.Density.BinsX != 120 || cfg.Density.BinsY != 120 || cfg.Density.Sigma != 4.5 {
		t.Fatalf("unexpected density options: %+v", cfg.Density)
	}
	if cfg.FirstStimulus != 2 || cfg.LastStimulus != 5 || !cfg.OnStimulusOnly {
		t.Fatalf("unexpected range or filter: %+v", cfg)
	}
	if cfg.Sampling != (sampling.Policy{Mode: sampling.ModeRandom, Cap: 50, Seed: 7}) {
		t.Fatalf("unexpected sampling: %+v", cfg.Sampling)
	}
	if cfg.Path.MinDuration != 60 || cfg.Path.MaxDuration != 400 {
		t.Fatalf("unexpected duration clip: %+v", cfg.Path)
	}

	opts := f.ParserOptions()
	if opts.Columns.Participant != "Subject" || opts.Columns.Timestamp != "Recording timestamp" {
		t.Fatalf("unexpected columns: %+v", opts.Columns)
	}
	if opts.StartLabels[0] != "Question start" || opts.EndLabels[0] != "URL End" {
		t.Fatalf("unexpected markers: %v %v", opts.StartLabels, opts.EndLabels)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse(strings.NewReader("bins: 10\nsigmaa: 3\n")); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Participant != nil {
		t.Fatalf("expected empty file")
	}
}

func TestApplyRejectsBadMode(t *testing.T) {
	mode := "contour"
	cfg := pipeline.DefaultConfig()
	if err := (File{Mode: &mode}).Apply(&cfg); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
	f, err := Load("")
	if err != nil || f.Mode != nil {
		t.Fatalf("empty path should yield empty file: %+v %v", f, err)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("GAZEMAP_TEST_DIR=/data/stimuli\nGAZEMAP_TEST_KEEP=file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("GAZEMAP_TEST_KEEP", "process")
	t.Setenv("GAZEMAP_TEST_DIR", "")
	os.Unsetenv("GAZEMAP_TEST_DIR")

	if err := LoadEnv(path, filepath.Join(dir, "absent.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Env("GAZEMAP_TEST_DIR", "x"); got != "/data/stimuli" {
		t.Fatalf("unexpected env value: %q", got)
	}
	if got := Env("GAZEMAP_TEST_KEEP", "x"); got != "process" {
		t.Fatalf("env file overrode the process: %q", got)
	}
	if got := Env("GAZEMAP_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("unexpected fallback: %q", got)
	}
}
