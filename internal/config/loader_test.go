package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vogelwarte/tytalb/internal/config"
)

func TestLoadFromReader(t *testing.T) {
	yaml := `
validate:
  binary: true
  positive_labels: ["Tyto alba"]
  late_start: true
  workers: 4
ground_truth:
  dir: manual
  format: raven
  recursive: true
to_validate:
  dir: birdnet
  format: bn
  labels: labels.json
output:
  dir: out
  json: true
log:
  level: debug
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader() failed: %v", err)
	}
	if !cfg.Validate.Binary || cfg.Validate.PositiveLabels[0] != "Tyto alba" {
		t.Errorf("Validate = %+v", cfg.Validate)
	}
	if cfg.Validate.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Validate.Workers)
	}
	if cfg.GroundTruth.Dir != "manual" || !cfg.GroundTruth.Recursive {
		t.Errorf("GroundTruth = %+v", cfg.GroundTruth)
	}
	if cfg.ToValidate.Format != "bn" || cfg.ToValidate.Labels != "labels.json" {
		t.Errorf("ToValidate = %+v", cfg.ToValidate)
	}
	if cfg.Output.Dir != "out" || !cfg.Output.JSON {
		t.Errorf("Output = %+v", cfg.Output)
	}
	// Defaults survive for keys the file leaves out.
	if cfg.Sweep.Step != 0.1 {
		t.Errorf("Sweep.Step = %v, want default 0.1", cfg.Sweep.Step)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want default text", cfg.Log.Format)
	}
}

func TestLoadFromReader_Empty(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader() failed: %v", err)
	}
	if cfg.ToValidate.Format != "raven" {
		t.Errorf("ToValidate.Format = %q, want raven", cfg.ToValidate.Format)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader("validate:\n  binray: true\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "binray") {
		t.Errorf("error should name the field, got: %v", err)
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	yaml := `
validate:
  binary: true
  workers: -1
ground_truth:
  format: excel
sweep:
  step: 0
  basis: energy
log:
  level: loud
  format: xml
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{
		"positive_labels",
		"workers",
		"ground_truth.format",
		"sweep.step",
		"sweep.basis",
		"log.level",
		"log.format",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tytalb.yaml")
	if err := os.WriteFile(path, []byte("output:\n  dir: results\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Output.Dir != "results" {
		t.Errorf("Output.Dir = %q, want results", cfg.Output.Dir)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
