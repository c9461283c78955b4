package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Vogelwarte/tytalb/internal/logging"
	"github.com/Vogelwarte/tytalb/parser"
)

// Load reads the YAML configuration file at path over the defaults and
// validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result. Unknown keys are rejected. An empty document yields
// the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func ValidateConfig(cfg *Config) error {
	var errs []error

	if cfg.Validate.Binary && len(cfg.Validate.PositiveLabels) == 0 {
		errs = append(errs, errors.New("validate.binary requires at least one entry in validate.positive_labels"))
	}
	if cfg.Validate.Workers < 0 {
		errs = append(errs, fmt.Errorf("validate.workers %d must not be negative", cfg.Validate.Workers))
	}

	sources := []struct {
		name string
		src  Source
	}{
		{"ground_truth", cfg.GroundTruth},
		{"to_validate", cfg.ToValidate},
	}
	for _, s := range sources {
		if s.src.Format == "" {
			continue
		}
		if _, err := parser.Lookup(s.src.Format); err != nil {
			errs = append(errs, fmt.Errorf("%s.format: %w", s.name, err))
		}
	}

	s := cfg.Sweep
	if s.Step <= 0 {
		errs = append(errs, fmt.Errorf("sweep.step %g must be positive", s.Step))
	}
	if s.Min > s.Max {
		errs = append(errs, fmt.Errorf("sweep.min %g is above sweep.max %g", s.Min, s.Max))
	}
	if s.Basis != "" && s.Basis != "time" && s.Basis != "count" {
		errs = append(errs, fmt.Errorf("sweep.basis %q is invalid; valid values: time, count", s.Basis))
	}
	if s.PrecisionWeight < 0 || s.RecallWeight < 0 {
		errs = append(errs, errors.New("sweep weights must not be negative"))
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if f := cfg.Log.Format; f != "" && f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: text, json", f))
	}

	return errors.Join(errs...)
}
