package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/Vogelwarte/tytalb"
	"github.com/Vogelwarte/tytalb/annotation"
	"github.com/Vogelwarte/tytalb/internal/config"
	"github.com/Vogelwarte/tytalb/labelmap"
	"github.com/Vogelwarte/tytalb/parser"
)

// inputFlags are the flags shared by validate and sweep.
type inputFlags struct {
	gt, tv          config.Source
	recursive       bool
	output          string
	binary          bool
	positive        []string
	lateStart       bool
	earlyStop       bool
	workers         int
	background      string
	json            bool
	metricsTextfile string
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.gt.Dir, "gt", "", "Ground-truth annotation directory")
	fs.StringVar(&f.tv.Dir, "tv", "", "Directory of annotations to validate")
	fs.StringVar(&f.gt.Format, "fgt", "", "Ground-truth table format (see 'tytalb formats')")
	fs.StringVar(&f.tv.Format, "ftv", "raven", "Table format of the annotations to validate")
	fs.StringVar(&f.gt.Labels, "labels-gt", "", "labels.json applied to the ground truth")
	fs.StringVar(&f.tv.Labels, "labels-tv", "", "labels.json applied to the annotations to validate")
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "Read tables in subdirectories too")
	fs.StringVarP(&f.output, "output", "o", ".", "Output directory")
	fs.BoolVar(&f.binary, "binary", false, "Score Positive against background only")
	fs.StringSliceVar(&f.positive, "positive", nil, "Labels counted as Positive in binary mode (repeatable)")
	fs.BoolVar(&f.lateStart, "late-start", false, "Ignore predictions ending before the first ground-truth segment")
	fs.BoolVar(&f.earlyStop, "early-stop", false, "Ignore predictions starting after the last ground-truth segment")
	fs.IntVar(&f.workers, "workers", 0, "Recordings reconciled in parallel (0: one per CPU)")
	fs.StringVar(&f.background, "background", "", "Label meaning no annotation (default Noise)")
	fs.BoolVar(&f.json, "json", false, "Also write report.json")
	fs.StringVar(&f.metricsTextfile, "metrics-textfile", "", "Write metrics in the Prometheus text format to this file")
}

// apply copies the flags set on the command line over cfg.
func (f *inputFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	set := fs.Changed
	if set("gt") {
		cfg.GroundTruth.Dir = f.gt.Dir
	}
	if set("tv") {
		cfg.ToValidate.Dir = f.tv.Dir
	}
	if set("fgt") {
		cfg.GroundTruth.Format = f.gt.Format
	}
	if set("ftv") {
		cfg.ToValidate.Format = f.tv.Format
	}
	if set("labels-gt") {
		cfg.GroundTruth.Labels = f.gt.Labels
	}
	if set("labels-tv") {
		cfg.ToValidate.Labels = f.tv.Labels
	}
	if set("recursive") {
		cfg.GroundTruth.Recursive = f.recursive
		cfg.ToValidate.Recursive = f.recursive
	}
	if set("output") {
		cfg.Output.Dir = f.output
	}
	if set("binary") {
		cfg.Validate.Binary = f.binary
	}
	if set("positive") {
		cfg.Validate.PositiveLabels = f.positive
	}
	if set("late-start") {
		cfg.Validate.LateStart = f.lateStart
	}
	if set("early-stop") {
		cfg.Validate.EarlyStop = f.earlyStop
	}
	if set("workers") {
		cfg.Validate.Workers = f.workers
	}
	if set("background") {
		cfg.Validate.Background = f.background
	}
	if set("json") {
		cfg.Output.JSON = f.json
	}
	if set("metrics-textfile") {
		cfg.Output.MetricsTextfile = f.metricsTextfile
	}
}

// checkInputs reports missing required settings after flags and file are
// merged.
func checkInputs(cfg *config.Config) error {
	var errs []error
	if cfg.GroundTruth.Dir == "" {
		errs = append(errs, errors.New("--gt (ground_truth.dir) is required"))
	}
	if cfg.ToValidate.Dir == "" {
		errs = append(errs, errors.New("--tv (to_validate.dir) is required"))
	}
	if cfg.GroundTruth.Format == "" {
		errs = append(errs, errors.New("--fgt (ground_truth.format) is required"))
	}
	if err := config.ValidateConfig(cfg); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// loadSource parses one side and applies its labels file.
func loadSource(ctx context.Context, src config.Source, background string, logger *slog.Logger) (*annotation.Set, error) {
	p, err := parser.Lookup(src.Format)
	if err != nil {
		return nil, err
	}
	set, err := parser.Load(ctx, src.Dir, p, parser.LoadOptions{Recursive: src.Recursive, Logger: logger})
	if err != nil {
		return nil, err
	}

	m, err := labelmap.Load(src.Labels, logger, labelmap.WithBackground(background))
	if err != nil {
		return nil, err
	}
	if m.Identity() {
		return set, nil
	}
	return m.Apply(set), nil
}

// loadBoth parses the ground truth and the annotations to validate.
func loadBoth(ctx context.Context, cfg *config.Config, logger *slog.Logger) (gt, tv *annotation.Set, err error) {
	gt, err = loadSource(ctx, cfg.GroundTruth, cfg.Validate.Background, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("ground truth: %w", err)
	}
	tv, err = loadSource(ctx, cfg.ToValidate, cfg.Validate.Background, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("annotations to validate: %w", err)
	}
	return gt, tv, nil
}

func validatorOptions(v config.Validate, logger *slog.Logger) []tytalb.Option {
	opts := []tytalb.Option{
		tytalb.WithLateStart(v.LateStart),
		tytalb.WithEarlyStop(v.EarlyStop),
		tytalb.WithWorkers(v.Workers),
		tytalb.WithBackgroundLabel(v.Background),
		tytalb.WithLogger(logger),
	}
	if v.Binary {
		opts = append(opts, tytalb.WithBinary(v.PositiveLabels...))
	} else if len(v.PositiveLabels) > 0 {
		opts = append(opts, tytalb.WithPositiveLabels(v.PositiveLabels...))
	}
	return opts
}

// runOptions records the settings of a run for the JSON report.
func runOptions(v config.Validate) map[string]any {
	positives := make([]any, len(v.PositiveLabels))
	for i, l := range v.PositiveLabels {
		positives[i] = l
	}
	return map[string]any{
		"binary":          v.Binary,
		"positive_labels": positives,
		"late_start":      v.LateStart,
		"early_stop":      v.EarlyStop,
		"workers":         v.Workers,
		"background":      v.Background,
	}
}
