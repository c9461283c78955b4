package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Vogelwarte/tytalb"
	"github.com/Vogelwarte/tytalb/annotation"
	"github.com/Vogelwarte/tytalb/internal/config"
	"github.com/Vogelwarte/tytalb/internal/report"
	"github.com/Vogelwarte/tytalb/internal/sweep"
)

func newSweepCmd(a *app) *cobra.Command {
	var (
		in inputFlags
		sw config.Sweep
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Rank confidence thresholds by the score of one label",
		Long: `Validate the annotations once per confidence threshold, keeping only
predictions whose confidence reaches it, and rank the thresholds by the F1
score of the target label (or a weighted mean of precision and recall).

Example:
  tytalb sweep --gt manual --fgt raven --tv birdnet --ftv birdnet \
    --binary --positive "Tyto alba" --min 0.1 --max 0.9 --step 0.05`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			in.apply(flags, cfg)
			if flags.Changed("min") {
				cfg.Sweep.Min = sw.Min
			}
			if flags.Changed("max") {
				cfg.Sweep.Max = sw.Max
			}
			if flags.Changed("step") {
				cfg.Sweep.Step = sw.Step
			}
			if flags.Changed("target") {
				cfg.Sweep.Target = sw.Target
			}
			if flags.Changed("basis") {
				cfg.Sweep.Basis = sw.Basis
			}
			if flags.Changed("wp") {
				cfg.Sweep.PrecisionWeight = sw.PrecisionWeight
			}
			if flags.Changed("wr") {
				cfg.Sweep.RecallWeight = sw.RecallWeight
			}
			if err := checkInputs(cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			gt, tv, err := loadBoth(ctx, cfg, a.logger)
			if err != nil {
				return err
			}
			v, err := tytalb.New(validatorOptions(cfg.Validate, a.logger)...)
			if err != nil {
				return err
			}

			thresholds := sweep.Thresholds(cfg.Sweep.Min, cfg.Sweep.Max, cfg.Sweep.Step)
			sc := sweep.Config{
				Target:          cfg.Sweep.Target,
				Basis:           sweep.Basis(cfg.Sweep.Basis),
				PrecisionWeight: cfg.Sweep.PrecisionWeight,
				RecallWeight:    cfg.Sweep.RecallWeight,
			}
			results, err := sweep.Run(ctx, v, gt, tv, thresholds, sc)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			path := filepath.Join(cfg.Output.Dir, report.SweepFile)
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			if err := report.WriteSweep(f, results); err != nil {
				_ = f.Close()
				return fmt.Errorf("writing %s: %w", path, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", path, err)
			}

			if len(results) > 0 {
				best := results[0]
				a.logger.Info("best threshold", "threshold", best.Threshold, "score", best.Score, "f1", best.Metrics.F1)
				if cfg.Output.MetricsTextfile != "" {
					meta := report.NewMeta(cfg.GroundTruth.Dir, cfg.ToValidate.Dir, runOptions(cfg.Validate))
					meta.Options["threshold"] = best.Threshold
					if err := report.WriteTextfile(cfg.Output.MetricsTextfile, best.Validation, meta); err != nil {
						return err
					}
				}
			}

			target := sc.Target
			if target == "" {
				target = annotation.DefaultPositive
			}
			return report.SweepSummary(a.stdout, target, results)
		},
	}

	in.register(cmd.Flags())
	fs := cmd.Flags()
	fs.Float64Var(&sw.Min, "min", 0.1, "Lowest threshold")
	fs.Float64Var(&sw.Max, "max", 0.9, "Highest threshold")
	fs.Float64Var(&sw.Step, "step", 0.1, "Threshold step")
	fs.StringVar(&sw.Target, "target", "", "Label ranked by (default Positive)")
	fs.StringVar(&sw.Basis, "basis", "time", "Matrix ranked by: time or count")
	fs.Float64Var(&sw.PrecisionWeight, "wp", 0, "Precision weight; with --wr ranks by a weighted mean instead of F1")
	fs.Float64Var(&sw.RecallWeight, "wr", 0, "Recall weight")
	return cmd
}
