package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Vogelwarte/tytalb"
	"github.com/Vogelwarte/tytalb/internal/report"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		in    inputFlags
		quiet bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare annotations against a ground truth",
		Long: `Compare a directory of annotations against a ground-truth directory.

Tables are matched by recording: the path relative to the directory with the
file name cut at its first dot. Both a time-weighted and a count-weighted
confusion matrix are written, along with precision, recall and F1 per label.

Example:
  tytalb validate --gt manual --fgt raven --tv birdnet --ftv birdnet \
    --binary --positive "Tyto alba" --late-start --early-stop -o results`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			in.apply(cmd.Flags(), cfg)
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
			res, err := v.Validate(ctx, gt, tv)
			if err != nil {
				return err
			}

			paths, err := report.WriteDir(cfg.Output.Dir, res)
			if err != nil {
				return err
			}
			meta := report.NewMeta(cfg.GroundTruth.Dir, cfg.ToValidate.Dir, runOptions(cfg.Validate))
			if cfg.Output.JSON {
				path := filepath.Join(cfg.Output.Dir, report.JSONFile)
				if err := report.WriteJSON(path, res, meta); err != nil {
					return err
				}
				paths = append(paths, path)
			}
			if cfg.Output.MetricsTextfile != "" {
				if err := report.WriteTextfile(cfg.Output.MetricsTextfile, res, meta); err != nil {
					return err
				}
				paths = append(paths, cfg.Output.MetricsTextfile)
			}
			a.logger.Info("results written", "run_id", meta.RunID, "files", paths)

			if quiet {
				return nil
			}
			if err := report.Summary(a.stdout, res); err != nil {
				return fmt.Errorf("printing summary: %w", err)
			}
			return nil
		},
	}

	in.register(cmd.Flags())
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the summary table")
	return cmd
}
