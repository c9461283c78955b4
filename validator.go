package tytalb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Vogelwarte/tytalb/annotation"
	"github.com/Vogelwarte/tytalb/confusion"
	"github.com/Vogelwarte/tytalb/reconcile"
)

// Validator scores a set of predictions against a ground truth.
// It is safe for concurrent use.
type Validator struct {
	binary         bool
	positiveLabels []string
	positiveLabel  string
	background     string
	window         annotation.WindowOptions
	workers        int
	logger         *slog.Logger
}

// Basis is the outcome of a run for one weighting, time or count.
type Basis struct {
	Matrix  *confusion.Matrix
	Metrics []confusion.Metrics
}

// Result holds both confusion matrices of a run and their metrics.
type Result struct {
	// Labels is the sorted label space; it orders every matrix row and column.
	Labels []string
	Time   Basis
	Count  Basis

	// Recordings is the number of recordings known to either side.
	Recordings int
	// Dropped is the number of predictions removed by the comparison window.
	Dropped int
	// Warnings holds non-fatal conditions such as ErrNoPositive.
	Warnings []error
}

// New creates a Validator. It rejects binary mode without positive labels
// and a background label equal to the positive label. Problems that depend on
// the data, such as an ambiguous collapse of a multi-class vocabulary, are
// reported by Validate.
func New(opts ...Option) (*Validator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.binary && len(cfg.positiveLabels) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, annotation.ErrNoPositiveLabels)
	}
	if cfg.background == cfg.positiveLabel {
		return nil, fmt.Errorf("%w: background and positive label are both %q", ErrConfiguration, cfg.background)
	}

	return &Validator{
		binary:         cfg.binary,
		positiveLabels: cfg.positiveLabels,
		positiveLabel:  cfg.positiveLabel,
		background:     cfg.background,
		window: annotation.WindowOptions{
			LateStart:  cfg.lateStart,
			EarlyStop:  cfg.earlyStop,
			Background: cfg.background,
		},
		workers: cfg.workers,
		logger:  cfg.logger,
	}, nil
}

// Background returns the label meaning "nothing annotated".
func (v *Validator) Background() string { return v.background }

// Validate compares tv against gt. Neither source is modified.
//
// A malformed segment anywhere fails the whole run with an error wrapping
// ErrIntegrity; when several recordings are malformed the first in sorted
// order is reported.
func (v *Validator) Validate(ctx context.Context, gt, tv annotation.Source) (*Result, error) {
	if gt == nil || tv == nil {
		return nil, fmt.Errorf("%w: nil annotation source", ErrConfiguration)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	began := time.Now()

	if err := checkAll(gt, tv); err != nil {
		return nil, err
	}

	u, err := annotation.Unify(gt, tv, annotation.UnifyOptions{
		Background:     v.background,
		Binary:         v.binary,
		PositiveLabels: v.positiveLabels,
		PositiveLabel:  v.positiveLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	for _, w := range u.Warnings {
		v.logger.Warn("validation warning", "error", w)
	}

	pred, dropped := annotation.Trim(u.GroundTruth, u.ToValidate, v.window)
	if dropped > 0 {
		v.logger.Debug("predictions outside comparison window", "dropped", dropped)
	}

	ids := annotation.Union(u.GroundTruth, pred)
	contributions, err := v.reconcileAll(ctx, ids, u.GroundTruth, pred)
	if err != nil {
		return nil, err
	}

	labels := u.Vocabulary.Labels()
	acc := confusion.NewAccumulator(labels)
	for i, cs := range contributions {
		if err := acc.AddAll(cs); err != nil {
			return nil, fmt.Errorf("recording %s: %w", ids[i], err)
		}
	}

	v.logger.Info("validation complete",
		"recordings", len(ids),
		"labels", len(labels),
		"workers", v.workers,
		"binary", v.binary,
		"elapsed", time.Since(began),
	)

	return &Result{
		Labels:     labels,
		Time:       Basis{Matrix: acc.Time, Metrics: confusion.Evaluate(acc.Time)},
		Count:      Basis{Matrix: acc.Count, Metrics: confusion.Evaluate(acc.Count)},
		Recordings: len(ids),
		Dropped:    dropped,
		Warnings:   u.Warnings,
	}, nil
}

// checkAll validates every segment of both sources before the window can drop
// any of them. The first malformed segment in sorted recording order fails
// the run.
func checkAll(gt, tv annotation.Source) error {
	for _, id := range annotation.Union(gt, tv) {
		truth, _ := gt.Segments(id)
		predicted, _ := tv.Segments(id)
		if err := reconcile.Check(reconcile.Input{Recording: id, GroundTruth: truth, ToValidate: predicted}); err != nil {
			return err
		}
	}
	return nil
}

// reconcileAll reconciles every recording on up to v.workers goroutines.
// Contributions are returned indexed like ids so that the caller can merge
// them in a fixed order.
func (v *Validator) reconcileAll(ctx context.Context, ids []string, gt, tv annotation.Source) ([][]confusion.Contribution, error) {
	results := make([][]confusion.Contribution, len(ids))
	errs := make([]error, len(ids))

	pool := reconcile.NewPool(v.workers)
	defer pool.Close()
	rec := reconcile.Reconciler{Background: v.background}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, id := range ids {
		g.Go(func() error {
			ws, err := pool.Acquire(gctx)
			if err != nil {
				return err
			}
			defer pool.Release(ws)

			truth, hasTruth := gt.Segments(id)
			predicted, hasPrediction := tv.Segments(id)
			results[i], errs[i] = rec.Reconcile(reconcile.Input{
				Recording:     id,
				GroundTruth:   truth,
				ToValidate:    predicted,
				HasTruth:      hasTruth,
				HasPrediction: hasPrediction,
			}, ws)
			v.logger.Debug("reconciled recording",
				"recording", id,
				"ground_truth", len(truth),
				"to_validate", len(predicted),
				"contributions", len(results[i]),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
