// Package sweep scores predictions at several confidence thresholds to find
// the one that best matches the ground truth.
package sweep

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Vogelwarte/tytalb"
	"github.com/Vogelwarte/tytalb/annotation"
	"github.com/Vogelwarte/tytalb/confusion"
	"github.com/Vogelwarte/tytalb/segment"
)

// ErrUnknownTarget indicates a target label absent from the scored labels.
var ErrUnknownTarget = errors.New("sweep: target label not scored")

// Basis selects which confusion matrix the sweep ranks by.
type Basis string

const (
	Time  Basis = "time"
	Count Basis = "count"
)

// Config controls a sweep.
type Config struct {
	// Target is the label whose metrics rank the thresholds (default:
	// "Positive", the label of binary runs).
	Target string
	// Basis is the matrix ranked by (default: Time).
	Basis Basis
	// PrecisionWeight and RecallWeight rank by their weighted mean instead
	// of F1 when either is set.
	PrecisionWeight float64
	RecallWeight    float64
}

// Result holds the outcome at one threshold.
type Result struct {
	Threshold float64
	// Kept is the number of scored predictions at or above the threshold.
	// Background predictions are not counted.
	Kept    int
	Metrics confusion.Metrics
	Score   float64
	// Validation is the full run at this threshold.
	Validation *tytalb.Result
}

// Thresholds generates threshold values from first to last inclusive with the
// given step. Values are rounded to the decimal places of first and step, so
// Thresholds(0.1, 0.9, 0.1) yields exactly 0.3 rather than 0.30000000000000004.
func Thresholds(first, last, step float64) []float64 {
	if step <= 0 || last < first {
		return nil
	}
	scale := math.Pow10(max(decimals(first), decimals(step)))
	var out []float64
	for i := 0; ; i++ {
		t := math.Round((first+float64(i)*step)*scale) / scale
		if t > last+step*1e-9 {
			break
		}
		out = append(out, t)
	}
	return out
}

// decimals returns the number of decimal places needed to write v, up to 12.
func decimals(v float64) int {
	v = math.Abs(v)
	for d := 0; d < 12; d++ {
		scaled := v * math.Pow10(d)
		if math.Abs(scaled-math.Round(scaled)) < 1e-9*math.Max(1, scaled) {
			return d
		}
	}
	return 12
}

// Run validates tv against gt once per threshold, keeping only predictions
// whose confidence reaches it. Results are sorted by score descending, ties
// by threshold ascending.
func Run(ctx context.Context, v *tytalb.Validator, gt, tv annotation.Source, thresholds []float64, cfg Config) ([]Result, error) {
	if cfg.Target == "" {
		cfg.Target = annotation.DefaultPositive
	}
	if cfg.Basis == "" {
		cfg.Basis = Time
	}
	if cfg.Basis != Time && cfg.Basis != Count {
		return nil, fmt.Errorf("sweep: unknown basis %q", cfg.Basis)
	}

	results := make([]Result, 0, len(thresholds))
	for _, threshold := range thresholds {
		kept := annotation.Filter(tv, func(s segment.Segment) bool { return s.Confidence >= threshold })
		res, err := v.Validate(ctx, gt, kept)
		if err != nil {
			return nil, fmt.Errorf("threshold %g: %w", threshold, err)
		}

		metrics := res.Time.Metrics
		if cfg.Basis == Count {
			metrics = res.Count.Metrics
		}
		m, ok := confusion.Find(metrics, cfg.Target)
		if !ok {
			return nil, fmt.Errorf("%w: %q not in %v", ErrUnknownTarget, cfg.Target, res.Labels)
		}

		results = append(results, Result{
			Threshold:  threshold,
			Kept:       countScored(kept, v.Background()),
			Metrics:    m,
			Score:      cfg.score(m),
			Validation: res,
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Threshold, b.Threshold)
	})
	return results, nil
}

// countScored counts the segments of src not labelled background.
func countScored(src annotation.Source, background string) int {
	var n int
	for _, id := range src.Recordings() {
		segs, _ := src.Segments(id)
		for _, s := range segs {
			if s.Label != background {
				n++
			}
		}
	}
	return n
}

func (c Config) score(m confusion.Metrics) float64 {
	wp, wr := c.PrecisionWeight, c.RecallWeight
	if wp+wr > 0 {
		return (wp*m.Precision + wr*m.Recall) / (wp + wr)
	}
	return m.F1
}
