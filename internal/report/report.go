// Package report writes validation results: CSV tables, a JSON report, a
// Prometheus textfile and a terminal summary.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Vogelwarte/tytalb"
	"github.com/Vogelwarte/tytalb/confusion"
)

// Meta describes the run a result came from.
type Meta struct {
	RunID       string
	Created     time.Time
	GroundTruth string
	ToValidate  string
	// Options records the settings of the run as plain values.
	Options map[string]any
}

// NewMeta returns a Meta with a fresh run id and the current time.
func NewMeta(groundTruth, toValidate string, options map[string]any) Meta {
	return Meta{
		RunID:       uuid.NewString(),
		Created:     time.Now().UTC(),
		GroundTruth: groundTruth,
		ToValidate:  toValidate,
		Options:     options,
	}
}

// Output file names.
const (
	MatrixTimeFile   = "confusion_matrix_time.csv"
	MatrixCountFile  = "confusion_matrix_count.csv"
	MetricsTimeFile  = "validation_metrics_time.csv"
	MetricsCountFile = "validation_metrics_count.csv"
	JSONFile         = "report.json"
	SweepFile        = "sweep.csv"
)

// WriteDir writes both matrices and both metric tables of res as CSV into
// dir, creating it if needed. It returns the paths written.
func WriteDir(dir string, res *tytalb.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{MatrixTimeFile, func(w io.Writer) error { return WriteMatrix(w, res.Time.Matrix) }},
		{MatrixCountFile, func(w io.Writer) error { return WriteMatrix(w, res.Count.Matrix) }},
		{MetricsTimeFile, func(w io.Writer) error { return WriteMetrics(w, res.Time.Metrics) }},
		{MetricsCountFile, func(w io.Writer) error { return WriteMetrics(w, res.Count.Metrics) }},
	}

	var paths []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeFile(path, f.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// bases pairs each basis name with its part of res, in output order.
func bases(res *tytalb.Result) []struct {
	name  string
	basis tytalb.Basis
} {
	return []struct {
		name  string
		basis tytalb.Basis
	}{
		{"time", res.Time},
		{"count", res.Count},
	}
}

func metricsFor(b tytalb.Basis, label string) confusion.Metrics {
	m, _ := confusion.Find(b.Metrics, label)
	return m
}
