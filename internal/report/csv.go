package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Vogelwarte/tytalb/confusion"
	"github.com/Vogelwarte/tytalb/internal/sweep"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteMatrix writes m as CSV: a header row of predicted labels after an
// empty corner cell, then one row per ground-truth label.
func WriteMatrix(w io.Writer, m *confusion.Matrix) error {
	cw := csv.NewWriter(w)
	labels := m.Labels()

	header := append([]string{""}, labels...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing matrix header: %w", err)
	}
	for i, truth := range labels {
		row := make([]string, 0, len(labels)+1)
		row = append(row, truth)
		for j := range labels {
			row = append(row, formatFloat(m.At(i, j)))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing matrix row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetrics writes one CSV row of metrics per label.
func WriteMetrics(w io.Writer, ms []confusion.Metrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"", "precision", "recall", "f1", "false_positive", "false_negative"}); err != nil {
		return fmt.Errorf("writing metrics header: %w", err)
	}
	for _, m := range ms {
		row := []string{
			m.Label,
			formatFloat(m.Precision),
			formatFloat(m.Recall),
			formatFloat(m.F1),
			formatFloat(m.FalsePositive),
			formatFloat(m.FalseNegative),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing metrics row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSweep writes one CSV row per threshold in the order given.
func WriteSweep(w io.Writer, results []sweep.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"threshold", "kept", "precision", "recall", "f1", "score"}); err != nil {
		return fmt.Errorf("writing sweep header: %w", err)
	}
	for _, r := range results {
		row := []string{
			formatFloat(r.Threshold),
			strconv.Itoa(r.Kept),
			formatFloat(r.Metrics.Precision),
			formatFloat(r.Metrics.Recall),
			formatFloat(r.Metrics.F1),
			formatFloat(r.Score),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing sweep row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
