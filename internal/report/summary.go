package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Vogelwarte/tytalb"
	"github.com/Vogelwarte/tytalb/internal/sweep"
)

var (
	accent      = lipgloss.Color("#00ff9f")
	dim         = lipgloss.Color("#6e7681")
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(dim)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func pct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

// Summary writes a per-label metrics table for both bases of res.
func Summary(w io.Writer, res *tytalb.Result) error {
	t := newTable("label", "precision (t)", "recall (t)", "f1 (t)", "precision (n)", "recall (n)", "f1 (n)")
	for _, label := range res.Labels {
		tm := metricsFor(res.Time, label)
		cm := metricsFor(res.Count, label)
		t.Row(label,
			pct(tm.Precision), pct(tm.Recall), pct(tm.F1),
			pct(cm.Precision), pct(cm.Recall), pct(cm.F1),
		)
	}

	title := titleStyle.Render(fmt.Sprintf("%d recordings, %d labels", res.Recordings, len(res.Labels)))
	if _, err := fmt.Fprintf(w, "%s\n%s\n", title, t.String()); err != nil {
		return err
	}
	for _, warn := range res.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %v\n", warn); err != nil {
			return err
		}
	}
	return nil
}

// SweepSummary writes one table row per threshold, in the order given.
func SweepSummary(w io.Writer, target string, results []sweep.Result) error {
	t := newTable("threshold", "kept", "precision", "recall", "f1", "score")
	for _, r := range results {
		t.Row(
			strconv.FormatFloat(r.Threshold, 'f', 3, 64),
			strconv.Itoa(r.Kept),
			pct(r.Metrics.Precision),
			pct(r.Metrics.Recall),
			pct(r.Metrics.F1),
			strconv.FormatFloat(r.Score, 'f', 4, 64),
		)
	}
	title := titleStyle.Render("thresholds for " + target)
	_, err := fmt.Fprintf(w, "%s\n%s\n", title, t.String())
	return err
}
