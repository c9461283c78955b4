package report

import (
	"fmt"
	"os"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Vogelwarte/tytalb"
	"github.com/Vogelwarte/tytalb/confusion"
)

// Struct converts res and meta to a protobuf Struct, the document written
// as report.json.
func Struct(res *tytalb.Result, meta Meta) (*structpb.Struct, error) {
	labels := make([]any, len(res.Labels))
	for i, l := range res.Labels {
		labels[i] = l
	}
	warnings := make([]any, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = w.Error()
	}
	options := meta.Options
	if options == nil {
		options = map[string]any{}
	}

	doc := map[string]any{
		"run_id":       meta.RunID,
		"created":      meta.Created.Format(time.RFC3339),
		"ground_truth": meta.GroundTruth,
		"to_validate":  meta.ToValidate,
		"options":      options,
		"labels":       labels,
		"recordings":   res.Recordings,
		"dropped":      res.Dropped,
		"warnings":     warnings,
	}
	for _, b := range bases(res) {
		doc[b.name] = map[string]any{
			"matrix":  matrixValue(b.basis.Matrix),
			"metrics": metricsValue(b.basis.Metrics),
		}
	}

	st, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, fmt.Errorf("building report: %w", err)
	}
	return st, nil
}

func matrixValue(m *confusion.Matrix) []any {
	rows := m.Rows()
	out := make([]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

func metricsValue(ms []confusion.Metrics) []any {
	out := make([]any, len(ms))
	for i, m := range ms {
		out[i] = map[string]any{
			"label":          m.Label,
			"true_positive":  m.TruePositive,
			"false_positive": m.FalsePositive,
			"false_negative": m.FalseNegative,
			"precision":      m.Precision,
			"recall":         m.Recall,
			"f1":             m.F1,
		}
	}
	return out
}

// JSON renders the report as indented JSON.
func JSON(res *tytalb.Result, meta Meta) ([]byte, error) {
	st, err := Struct(res, meta)
	if err != nil {
		return nil, err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return data, nil
}

// WriteJSON writes the report to path.
func WriteJSON(path string, res *tytalb.Result, meta Meta) error {
	data, err := JSON(res, meta)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
