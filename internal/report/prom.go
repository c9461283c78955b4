package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Vogelwarte/tytalb"
)

// gauges are the metrics exported for one result. They are registered on a
// fresh registry per call, never the default one.
type gauges struct {
	precision     *prometheus.GaugeVec
	recall        *prometheus.GaugeVec
	f1            *prometheus.GaugeVec
	falsePositive *prometheus.GaugeVec
	falseNegative *prometheus.GaugeVec
	confusion     *prometheus.GaugeVec
	recordings    prometheus.Gauge
	info          *prometheus.GaugeVec
}

func newGauges() *gauges {
	vec := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "tytalb", Name: name, Help: help}, labels)
	}
	return &gauges{
		precision:     vec("precision", "Precision per label.", "basis", "label"),
		recall:        vec("recall", "Recall per label.", "basis", "label"),
		f1:            vec("f1", "F1 score per label.", "basis", "label"),
		falsePositive: vec("false_positive", "False positives per label, in seconds or events.", "basis", "label"),
		falseNegative: vec("false_negative", "False negatives per label, in seconds or events.", "basis", "label"),
		confusion:     vec("confusion", "Confusion matrix cell.", "basis", "truth", "predicted"),
		recordings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tytalb",
			Name:      "recordings",
			Help:      "Recordings known to either side.",
		}),
		info: vec("run_info", "Run metadata, always 1.", "run_id"),
	}
}

func (g *gauges) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		g.precision, g.recall, g.f1, g.falsePositive, g.falseNegative,
		g.confusion, g.recordings, g.info,
	}
}

// Registry returns a registry holding the metrics of res.
func Registry(res *tytalb.Result, meta Meta) (*prometheus.Registry, error) {
	g := newGauges()
	reg := prometheus.NewRegistry()
	for _, c := range g.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	for _, b := range bases(res) {
		for _, m := range b.basis.Metrics {
			g.precision.WithLabelValues(b.name, m.Label).Set(m.Precision)
			g.recall.WithLabelValues(b.name, m.Label).Set(m.Recall)
			g.f1.WithLabelValues(b.name, m.Label).Set(m.F1)
			g.falsePositive.WithLabelValues(b.name, m.Label).Set(m.FalsePositive)
			g.falseNegative.WithLabelValues(b.name, m.Label).Set(m.FalseNegative)
		}
		labels := b.basis.Matrix.Labels()
		for i, truth := range labels {
			for j, pred := range labels {
				g.confusion.WithLabelValues(b.name, truth, pred).Set(b.basis.Matrix.At(i, j))
			}
		}
	}
	g.recordings.Set(float64(res.Recordings))
	g.info.WithLabelValues(meta.RunID).Set(1)
	return reg, nil
}

// WriteTextfile writes the metrics of res to path in the Prometheus text
// format, for the node exporter's textfile collector.
func WriteTextfile(path string, res *tytalb.Result, meta Meta) error {
	reg, err := Registry(res, meta)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
