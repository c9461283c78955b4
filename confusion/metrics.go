package confusion

// Metrics holds the scores of one label derived from a matrix.
type Metrics struct {
	Label         string
	TruePositive  float64
	FalsePositive float64
	FalseNegative float64
	Precision     float64
	Recall        float64
	F1            float64
}

// Evaluate derives per-label metrics from m, in matrix label order.
//
// For label i, TP is the diagonal cell, FP the rest of column i and FN the
// rest of row i. Ratios with a zero denominator are 0.
func Evaluate(m *Matrix) []Metrics {
	out := make([]Metrics, m.Len())
	for i, label := range m.Labels() {
		tp := m.At(i, i)
		var fp, fn float64
		for k := range m.Labels() {
			if k == i {
				continue
			}
			fp += m.At(k, i)
			fn += m.At(i, k)
		}

		s := Metrics{
			Label:         label,
			TruePositive:  tp,
			FalsePositive: fp,
			FalseNegative: fn,
		}
		if tp+fp > 0 {
			s.Precision = tp / (tp + fp)
		}
		if tp+fn > 0 {
			s.Recall = tp / (tp + fn)
		}
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		out[i] = s
	}
	return out
}

// Find returns the metrics for label.
func Find(ms []Metrics, label string) (Metrics, bool) {
	for _, m := range ms {
		if m.Label == label {
			return m, true
		}
	}
	return Metrics{}, false
}
