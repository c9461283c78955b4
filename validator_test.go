package tytalb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Vogelwarte/tytalb/annotation"
	"github.com/Vogelwarte/tytalb/reconcile"
	"github.com/Vogelwarte/tytalb/segment"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func set(recs map[string][]segment.Segment) *annotation.Set {
	s := annotation.NewSet()
	for id, segs := range recs {
		s.Add(id, segs...)
	}
	s.Sort()
	return s
}

func mustValidate(t *testing.T, gt, tv annotation.Source, opts ...Option) *Result {
	t.Helper()
	v, err := New(append([]Option{WithLogger(quietLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	res, err := v.Validate(context.Background(), gt, tv)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	return res
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestValidate_NoOverlap(t *testing.T) {
	gt := set(map[string][]segment.Segment{"r": {segment.New(0, 3, "A")}})
	tv := set(map[string][]segment.Segment{"r": nil})

	res := mustValidate(t, gt, tv)
	if got := res.Time.Matrix.Get("A", "Noise"); got != 3 {
		t.Errorf("time[A,Noise] = %v, want 3", got)
	}
	if got := res.Count.Matrix.Get("A", "Noise"); got != 1 {
		t.Errorf("count[A,Noise] = %v, want 1", got)
	}
}

func TestValidate_ExactMatch(t *testing.T) {
	gt := set(map[string][]segment.Segment{"r": {segment.New(0, 3, "A")}})
	tv := set(map[string][]segment.Segment{"r": {segment.New(0, 3, "A")}})

	res := mustValidate(t, gt, tv)
	if got := res.Time.Matrix.Get("A", "A"); got != 3 {
		t.Errorf("time[A,A] = %v, want 3", got)
	}
	if got := res.Count.Matrix.Get("A", "A"); got != 1 {
		t.Errorf("count[A,A] = %v, want 1", got)
	}
	for _, l := range res.Labels {
		for _, p := range res.Labels {
			if l == "A" && p == "A" {
				continue
			}
			if got := res.Time.Matrix.Get(l, p); got != 0 {
				t.Errorf("time[%s,%s] = %v, want 0", l, p, got)
			}
		}
	}
	for _, b := range []Basis{res.Time, res.Count} {
		for _, m := range b.Metrics {
			if m.Label != "A" {
				continue
			}
			if m.Precision != 1 || m.Recall != 1 || m.F1 != 1 {
				t.Errorf("metrics for A = %+v, want all 1", m)
			}
		}
	}
}

func TestValidate_MultipleOverlappingPredictions(t *testing.T) {
	gt := set(map[string][]segment.Segment{"r": {segment.New(0, 3, "A")}})
	tv := set(map[string][]segment.Segment{"r": {segment.New(0, 1, "B"), segment.New(1, 3, "C")}})

	res := mustValidate(t, gt, tv)
	tests := []struct {
		truth, pred string
		time, count float64
	}{
		{"A", "B", 1, 1},
		{"A", "C", 2, 1},
		{"A", "Noise", 0, 0},
		{"Noise", "B", 0, 0},
		{"Noise", "C", 0, 0},
	}
	for _, tt := range tests {
		if got := res.Time.Matrix.Get(tt.truth, tt.pred); got != tt.time {
			t.Errorf("time[%s,%s] = %v, want %v", tt.truth, tt.pred, got, tt.time)
		}
		if got := res.Count.Matrix.Get(tt.truth, tt.pred); got != tt.count {
			t.Errorf("count[%s,%s] = %v, want %v", tt.truth, tt.pred, got, tt.count)
		}
	}
}

func TestValidate_MissingRecording(t *testing.T) {
	gt := set(map[string][]segment.Segment{"a": {segment.New(0, 1, "A")}})
	tv := set(map[string][]segment.Segment{
		"a": {segment.New(0, 1, "A")},
		"b": {segment.New(0, 2, "B")},
	})

	res := mustValidate(t, gt, tv)
	if got := res.Time.Matrix.Get("Noise", "B"); got != 2 {
		t.Errorf("time[Noise,B] = %v, want 2", got)
	}
	if got := res.Count.Matrix.Get("Noise", "B"); got != 1 {
		t.Errorf("count[Noise,B] = %v, want 1", got)
	}
	if res.Recordings != 2 {
		t.Errorf("Recordings = %d, want 2", res.Recordings)
	}
}

func TestValidate_BinaryCollapse(t *testing.T) {
	gt := set(map[string][]segment.Segment{"r": {
		segment.New(0, 2, "A"),
		segment.New(5, 6, "C"),
	}})
	tv := set(map[string][]segment.Segment{"r": {
		segment.New(0, 2, "B"),
		segment.New(5, 6, "C"),
	}})

	res := mustValidate(t, gt, tv, WithBinary("A"))
	if len(res.Labels) != 2 || res.Labels[0] != "Noise" || res.Labels[1] != "Positive" {
		t.Fatalf("Labels = %v, want [Noise Positive]", res.Labels)
	}
	// B and C both become background, so the only scored event is the miss
	// of A.
	if got := res.Time.Matrix.Get("Positive", "Noise"); got != 2 {
		t.Errorf("time[Positive,Noise] = %v, want 2", got)
	}
	if got := res.Time.Matrix.Get("Noise", "Noise"); got != 0 {
		t.Errorf("time[Noise,Noise] = %v, want 0", got)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
}

func TestValidate_BinaryNoPositiveWarns(t *testing.T) {
	gt := set(map[string][]segment.Segment{"r": {segment.New(0, 2, "A")}})
	tv := set(map[string][]segment.Segment{"r": {segment.New(0, 2, "A")}})

	res := mustValidate(t, gt, tv, WithBinary("Z"))
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrNoPositive) {
		t.Errorf("Warnings = %v, want ErrNoPositive", res.Warnings)
	}
}

func TestValidate_InputsNotModified(t *testing.T) {
	gt := set(map[string][]segment.Segment{"r": {segment.New(0, 2, "A")}})
	tv := set(map[string][]segment.Segment{"r": {segment.New(1, 3, "C")}})

	_ = mustValidate(t, gt, tv, WithBinary("A"))

	segs, _ := gt.Segments("r")
	if segs[0].Label != "A" {
		t.Errorf("ground truth label = %q, want A", segs[0].Label)
	}
	segs, _ = tv.Segments("r")
	if segs[0].Label != "C" {
		t.Errorf("prediction label = %q, want C", segs[0].Label)
	}
}

func TestValidate_LateStart(t *testing.T) {
	gt := set(map[string][]segment.Segment{"r": {segment.New(10, 12, "A")}})
	tv := set(map[string][]segment.Segment{"r": {
		segment.New(0, 2, "A"),
		segment.New(10, 12, "A"),
	}})

	without := mustValidate(t, gt, tv)
	if got := without.Time.Matrix.Get("Noise", "A"); got != 2 {
		t.Fatalf("without trimming time[Noise,A] = %v, want 2", got)
	}

	with := mustValidate(t, gt, tv, WithLateStart(true))
	if got := with.Time.Matrix.Get("Noise", "A"); got != 0 {
		t.Errorf("time[Noise,A] = %v, want 0", got)
	}
	if got := with.Count.Matrix.Get("Noise", "A"); got != 0 {
		t.Errorf("count[Noise,A] = %v, want 0", got)
	}
	if with.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", with.Dropped)
	}
}

func TestValidate_EarlyStop(t *testing.T) {
	gt := set(map[string][]segment.Segment{"r": {segment.New(0, 2, "A")}})
	tv := set(map[string][]segment.Segment{"r": {
		segment.New(0, 2, "A"),
		segment.New(2, 4, "A"),
	}})

	res := mustValidate(t, gt, tv, WithEarlyStop(true))
	if got := res.Time.Matrix.Get("Noise", "A"); got != 0 {
		t.Errorf("time[Noise,A] = %v, want 0", got)
	}
	if got := res.Time.Matrix.Get("A", "A"); got != 2 {
		t.Errorf("time[A,A] = %v, want 2", got)
	}
}

func TestValidate_Partition(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	labels := []string{"A", "B", "C"}

	gt := annotation.NewSet()
	tv := annotation.NewSet()
	want := make(map[string]float64)
	for rec := 0; rec < 5; rec++ {
		id := fmt.Sprintf("rec%d", rec)
		var truth, pred []segment.Segment
		for i := 0; i < 20; i++ {
			start := r.Float64() * 100
			g := segment.New(start, start+0.1+r.Float64()*5, labels[r.IntN(len(labels))])
			truth = append(truth, g)
			want[g.Label] += g.Duration()

			start = r.Float64() * 100
			pred = append(pred, segment.New(start, start+0.1+r.Float64()*5, labels[r.IntN(len(labels))]))
		}
		gt.Add(id, truth...)
		tv.Add(id, pred...)
	}
	gt.Sort()
	tv.Sort()

	// A row sums to the labelled duration only when the predictions
	// overlapping one segment are disjoint, so merge them first.
	flat := annotation.Map(tv, func(s segment.Segment) segment.Segment { return s.WithLabel("P") })
	merged := annotation.NewSet()
	for _, id := range flat.Recordings() {
		segs, _ := flat.Segments(id)
		for _, s := range segment.Merge(segs) {
			merged.Add(id, s.WithLabel("P"))
		}
	}

	res := mustValidate(t, gt, merged)
	for _, l := range labels {
		i, _ := indexOf(res.Labels, l)
		var row float64
		for j := range res.Labels {
			row += res.Time.Matrix.At(i, j)
		}
		if !approx(row, want[l]) {
			t.Errorf("row sum for %s = %v, want %v", l, row, want[l])
		}
	}
}

func indexOf(labels []string, l string) (int, bool) {
	for i, x := range labels {
		if x == l {
			return i, true
		}
	}
	return -1, false
}

func TestValidate_Deterministic(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	gt := annotation.NewSet()
	tv := annotation.NewSet()
	for rec := 0; rec < 40; rec++ {
		id := fmt.Sprintf("rec%02d", rec)
		for i := 0; i < 30; i++ {
			start := r.Float64() * 60
			gt.Add(id, segment.New(start, start+r.Float64()*3+0.01, fmt.Sprintf("L%d", r.IntN(4))))
			start = r.Float64() * 60
			tv.Add(id, segment.New(start, start+r.Float64()*3+0.01, fmt.Sprintf("L%d", r.IntN(4))))
		}
	}
	gt.Sort()
	tv.Sort()

	first := mustValidate(t, gt, tv, WithWorkers(1))
	for _, workers := range []int{2, 8, 32} {
		for run := 0; run < 3; run++ {
			got := mustValidate(t, gt, tv, WithWorkers(workers))
			if !got.Time.Matrix.Equal(first.Time.Matrix) {
				t.Errorf("workers=%d run=%d: time matrix differs", workers, run)
			}
			if !got.Count.Matrix.Equal(first.Count.Matrix) {
				t.Errorf("workers=%d run=%d: count matrix differs", workers, run)
			}
		}
	}
}

func TestValidate_Integrity(t *testing.T) {
	gt := set(map[string][]segment.Segment{
		"a": {segment.New(0, 1, "A")},
		"b": {{Start: 3, End: 2, Label: "A"}},
		"c": {{Start: -1, End: 2, Label: "A"}},
	})
	tv := set(map[string][]segment.Segment{"a": {segment.New(0, 1, "A")}})

	v, err := New(WithLogger(quietLogger()), WithWorkers(4))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	res, err := v.Validate(context.Background(), gt, tv)
	if res != nil {
		t.Error("expected nil result on integrity error")
	}
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got: %v", err)
	}
	var ie *reconcile.IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *reconcile.IntegrityError, got %T", err)
	}
	if ie.Recording != "b" {
		t.Errorf("Recording = %q, want b", ie.Recording)
	}
}

func TestValidate_IntegrityOutsideWindow(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		tv   []segment.Segment
	}{
		{"late start", []Option{WithLateStart(true)}, []segment.Segment{segment.New(4, 6, "A"), {Start: 3, End: 1, Label: "A"}}},
		{"early stop", []Option{WithEarlyStop(true)}, []segment.Segment{segment.New(4, 6, "A"), {Start: 9, End: 8, Label: "A"}}},
		{"both", []Option{WithLateStart(true), WithEarlyStop(true)}, []segment.Segment{segment.New(4, 6, "A"), {Start: 3, End: 1, Label: "A"}}},
		{"neither", nil, []segment.Segment{segment.New(4, 6, "A"), {Start: 3, End: 1, Label: "A"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt := set(map[string][]segment.Segment{"r": {segment.New(4, 6, "A")}})
			tv := set(map[string][]segment.Segment{"r": tt.tv})

			v, err := New(append(tt.opts, WithLogger(quietLogger()))...)
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			_, err = v.Validate(context.Background(), gt, tv)
			if !errors.Is(err, ErrIntegrity) {
				t.Fatalf("expected ErrIntegrity, got: %v", err)
			}
			var ie *reconcile.IntegrityError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *reconcile.IntegrityError, got %T", err)
			}
			if ie.Recording != "r" || ie.Side != reconcile.ToValidate {
				t.Errorf("error at (%q, %s), want (r, to validate)", ie.Recording, ie.Side)
			}
		})
	}
}

func TestNew_BinaryWithoutPositives(t *testing.T) {
	_, err := New(WithBinary())
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got: %v", err)
	}
	if !errors.Is(err, annotation.ErrNoPositiveLabels) {
		t.Errorf("expected ErrNoPositiveLabels, got: %v", err)
	}
}

func TestValidate_AmbiguousCollapse(t *testing.T) {
	gt := set(map[string][]segment.Segment{"r": {segment.New(0, 1, "A"), segment.New(2, 3, "B")}})
	tv := set(map[string][]segment.Segment{"r": nil})

	v, err := New(WithLogger(quietLogger()), WithPositiveLabels("A"))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	_, err = v.Validate(context.Background(), gt, tv)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got: %v", err)
	}
	if !errors.Is(err, annotation.ErrAmbiguousCollapse) {
		t.Errorf("expected ErrAmbiguousCollapse, got: %v", err)
	}
}

func TestValidate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := New(WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	_, err = v.Validate(ctx, annotation.NewSet(), annotation.NewSet())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestValidate_NilSource(t *testing.T) {
	v, err := New(WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := v.Validate(context.Background(), nil, annotation.NewSet()); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got: %v", err)
	}
}
