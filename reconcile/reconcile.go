// Package reconcile aligns the ground-truth and predicted segments of one
// recording and attributes their time and counts to confusion-matrix cells.
package reconcile

import (
	"github.com/Vogelwarte/tytalb/confusion"
	"github.com/Vogelwarte/tytalb/segment"
)

// epsilon absorbs rounding left over when subtracting covered time from a
// segment duration. Residuals at or below it are not charged.
const epsilon = 1e-9

// Input is one recording as seen from both sides. A side that does not know
// the recording at all is marked absent; a side that knows it with no
// segments is present but empty.
type Input struct {
	Recording     string
	GroundTruth   []segment.Segment
	ToValidate    []segment.Segment
	HasTruth      bool
	HasPrediction bool
}

// Reconciler turns recordings into confusion contributions.
type Reconciler struct {
	// Background is the label for "nothing annotated". Segments carrying it
	// are ignored; uncovered time is charged against it.
	Background string
}

// Reconcile returns the contributions of in. Every segment is checked before
// anything is produced, so a malformed segment yields an *IntegrityError and
// no contributions. ws may be nil.
func (r Reconciler) Reconcile(in Input, ws *Workspace) ([]confusion.Contribution, error) {
	if ws == nil {
		ws = NewWorkspace()
	}
	ws.reset()

	gt, err := r.keep(ws.truth[:0], in.Recording, GroundTruth, in.GroundTruth)
	if err != nil {
		return nil, err
	}
	ws.truth = gt
	tv, err := r.keep(ws.pred[:0], in.Recording, ToValidate, in.ToValidate)
	if err != nil {
		return nil, err
	}
	ws.pred = tv

	var out []confusion.Contribution
	switch {
	case !in.HasTruth && !in.HasPrediction:
		return nil, nil
	case !in.HasTruth:
		for _, v := range tv {
			out = append(out, confusion.Contribution{Truth: r.Background, Predicted: v.Label, Time: v.Duration(), Count: 1})
		}
		return out, nil
	case !in.HasPrediction:
		for _, g := range gt {
			out = append(out, confusion.Contribution{Truth: g.Label, Predicted: r.Background, Time: g.Duration(), Count: 1})
		}
		return out, nil
	}

	gtTree := segment.NewTree(gt)
	tvTree := segment.NewTree(tv)

	// Ground-truth pass: every overlap is a (truth, predicted) pair, and the
	// part of g no prediction covers is a miss.
	for _, g := range gtTree.Segments() {
		ws.hits = tvTree.AppendQuery(ws.hits[:0], g.Start, g.End)
		if len(ws.hits) == 0 {
			out = append(out, confusion.Contribution{Truth: g.Label, Predicted: r.Background, Time: g.Duration(), Count: 1})
			continue
		}
		for _, v := range ws.hits {
			out = append(out, confusion.Contribution{Truth: g.Label, Predicted: v.Label, Time: segment.Overlap(g, v), Count: 1})
		}
		ws.spans = segment.AppendMerge(ws.spans[:0], ws.hits)
		if rest := g.Duration() - segment.Covered(g, ws.spans); rest > epsilon {
			out = append(out, confusion.Contribution{Truth: g.Label, Predicted: r.Background, Time: rest})
		}
	}

	// Prediction pass: overlapping pairs were already counted above, only the
	// part of v no ground truth covers is a false alarm.
	for _, v := range tvTree.Segments() {
		ws.hits = gtTree.AppendQuery(ws.hits[:0], v.Start, v.End)
		if len(ws.hits) == 0 {
			out = append(out, confusion.Contribution{Truth: r.Background, Predicted: v.Label, Time: v.Duration(), Count: 1})
			continue
		}
		ws.spans = segment.AppendMerge(ws.spans[:0], ws.hits)
		if rest := v.Duration() - segment.Covered(v, ws.spans); rest > epsilon {
			out = append(out, confusion.Contribution{Truth: r.Background, Predicted: v.Label, Time: rest})
		}
	}
	return out, nil
}

// keep validates segs and appends the non-background ones to dst.
func (r Reconciler) keep(dst []segment.Segment, rec string, side Side, segs []segment.Segment) ([]segment.Segment, error) {
	for _, s := range segs {
		if err := s.Validate(); err != nil {
			return dst, &IntegrityError{Recording: rec, Side: side, Segment: s, Err: err}
		}
		if s.Label == r.Background {
			continue
		}
		dst = append(dst, s)
	}
	return dst, nil
}
