package annotation

import (
	"github.com/Vogelwarte/tytalb/segment"
)

// WindowOptions selects which ends of the comparison window are trimmed.
type WindowOptions struct {
	// LateStart drops predictions ending at or before the first ground-truth
	// start of the recording.
	LateStart bool
	// EarlyStop drops predictions starting at or after the last ground-truth
	// end of the recording.
	EarlyStop bool
	// Background segments never define the window.
	Background string
}

// Window returns the span [first start, last end) of the non-background
// segments of segs. ok is false when there are none.
func Window(segs []segment.Segment, background string) (start, end float64, ok bool) {
	for _, seg := range segs {
		if seg.Label == background {
			continue
		}
		if !ok {
			start, end, ok = seg.Start, seg.End, true
			continue
		}
		start = min(start, seg.Start)
		end = max(end, seg.End)
	}
	return start, end, ok
}

// Trim restricts the predictions of tv to the window spanned by the ground
// truth of the same recording. The window is always taken from gt; gt itself
// is never trimmed. Recordings without ground-truth segments are left as they
// are. It returns the trimmed copy and the number of segments dropped.
func Trim(gt, tv Source, opts WindowOptions) (*Set, int) {
	if opts.Background == "" {
		opts.Background = DefaultBackground
	}
	out := NewSet()
	var dropped int
	for _, id := range tv.Recordings() {
		segs, _ := tv.Segments(id)
		truth, _ := gt.Segments(id)
		start, end, ok := Window(truth, opts.Background)
		if !ok || (!opts.LateStart && !opts.EarlyStop) {
			out.Add(id, segs...)
			continue
		}

		kept := make([]segment.Segment, 0, len(segs))
		for _, seg := range segs {
			if opts.LateStart && seg.End <= start {
				dropped++
				continue
			}
			if opts.EarlyStop && seg.Start >= end {
				dropped++
				continue
			}
			kept = append(kept, seg)
		}
		out.Add(id, kept...)
	}
	return out, dropped
}
