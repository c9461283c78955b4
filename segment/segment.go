// Package segment provides labelled half-open time intervals and an overlap
// index over them.
package segment

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalid indicates a segment whose bounds do not describe a non-empty
// interval starting at or after zero.
var ErrInvalid = errors.New("segment: invalid bounds")

// Segment is a labelled half-open interval [Start, End) in seconds.
//
// Segments are plain values. Relabelling produces a copy, so a segment held by
// one annotation set is never changed through another.
type Segment struct {
	Start      float64
	End        float64
	Label      string
	Confidence float64 // 1 when the source table carries no confidence
	Line       int     // source table line, 0 when unknown
}

// New returns a segment with full confidence.
func New(start, end float64, label string) Segment {
	return Segment{Start: start, End: end, Label: label, Confidence: 1}
}

// FromDuration returns a segment starting at start and lasting dur seconds.
func FromDuration(start, dur float64, label string) Segment {
	return New(start, start+dur, label)
}

// Duration returns End - Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// WithLabel returns a copy of s carrying label.
func (s Segment) WithLabel(label string) Segment {
	s.Label = label
	return s
}

// Validate reports whether s has finite bounds with 0 <= Start < End.
func (s Segment) Validate() error {
	switch {
	case math.IsNaN(s.Start) || math.IsNaN(s.End) || math.IsInf(s.Start, 0) || math.IsInf(s.End, 0):
		return fmt.Errorf("%w: non-finite bounds in %s", ErrInvalid, s)
	case s.Start < 0:
		return fmt.Errorf("%w: negative start in %s", ErrInvalid, s)
	case s.End <= s.Start:
		return fmt.Errorf("%w: end not after start in %s", ErrInvalid, s)
	}
	return nil
}

// Overlaps reports whether s and o share any time. Segments that only touch
// (s.End == o.Start) do not overlap.
func (s Segment) Overlaps(o Segment) bool {
	return s.Start < o.End && o.Start < s.End
}

// String formats s for logs and error messages.
func (s Segment) String() string {
	if s.Line > 0 {
		return fmt.Sprintf("%q [%.3f, %.3f) line %d", s.Label, s.Start, s.End, s.Line)
	}
	return fmt.Sprintf("%q [%.3f, %.3f)", s.Label, s.Start, s.End)
}

// Overlap returns the time shared by a and b, or 0 when they are disjoint.
func Overlap(a, b Segment) float64 {
	return math.Max(0, math.Min(a.End, b.End)-math.Max(a.Start, b.Start))
}
