// Package annotation holds per-recording collections of labelled segments and
// the label-space and window transformations applied to them before scoring.
package annotation

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/Vogelwarte/tytalb/segment"
)

// Source is anything that can list recordings and their segments. Parsers for
// every table format produce a *Set, but the scoring code only needs this.
type Source interface {
	// Recordings returns the recording identifiers in sorted order.
	Recordings() []string
	// Segments returns the segments of a recording ordered by start, and
	// whether the recording is known at all.
	Segments(id string) ([]segment.Segment, bool)
}

// Set maps recording identifiers to their segments.
type Set struct {
	recordings map[string][]segment.Segment
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{recordings: make(map[string][]segment.Segment)}
}

// Add appends segments to a recording, creating it if needed. A recording
// added with no segments is still known to the set.
func (s *Set) Add(id string, segs ...segment.Segment) {
	s.recordings[id] = append(s.recordings[id], segs...)
}

// Sort orders every recording's segments by start.
func (s *Set) Sort() {
	for _, segs := range s.recordings {
		segment.SortByStart(segs)
	}
}

// Recordings implements Source.
func (s *Set) Recordings() []string {
	ids := lo.Keys(s.recordings)
	slices.Sort(ids)
	return ids
}

// Segments implements Source.
func (s *Set) Segments(id string) ([]segment.Segment, bool) {
	segs, ok := s.recordings[id]
	return segs, ok
}

// Len returns the number of recordings.
func (s *Set) Len() int {
	return len(s.recordings)
}

// NumSegments returns the number of segments across all recordings.
func (s *Set) NumSegments() int {
	return lo.SumBy(lo.Values(s.recordings), func(segs []segment.Segment) int { return len(segs) })
}

// Map returns a new set with fn applied to every segment of src. src is not
// modified.
func Map(src Source, fn func(segment.Segment) segment.Segment) *Set {
	out := NewSet()
	for _, id := range src.Recordings() {
		segs, _ := src.Segments(id)
		mapped := make([]segment.Segment, len(segs))
		for i, seg := range segs {
			mapped[i] = fn(seg)
		}
		segment.SortByStart(mapped)
		out.recordings[id] = mapped
	}
	return out
}

// Filter returns a new set holding only the segments of src for which keep
// returns true. Recordings left empty stay in the set.
func Filter(src Source, keep func(segment.Segment) bool) *Set {
	out := NewSet()
	for _, id := range src.Recordings() {
		segs, _ := src.Segments(id)
		out.recordings[id] = lo.Filter(segs, func(seg segment.Segment, _ int) bool { return keep(seg) })
	}
	return out
}

// Union returns the sorted identifiers known to any of the sources.
func Union(srcs ...Source) []string {
	var ids []string
	for _, src := range srcs {
		ids = append(ids, src.Recordings()...)
	}
	ids = lo.Uniq(ids)
	slices.Sort(ids)
	return ids
}

// RecordingID normalises a path relative to an annotation root into a
// recording identifier: forward slashes, and the base name cut at its first
// dot so that "a/b.wav", "a/b.flac" and "a/b.selections.txt" all yield "a/b".
func RecordingID(rel string) string {
	rel = filepath.ToSlash(filepath.Clean(rel))
	dir, base := path.Split(rel)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return strings.TrimPrefix(dir+base, "./")
}
