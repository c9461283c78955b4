package segment

import (
	"slices"
	"sync"
)

// Tree is a static interval tree over a fixed set of segments.
//
// The segments are kept sorted by start; the tree is an implicit balanced
// binary tree over that array where every node stores the largest end time of
// its subtree. The index is built on the first query.
type Tree struct {
	items  []Segment
	maxEnd []float64
	once   sync.Once
}

// NewTree returns a tree over a copy of segs.
func NewTree(segs []Segment) *Tree {
	items := slices.Clone(segs)
	SortByStart(items)
	return &Tree{items: items}
}

// Len returns the number of segments in the tree.
func (t *Tree) Len() int {
	return len(t.items)
}

// Segments returns the indexed segments ordered by start. The returned slice
// must not be modified.
func (t *Tree) Segments() []Segment {
	return t.items
}

// Query returns every segment overlapping the half-open range [start, end),
// ordered by start. A segment beginning exactly at end is not returned.
func (t *Tree) Query(start, end float64) []Segment {
	return t.AppendQuery(nil, start, end)
}

// AppendQuery is like Query but appends the matches to dst.
func (t *Tree) AppendQuery(dst []Segment, start, end float64) []Segment {
	if len(t.items) == 0 || end <= start {
		return dst
	}
	t.once.Do(t.build)
	return t.query(dst, 0, len(t.items), start, end)
}

func (t *Tree) build() {
	t.maxEnd = make([]float64, len(t.items))
	t.buildRange(0, len(t.items))
}

func (t *Tree) buildRange(lo, hi int) float64 {
	mid := int(uint(lo+hi) >> 1)
	m := t.items[mid].End
	if lo < mid {
		m = max(m, t.buildRange(lo, mid))
	}
	if mid+1 < hi {
		m = max(m, t.buildRange(mid+1, hi))
	}
	t.maxEnd[mid] = m
	return m
}

func (t *Tree) query(dst []Segment, lo, hi int, start, end float64) []Segment {
	if lo >= hi {
		return dst
	}
	mid := int(uint(lo+hi) >> 1)
	if t.maxEnd[mid] <= start {
		// nothing in this subtree reaches past start
		return dst
	}
	dst = t.query(dst, lo, mid, start, end)
	s := t.items[mid]
	if s.Start >= end {
		// right subtree starts even later
		return dst
	}
	if s.End > start {
		dst = append(dst, s)
	}
	return t.query(dst, mid+1, hi, start, end)
}

// SortByStart orders segs by start, then end, then label.
func SortByStart(segs []Segment) {
	slices.SortStableFunc(segs, compare)
}

func compare(a, b Segment) int {
	switch {
	case a.Start < b.Start:
		return -1
	case a.Start > b.Start:
		return 1
	case a.End < b.End:
		return -1
	case a.End > b.End:
		return 1
	case a.Label < b.Label:
		return -1
	case a.Label > b.Label:
		return 1
	}
	return 0
}
