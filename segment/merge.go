package segment

import "slices"

// Merge returns the minimal set of contiguous spans covering segs, ordered by
// start. Overlapping or touching segments collapse into one unlabelled span.
func Merge(segs []Segment) []Segment {
	return AppendMerge(nil, segs)
}

// AppendMerge is like Merge but appends the spans to dst. segs is not
// modified.
func AppendMerge(dst []Segment, segs []Segment) []Segment {
	if len(segs) == 0 {
		return dst
	}
	sorted := segs
	if !slices.IsSortedFunc(segs, compare) {
		sorted = slices.Clone(segs)
		SortByStart(sorted)
	}

	first := len(dst)
	for _, s := range sorted {
		if n := len(dst); n > first && s.Start <= dst[n-1].End {
			if s.End > dst[n-1].End {
				dst[n-1].End = s.End
			}
			continue
		}
		dst = append(dst, Segment{Start: s.Start, End: s.End, Confidence: 1})
	}
	return dst
}

// Covered returns how much of s is covered by spans. spans must not overlap
// each other, as returned by Merge.
func Covered(s Segment, spans []Segment) float64 {
	var total float64
	for _, span := range spans {
		total += Overlap(s, span)
	}
	return total
}
