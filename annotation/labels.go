package annotation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/Vogelwarte/tytalb/segment"
)

const (
	// DefaultBackground is the label meaning "nothing annotated here".
	DefaultBackground = "Noise"

	// DefaultPositive is the label every positive segment receives in binary
	// mode.
	DefaultPositive = "Positive"
)

var (
	// ErrNoPositiveLabels indicates binary mode without any positive label.
	ErrNoPositiveLabels = errors.New("annotation: binary mode requires at least one positive label")

	// ErrAmbiguousCollapse indicates positive labels were given for a
	// multi-class vocabulary without asking for binary mode.
	ErrAmbiguousCollapse = errors.New("annotation: positive labels given without binary mode")

	// ErrNoPositive is a warning: after the binary collapse no segment on
	// either side carries the positive label.
	ErrNoPositive = errors.New("annotation: no segment matches the positive labels")
)

// Vocabulary is the sorted label space of a comparison. Its order fixes the
// rows and columns of every confusion matrix built from it.
type Vocabulary struct {
	labels     []string
	index      map[string]int
	background string
}

// NewVocabulary returns the sorted union of labels, always including
// background.
func NewVocabulary(background string, labels ...string) *Vocabulary {
	all := lo.Uniq(append(slices.Clone(labels), background))
	slices.Sort(all)

	index := make(map[string]int, len(all))
	for i, l := range all {
		index[l] = i
	}
	return &Vocabulary{labels: all, index: index, background: background}
}

// Labels returns the labels in matrix order. The slice must not be modified.
func (v *Vocabulary) Labels() []string { return v.labels }

// Len returns the number of labels.
func (v *Vocabulary) Len() int { return len(v.labels) }

// Background returns the background label.
func (v *Vocabulary) Background() string { return v.background }

// Index returns the matrix position of label.
func (v *Vocabulary) Index(label string) (int, bool) {
	i, ok := v.index[label]
	return i, ok
}

// Labels returns the sorted set of labels used by the sources, leaving out
// background.
func Labels(background string, srcs ...Source) []string {
	seen := make(map[string]struct{})
	for _, src := range srcs {
		for _, id := range src.Recordings() {
			segs, _ := src.Segments(id)
			for _, seg := range segs {
				if seg.Label != background {
					seen[seg.Label] = struct{}{}
				}
			}
		}
	}
	labels := lo.Keys(seen)
	slices.Sort(labels)
	return labels
}

// UnifyOptions controls Unify.
type UnifyOptions struct {
	Background     string
	Binary         bool
	PositiveLabels []string
	PositiveLabel  string
}

// Unified is the output of Unify: both sides expressed over one vocabulary.
type Unified struct {
	GroundTruth *Set
	ToValidate  *Set
	Vocabulary  *Vocabulary
	// Warnings holds non-fatal conditions such as ErrNoPositive.
	Warnings []error
}

// Unify computes the common label space of the two sides. In binary mode every
// segment is relabelled to the positive label or to background, on copies of
// the inputs.
func Unify(gt, tv Source, opts UnifyOptions) (*Unified, error) {
	if opts.Background == "" {
		opts.Background = DefaultBackground
	}
	if opts.PositiveLabel == "" {
		opts.PositiveLabel = DefaultPositive
	}
	if opts.Binary && len(opts.PositiveLabels) == 0 {
		return nil, ErrNoPositiveLabels
	}

	if !opts.Binary {
		labels := Labels(opts.Background, gt, tv)
		vocab := NewVocabulary(opts.Background, labels...)
		if len(opts.PositiveLabels) > 0 && vocab.Len() > 2 {
			return nil, fmt.Errorf("%w: %d labels %v", ErrAmbiguousCollapse, vocab.Len(), vocab.Labels())
		}
		return &Unified{
			GroundTruth: Map(gt, identity),
			ToValidate:  Map(tv, identity),
			Vocabulary:  vocab,
		}, nil
	}

	positives := lo.SliceToMap(opts.PositiveLabels, func(l string) (string, struct{}) { return l, struct{}{} })
	var matched int
	collapse := func(seg segment.Segment) segment.Segment {
		if _, ok := positives[seg.Label]; ok {
			matched++
			return seg.WithLabel(opts.PositiveLabel)
		}
		return seg.WithLabel(opts.Background)
	}

	u := &Unified{
		GroundTruth: Map(gt, collapse),
		ToValidate:  Map(tv, collapse),
		Vocabulary:  NewVocabulary(opts.Background, opts.PositiveLabel),
	}
	if matched == 0 {
		u.Warnings = append(u.Warnings, fmt.Errorf("%w: %v", ErrNoPositive, opts.PositiveLabels))
	}
	return u, nil
}

func identity(seg segment.Segment) segment.Segment { return seg }
