package reconcile

import (
	"errors"
	"fmt"

	"github.com/Vogelwarte/tytalb/segment"
)

var (
	// ErrIntegrity indicates a malformed segment reached the reconciler.
	ErrIntegrity = errors.New("reconcile: malformed segment")

	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("reconcile: workspace pool closed")
)

// Side names one of the two annotation sets being compared.
type Side int

const (
	GroundTruth Side = iota
	ToValidate
)

func (s Side) String() string {
	switch s {
	case GroundTruth:
		return "ground truth"
	case ToValidate:
		return "to validate"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// IntegrityError locates a malformed segment.
type IntegrityError struct {
	Recording string
	Side      Side
	Segment   segment.Segment
	Err       error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("recording %q (%s): %v", e.Recording, e.Side, e.Err)
}

// Unwrap returns both ErrIntegrity and the underlying cause.
func (e *IntegrityError) Unwrap() []error {
	return []error{ErrIntegrity, e.Err}
}

// Check validates every segment of in, ground truth first, and returns an
// *IntegrityError for the first malformed one.
func Check(in Input) error {
	for _, side := range []struct {
		side Side
		segs []segment.Segment
	}{{GroundTruth, in.GroundTruth}, {ToValidate, in.ToValidate}} {
		for _, s := range side.segs {
			if err := s.Validate(); err != nil {
				return &IntegrityError{Recording: in.Recording, Side: side.side, Segment: s, Err: err}
			}
		}
	}
	return nil
}
