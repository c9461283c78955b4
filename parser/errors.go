package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat indicates a format name no parser answers to.
	ErrUnknownFormat = errors.New("parser: unknown format")

	// ErrMissingColumn indicates a header without a required column.
	ErrMissingColumn = errors.New("parser: missing column")

	// ErrMalformedRow indicates a row whose cells cannot be read.
	ErrMalformedRow = errors.New("parser: malformed row")
)

// RowError locates a failure inside a table. Line is 1-based and counts the
// header, so it matches what an editor shows.
type RowError struct {
	Path string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
