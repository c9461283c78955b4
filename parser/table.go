// Package parser reads and rewrites the annotation tables written by
// bioacoustics tools such as Raven, Audacity, Sonic Visualiser, Kaleidoscope
// and BirdNET.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Vogelwarte/tytalb/annotation"
	"github.com/Vogelwarte/tytalb/segment"
)

// Row is one parsed table row.
type Row struct {
	// Recording overrides the recording derived from the table path. It is
	// set by formats that hold several recordings in one table.
	Recording string
	Segment   segment.Segment
}

// Parser reads one annotation table format.
type Parser interface {
	// Name is the canonical format name.
	Name() string
	// Aliases are the short names the format is also known by.
	Aliases() []string
	// IsTable reports whether the file name matches the format's pattern.
	IsTable(path string) bool
	// MultiRecording reports whether rows name their own recording, so that a
	// table covers many recordings instead of the one named by its path.
	MultiRecording() bool
	// Parse reads every row of a table. path is only used in errors.
	Parse(r io.Reader, path string) ([]Row, error)
	// Rewrite copies a table from r to w with every label replaced by
	// fn(label). Empty rows are dropped.
	Rewrite(r io.Reader, w io.Writer, path string, fn func(string) string) error
}

// Column locates a cell either by header name or, in tables without a
// header, by position.
type Column struct {
	Name  string
	Index int
}

// Table is a Parser for delimiter-separated tables with one segment per row.
type Table struct {
	name    string
	aliases []string
	comma   rune
	header  bool
	pattern string

	start Column
	end   Column
	label Column
	// confidence is optional; rows without it get confidence 1.
	confidence *Column
	// endIsDuration marks formats storing the segment length instead of its
	// end.
	endIsDuration bool
	// recording lists columns joined into the recording path, for tables
	// covering several recordings.
	recording []Column
}

var _ Parser = (*Table)(nil)

// Name implements Parser.
func (t *Table) Name() string { return t.name }

// Aliases implements Parser.
func (t *Table) Aliases() []string { return t.aliases }

// Pattern returns the file name glob of the format's tables.
func (t *Table) Pattern() string { return t.pattern }

// MultiRecording reports whether the table names recordings per row.
func (t *Table) MultiRecording() bool { return len(t.recording) > 0 }

// IsTable implements Parser.
func (t *Table) IsTable(p string) bool {
	ok, _ := filepath.Match(t.pattern, filepath.Base(p))
	return ok
}

// indices holds the resolved column positions of one table; -1 marks an
// absent optional column.
type indices struct {
	start, end, label, confidence int
	recording                     []int
}

func (t *Table) reader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = t.comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// resolve reads the header, if the format has one, and returns the column
// positions.
func (t *Table) resolve(cr *csv.Reader, p string) (indices, []string, error) {
	idx := indices{
		start:      t.start.Index,
		end:        t.end.Index,
		label:      t.label.Index,
		confidence: -1,
	}
	if t.confidence != nil {
		idx.confidence = t.confidence.Index
	}
	for _, c := range t.recording {
		idx.recording = append(idx.recording, c.Index)
	}
	if !t.header {
		return idx, nil, nil
	}

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return idx, nil, &RowError{Path: p, Line: 1, Err: fmt.Errorf("%w: empty table", ErrMissingColumn)}
	}
	if err != nil {
		return idx, nil, &RowError{Path: p, Line: 1, Err: err}
	}
	head = slices.Clone(head)
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}

	find := func(c Column) (int, error) {
		i := slices.IndexFunc(head, func(h string) bool { return strings.TrimSpace(h) == c.Name })
		if i < 0 {
			return -1, &RowError{Path: p, Line: 1, Err: fmt.Errorf("%w: %q not in %q", ErrMissingColumn, c.Name, head)}
		}
		return i, nil
	}
	if idx.start, err = find(t.start); err != nil {
		return idx, nil, err
	}
	if idx.end, err = find(t.end); err != nil {
		return idx, nil, err
	}
	if idx.label, err = find(t.label); err != nil {
		return idx, nil, err
	}
	if t.confidence != nil {
		idx.confidence, _ = find(*t.confidence)
	}
	for i, c := range t.recording {
		if idx.recording[i], err = find(c); err != nil {
			return idx, nil, err
		}
	}
	return idx, head, nil
}

// Parse implements Parser.
func (t *Table) Parse(r io.Reader, p string) ([]Row, error) {
	cr := t.reader(r)
	idx, _, err := t.resolve(cr, p)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(p, err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		row, err := t.row(rec, idx)
		if err != nil {
			return nil, &RowError{Path: p, Line: line, Err: err}
		}
		row.Segment.Line = line
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *Table) row(rec []string, idx indices) (Row, error) {
	cell := func(i int) (string, error) {
		if i >= len(rec) {
			return "", fmt.Errorf("%w: %d cells, need column %d", ErrMalformedRow, len(rec), i+1)
		}
		return strings.TrimSpace(rec[i]), nil
	}
	number := func(i int) (float64, error) {
		s, err := cell(i)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		return f, nil
	}

	start, err := number(idx.start)
	if err != nil {
		return Row{}, err
	}
	end, err := number(idx.end)
	if err != nil {
		return Row{}, err
	}
	if t.endIsDuration {
		end += start
	}
	label, err := cell(idx.label)
	if err != nil {
		return Row{}, err
	}

	seg := segment.New(start, end, NormalizeLabel(label))
	if idx.confidence >= 0 && idx.confidence < len(rec) && strings.TrimSpace(rec[idx.confidence]) != "" {
		if seg.Confidence, err = number(idx.confidence); err != nil {
			return Row{}, err
		}
	}

	var row Row
	if len(idx.recording) > 0 {
		parts := make([]string, 0, len(idx.recording))
		for _, i := range idx.recording {
			s, err := cell(i)
			if err != nil {
				return Row{}, err
			}
			parts = append(parts, filepath.ToSlash(s))
		}
		row.Recording = annotation.RecordingID(path.Join(parts...))
	}
	row.Segment = seg
	return row, nil
}

// Rewrite implements Parser.
func (t *Table) Rewrite(r io.Reader, w io.Writer, p string, fn func(string) string) error {
	cr := t.reader(r)
	idx, head, err := t.resolve(cr, p)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = t.comma
	if head != nil {
		if err := cw.Write(head); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return csvError(p, err)
		}
		if blank(rec) {
			continue
		}
		if idx.label >= len(rec) {
			line, _ := cr.FieldPos(0)
			return &RowError{Path: p, Line: line, Err: fmt.Errorf("%w: no label cell", ErrMalformedRow)}
		}
		rec[idx.label] = fn(NormalizeLabel(rec[idx.label]))
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// blank reports whether every cell of rec is empty.
func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func csvError(p string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &RowError{Path: p, Line: pe.Line, Err: fmt.Errorf("%w: %w", ErrMalformedRow, pe.Err)}
	}
	return fmt.Errorf("reading %s: %w", p, err)
}
