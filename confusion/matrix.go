// Package confusion accumulates confusion matrices over a fixed label space
// and derives per-label precision, recall and F1 from them.
package confusion

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownLabel indicates a label outside the matrix label space.
	ErrUnknownLabel = errors.New("confusion: unknown label")

	// ErrShapeMismatch indicates two matrices over different label spaces.
	ErrShapeMismatch = errors.New("confusion: label spaces differ")
)

// Matrix is a square matrix indexed by label. Rows are ground-truth labels,
// columns are predicted labels.
type Matrix struct {
	labels []string
	index  map[string]int
	cells  []float64
}

// NewMatrix returns a zero matrix over labels, in the given order.
func NewMatrix(labels []string) *Matrix {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	return &Matrix{
		labels: slices.Clone(labels),
		index:  index,
		cells:  make([]float64, len(labels)*len(labels)),
	}
}

// Labels returns the row and column labels. The slice must not be modified.
func (m *Matrix) Labels() []string { return m.labels }

// Len returns the number of labels.
func (m *Matrix) Len() int { return len(m.labels) }

// At returns the cell at row i and column j.
func (m *Matrix) At(i, j int) float64 {
	return m.cells[i*len(m.labels)+j]
}

// Get returns the cell for a truth and predicted label, or 0 when either is
// unknown.
func (m *Matrix) Get(truth, predicted string) float64 {
	i, ok := m.index[truth]
	if !ok {
		return 0
	}
	j, ok := m.index[predicted]
	if !ok {
		return 0
	}
	return m.At(i, j)
}

// Add adds v to the cell for truth and predicted.
func (m *Matrix) Add(truth, predicted string, v float64) error {
	i, j, err := m.cell(truth, predicted)
	if err != nil {
		return err
	}
	m.cells[i*len(m.labels)+j] += v
	return nil
}

func (m *Matrix) cell(truth, predicted string) (int, int, error) {
	i, ok := m.index[truth]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownLabel, truth)
	}
	j, ok := m.index[predicted]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownLabel, predicted)
	}
	return i, j, nil
}

// Merge adds o to m cell by cell.
func (m *Matrix) Merge(o *Matrix) error {
	if !slices.Equal(m.labels, o.labels) {
		return fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, m.labels, o.labels)
	}
	for i, v := range o.cells {
		m.cells[i] += v
	}
	return nil
}

// RowSum returns the total attributed to ground-truth label i.
func (m *Matrix) RowSum(i int) float64 {
	var sum float64
	for j := range m.labels {
		sum += m.At(i, j)
	}
	return sum
}

// ColSum returns the total attributed to predicted label j.
func (m *Matrix) ColSum(j int) float64 {
	var sum float64
	for i := range m.labels {
		sum += m.At(i, j)
	}
	return sum
}

// Rows returns a copy of the matrix as a slice of rows.
func (m *Matrix) Rows() [][]float64 {
	n := len(m.labels)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = slices.Clone(m.cells[i*n : (i+1)*n])
	}
	return rows
}

// Equal reports whether m and o have the same labels and identical cells.
func (m *Matrix) Equal(o *Matrix) bool {
	return slices.Equal(m.labels, o.labels) && slices.Equal(m.cells, o.cells)
}
