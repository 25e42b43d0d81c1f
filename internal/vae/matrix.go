package vae

import (
	"fmt"

	"github.com/born-ml/vae/internal/tensor"
)

// Matrix is a dense row-major batch: one example per row.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix allocates a zero rows×cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// Row returns a view of row i.
func (m *Matrix) Row(i int) []float64 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.Cols+j]
}

// check verifies that m is a non-empty batch of the given width.
func (m *Matrix) check(cols int) error {
	if m == nil {
		return fmt.Errorf("%w: nil matrix", ErrShapeMismatch)
	}
	if m.Rows <= 0 || m.Cols != cols || len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("%w: got %dx%d with %d values, want n x %d", ErrShapeMismatch, m.Rows, m.Cols, len(m.Data), cols)
	}
	return nil
}

// toRaw copies m into a [rows, cols] raw tensor.
func (m *Matrix) toRaw() *tensor.RawTensor {
	raw, err := tensor.FromData(m.Data, tensor.Shape{m.Rows, m.Cols}, tensor.CPU)
	if err != nil {
		// check has already validated the shape.
		panic(err)
	}
	return raw
}

// matrixFrom copies a 2-D tensor into a new Matrix.
func matrixFrom[B tensor.Backend](t *tensor.Tensor[B]) *Matrix {
	shape := t.Shape()
	out := NewMatrix(shape[0], shape[1])
	copy(out.Data, t.Data())
	return out
}
