// Package matrix provides dense matrices of autodiff variables.
//
// Element-wise and product operations are built from scalar nodes (one Dot
// reduction per output element). Operations that need a factorization
// (determinants, linear solves, inverses) are recorded as a single aggregate
// node holding the gonum factorization, with their outputs on the stack's
// no-chain tape.
package matrix

import (
	"fmt"
	"strings"

	"github.com/born-ml/revad/internal/autodiff"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrShape is returned when operand dimensions do not agree.
var ErrShape = errors.New("matrix: dimension mismatch")

// Matrix is a row-major matrix of Vars, all belonging to the same Stack.
type Matrix struct {
	s          *autodiff.Stack
	rows, cols int
	data       []autodiff.Var
}

// New promotes values (row-major, rows*cols of them) to leaves of s.
func New(s *autodiff.Stack, rows, cols int, values []float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrShape, "New(%d, %d)", rows, cols)
	}
	if len(values) != rows*cols {
		return nil, errors.Wrapf(ErrShape, "New(%d, %d) with %d values", rows, cols, len(values))
	}
	return &Matrix{s: s, rows: rows, cols: cols, data: s.NewVars(values)}, nil
}

// FromDense promotes every element of d to a leaf of s.
func FromDense(s *autodiff.Stack, d mat.Matrix) *Matrix {
	r, c := d.Dims()
	m := &Matrix{s: s, rows: r, cols: c, data: make([]autodiff.Var, r*c)}
	for i := range r {
		for j := range c {
			m.data[i*c+j] = s.NewVar(d.At(i, j))
		}
	}
	return m
}

// FromVars wraps existing Vars (row-major) without recording anything.
func FromVars(rows, cols int, vars []autodiff.Var) (*Matrix, error) {
	if rows <= 0 || cols <= 0 || len(vars) != rows*cols {
		return nil, errors.Wrapf(ErrShape, "FromVars(%d, %d) with %d vars", rows, cols, len(vars))
	}
	return &Matrix{s: vars[0].Stack(), rows: rows, cols: cols, data: vars}, nil
}

// Stack returns the stack owning the elements.
func (m *Matrix) Stack() *autodiff.Stack { return m.s }

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (rows, cols int) { return m.rows, m.cols }

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// At returns the element (i, j).
func (m *Matrix) At(i, j int) autodiff.Var {
	return m.data[i*m.cols+j]
}

// Set replaces the element (i, j).
func (m *Matrix) Set(i, j int, v autodiff.Var) {
	m.data[i*m.cols+j] = v
}

// Vars returns the elements in row-major order. The slice is shared.
func (m *Matrix) Vars() []autodiff.Var {
	return m.data
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []autodiff.Var {
	row := make([]autodiff.Var, m.cols)
	copy(row, m.data[i*m.cols:(i+1)*m.cols])
	return row
}

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []autodiff.Var {
	col := make([]autodiff.Var, m.rows)
	for i := range m.rows {
		col[i] = m.data[i*m.cols+j]
	}
	return col
}

// T returns the transpose. The elements are shared, nothing is recorded.
func (m *Matrix) T() *Matrix {
	t := &Matrix{s: m.s, rows: m.cols, cols: m.rows, data: make([]autodiff.Var, len(m.data))}
	for i := range m.rows {
		for j := range m.cols {
			t.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return t
}

// Values returns the forward values.
func (m *Matrix) Values() *mat.Dense {
	d := mat.NewDense(m.rows, m.cols, nil)
	for i := range m.rows {
		for j := range m.cols {
			d.Set(i, j, m.At(i, j).Val())
		}
	}
	return d
}

// Adjoints returns the adjoints, meaningful after a gradient sweep.
func (m *Matrix) Adjoints() *mat.Dense {
	d := mat.NewDense(m.rows, m.cols, nil)
	for i := range m.rows {
		for j := range m.cols {
			d.Set(i, j, m.At(i, j).Adj())
		}
	}
	return d
}

// String implements fmt.Stringer.
func (m *Matrix) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Matrix(%dx%d)", m.rows, m.cols)
	for i := range m.rows {
		sb.WriteString("\n ")
		for j := range m.cols {
			fmt.Fprintf(&sb, " %g", m.At(i, j).Val())
		}
	}
	return sb.String()
}

func (m *Matrix) isSquare() bool {
	return m.rows == m.cols
}

func squareErr(op string, m *Matrix) error {
	return errors.Wrapf(ErrShape, "%s: matrix is %dx%d, want square", op, m.rows, m.cols)
}
