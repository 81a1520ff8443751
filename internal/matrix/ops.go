package matrix

import (
	"github.com/born-ml/revad/internal/autodiff"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Multiply returns the matrix product a·b. Each element is one Dot node.
func Multiply(a, b *Matrix) (*Matrix, error) {
	if a.cols != b.rows {
		return nil, errors.Wrapf(ErrShape, "Multiply: %dx%d by %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	out := &Matrix{s: a.s, rows: a.rows, cols: b.cols, data: make([]autodiff.Var, a.rows*b.cols)}
	cols := make([][]autodiff.Var, b.cols)
	for j := range b.cols {
		cols[j] = b.Col(j)
	}
	for i := range a.rows {
		row := a.data[i*a.cols : (i+1)*a.cols]
		for j := range b.cols {
			out.data[i*b.cols+j] = autodiff.Dot(row, cols[j])
		}
	}
	return out, nil
}

// MultiplyDense returns a·d for a constant matrix d.
func MultiplyDense(a *Matrix, d mat.Matrix) (*Matrix, error) {
	r, c := d.Dims()
	if a.cols != r {
		return nil, errors.Wrapf(ErrShape, "MultiplyDense: %dx%d by %dx%d", a.rows, a.cols, r, c)
	}
	out := &Matrix{s: a.s, rows: a.rows, cols: c, data: make([]autodiff.Var, a.rows*c)}
	col := make([]float64, r)
	for j := range c {
		mat.Col(col, j, d)
		for i := range a.rows {
			out.data[i*c+j] = autodiff.DotScalars(a.data[i*a.cols:(i+1)*a.cols], col)
		}
	}
	return out, nil
}

// MultiplyScalar returns c·a.
func MultiplyScalar(a *Matrix, c float64) *Matrix {
	out := &Matrix{s: a.s, rows: a.rows, cols: a.cols, data: make([]autodiff.Var, len(a.data))}
	for i, v := range a.data {
		out.data[i] = v.MulScalar(c)
	}
	return out
}

// Add returns a + b.
func Add(a, b *Matrix) (*Matrix, error) {
	return elementwise("Add", a, b, autodiff.Var.Add)
}

// Sub returns a - b.
func Sub(a, b *Matrix) (*Matrix, error) {
	return elementwise("Sub", a, b, autodiff.Var.Sub)
}

func elementwise(name string, a, b *Matrix, fn func(x, y autodiff.Var) autodiff.Var) (*Matrix, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, errors.Wrapf(ErrShape, "%s: %dx%d and %dx%d", name, a.rows, a.cols, b.rows, b.cols)
	}
	out := &Matrix{s: a.s, rows: a.rows, cols: a.cols, data: make([]autodiff.Var, len(a.data))}
	for i := range a.data {
		out.data[i] = fn(a.data[i], b.data[i])
	}
	return out, nil
}

// Diagonal returns the main diagonal.
func Diagonal(a *Matrix) []autodiff.Var {
	n := min(a.rows, a.cols)
	diag := make([]autodiff.Var, n)
	for i := range n {
		diag[i] = a.At(i, i)
	}
	return diag
}

// Trace returns the sum of the diagonal of a square matrix.
func Trace(a *Matrix) (autodiff.Var, error) {
	if !a.isSquare() {
		return autodiff.Var{}, squareErr("Trace", a)
	}
	return autodiff.Sum(Diagonal(a)), nil
}

// Sum returns the sum of every element.
func Sum(a *Matrix) autodiff.Var {
	return autodiff.Sum(a.data)
}

// DotProduct returns Σ x[i]·y[i].
func DotProduct(x, y []autodiff.Var) (autodiff.Var, error) {
	if len(x) != len(y) || len(x) == 0 {
		return autodiff.Var{}, errors.Wrapf(ErrShape, "DotProduct of %d and %d values", len(x), len(y))
	}
	return autodiff.Dot(x, y), nil
}

// RowsDotProduct returns the dot products of the corresponding rows of a
// and b.
func RowsDotProduct(a, b *Matrix) ([]autodiff.Var, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, errors.Wrapf(ErrShape, "RowsDotProduct: %dx%d and %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	out := make([]autodiff.Var, a.rows)
	for i := range a.rows {
		out[i] = autodiff.Dot(a.data[i*a.cols:(i+1)*a.cols], b.data[i*b.cols:(i+1)*b.cols])
	}
	return out, nil
}

// ColumnsDotProduct returns the dot products of the corresponding columns of
// a and b.
func ColumnsDotProduct(a, b *Matrix) ([]autodiff.Var, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, errors.Wrapf(ErrShape, "ColumnsDotProduct: %dx%d and %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	out := make([]autodiff.Var, a.cols)
	for j := range a.cols {
		out[j] = autodiff.Dot(a.Col(j), b.Col(j))
	}
	return out, nil
}

// QuadForm returns xᵀ·a·x for a square matrix a.
func QuadForm(a *Matrix, x []autodiff.Var) (autodiff.Var, error) {
	if !a.isSquare() {
		return autodiff.Var{}, squareErr("QuadForm", a)
	}
	if len(x) != a.rows {
		return autodiff.Var{}, errors.Wrapf(ErrShape, "QuadForm: %dx%d matrix, vector of %d", a.rows, a.cols, len(x))
	}
	ax := make([]autodiff.Var, a.rows)
	for i := range a.rows {
		ax[i] = autodiff.Dot(a.data[i*a.cols:(i+1)*a.cols], x)
	}
	return autodiff.Dot(x, ax), nil
}
