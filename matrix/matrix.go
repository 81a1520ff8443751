// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides dense matrices of autodiff variables and the
// linear algebra functions that differentiate through them.
//
// Elementwise and product operations build ordinary nodes. Determinants and
// linear solves are recorded as single aggregate nodes that keep their
// factorization for the reverse sweep, and release it when the checkpoint
// they were created under is popped.
//
// Example:
//
//	s := autodiff.New()
//	a, _ := matrix.New(s, 2, 2, []float64{4, 1, 1, 3})
//	ld, _ := matrix.LogDeterminantSPD(a)
//	_ = s.Grad(ld)
//	fmt.Println(mat.Formatted(a.Adjoints())) // A⁻¹
package matrix

import (
	"github.com/born-ml/revad/autodiff"
	"github.com/born-ml/revad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a row-major matrix of Vars on one Stack.
type Matrix = matrix.Matrix

// ErrShape is returned when operand dimensions do not conform.
var ErrShape = matrix.ErrShape

// New creates a rows×cols matrix of independent variables from row-major values.
func New(s *autodiff.Stack, rows, cols int, values []float64) (*Matrix, error) {
	return matrix.New(s, rows, cols, values)
}

// FromDense creates a matrix of independent variables holding the values of d.
func FromDense(s *autodiff.Stack, d mat.Matrix) *Matrix {
	return matrix.FromDense(s, d)
}

// FromVars wraps existing row-major Vars.
func FromVars(rows, cols int, vars []autodiff.Var) (*Matrix, error) {
	return matrix.FromVars(rows, cols, vars)
}

// Products, sums and reductions.
var (
	Multiply          = matrix.Multiply
	MultiplyDense     = matrix.MultiplyDense
	MultiplyScalar    = matrix.MultiplyScalar
	Add               = matrix.Add
	Sub               = matrix.Sub
	Diagonal          = matrix.Diagonal
	Trace             = matrix.Trace
	Sum               = matrix.Sum
	DotProduct        = matrix.DotProduct
	RowsDotProduct    = matrix.RowsDotProduct
	ColumnsDotProduct = matrix.ColumnsDotProduct
	QuadForm          = matrix.QuadForm
)

// Factorization-backed functions. A singular, or for the SPD variants
// non-positive-definite, argument yields NaN values and NaN adjoints.
var (
	Determinant       = matrix.Determinant
	LogDeterminant    = matrix.LogDeterminant
	LogDeterminantSPD = matrix.LogDeterminantSPD
	MdivideLeft       = matrix.MdivideLeft
	MdivideLeftSPD    = matrix.MdivideLeftSPD
	MdivideLeftTri    = matrix.MdivideLeftTri
	Inverse           = matrix.Inverse
)
