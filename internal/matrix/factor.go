package matrix

import (
	"math"

	"github.com/born-ml/revad/internal/autodiff"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Factorization-based operations. A numerically failed factorization
// (singular matrix, matrix that is not symmetric positive definite) is not a
// usage error: the outputs are NaN, and so are the adjoints they propagate.

// Determinant returns det(a).
//
//	∂det/∂a = det·a⁻ᵀ
func Determinant(a *Matrix) (autodiff.Var, error) {
	if !a.isSquare() {
		return autodiff.Var{}, squareErr("Determinant", a)
	}
	op := newDetOp(a, false)
	return a.s.NewAggregate(op.val, op), nil
}

// LogDeterminant returns log|det(a)|.
//
//	∂/∂a = a⁻ᵀ
func LogDeterminant(a *Matrix) (autodiff.Var, error) {
	if !a.isSquare() {
		return autodiff.Var{}, squareErr("LogDeterminant", a)
	}
	op := newDetOp(a, true)
	return a.s.NewAggregate(op.val, op), nil
}

type detOp struct {
	a   []autodiff.Var
	n   int
	lu  *mat.LU
	val float64
	log bool
	nan bool
}

func newDetOp(a *Matrix, log bool) *detOp {
	op := &detOp{a: a.data, n: a.rows, log: log}
	vals := a.Values()
	if hasNaN(vals) {
		op.nan, op.val = true, math.NaN()
		return op
	}
	op.lu = &mat.LU{}
	op.lu.Factorize(vals)
	if log {
		op.val, _ = op.lu.LogDet()
	} else {
		op.val = op.lu.Det()
	}
	return op
}

func (op *detOp) Chain(adj float64) {
	if adj == 0 {
		return
	}
	if op.nan || singular(op.lu) {
		accumulateNaN(op.a)
		return
	}
	var invT mat.Dense
	if err := op.lu.SolveTo(&invT, true, eye(op.n)); err != nil && !isCondition(err) {
		accumulateNaN(op.a)
		return
	}
	scale := adj
	if !op.log {
		scale *= op.val
	}
	for i := range op.n {
		for j := range op.n {
			op.a[i*op.n+j].Accumulate(scale * invT.At(i, j))
		}
	}
}

func (op *detOp) Release() {
	op.lu = nil
}

// LogDeterminantSPD returns log det(a) for a symmetric positive definite a,
// using a Cholesky factorization.
//
//	∂/∂a = a⁻¹
func LogDeterminantSPD(a *Matrix) (autodiff.Var, error) {
	if !a.isSquare() {
		return autodiff.Var{}, squareErr("LogDeterminantSPD", a)
	}
	op := &logDetSPDOp{a: a.data, n: a.rows}
	op.chol, op.ok = cholesky(a.Values())
	val := math.NaN()
	if op.ok {
		val = op.chol.LogDet()
	}
	return a.s.NewAggregate(val, op), nil
}

type logDetSPDOp struct {
	a    []autodiff.Var
	n    int
	chol *mat.Cholesky
	ok   bool
}

func (op *logDetSPDOp) Chain(adj float64) {
	if adj == 0 {
		return
	}
	var inv mat.SymDense
	if !op.ok || op.chol.InverseTo(&inv) != nil {
		accumulateNaN(op.a)
		return
	}
	for i := range op.n {
		for j := range op.n {
			op.a[i*op.n+j].Accumulate(adj * inv.At(i, j))
		}
	}
}

func (op *logDetSPDOp) Release() {
	op.chol = nil
}

type solveKind uint8

const (
	solveLU solveKind = iota
	solveSPD
	solveLowerTri
)

func (k solveKind) String() string {
	switch k {
	case solveLU:
		return "MdivideLeft"
	case solveSPD:
		return "MdivideLeftSPD"
	default:
		return "MdivideLeftTri"
	}
}

// MdivideLeft returns a⁻¹·b, solved through an LU factorization of a.
//
//	∂/∂b = a⁻ᵀ·adj(c), ∂/∂a = -a⁻ᵀ·adj(c)·cᵀ
func MdivideLeft(a, b *Matrix) (*Matrix, error) {
	return mdivideLeft(solveLU, a, b)
}

// MdivideLeftSPD returns a⁻¹·b for a symmetric positive definite a, solved
// through a Cholesky factorization.
func MdivideLeftSPD(a, b *Matrix) (*Matrix, error) {
	return mdivideLeft(solveSPD, a, b)
}

// MdivideLeftTri returns a⁻¹·b for a lower triangular a. Elements above the
// diagonal of a are ignored and receive no adjoint.
func MdivideLeftTri(a, b *Matrix) (*Matrix, error) {
	return mdivideLeft(solveLowerTri, a, b)
}

// Inverse returns a⁻¹, as a⁻¹·I with a constant identity.
func Inverse(a *Matrix) (*Matrix, error) {
	if !a.isSquare() {
		return nil, squareErr("Inverse", a)
	}
	return record(newSolveOp(solveLU, a, nil, eye(a.rows))), nil
}

func mdivideLeft(kind solveKind, a, b *Matrix) (*Matrix, error) {
	if !a.isSquare() {
		return nil, squareErr(kind.String(), a)
	}
	if b.rows != a.rows {
		return nil, errors.Wrapf(ErrShape, "%s: %dx%d by %dx%d", kind, a.rows, a.cols, b.rows, b.cols)
	}
	return record(newSolveOp(kind, a, b.data, b.Values())), nil
}

// solveOp is the aggregate behind c = a⁻¹·b. b is a constant when bVars is
// nil.
type solveOp struct {
	kind  solveKind
	n, m  int
	a     []autodiff.Var
	b     []autodiff.Var
	c     *mat.Dense
	out   []autodiff.Var
	lu    *mat.LU
	chol  *mat.Cholesky
	tri   *mat.TriDense
	valid bool
}

func newSolveOp(kind solveKind, a *Matrix, bVars []autodiff.Var, b mat.Matrix) *solveOp {
	n := a.rows
	_, m := b.Dims()
	op := &solveOp{kind: kind, n: n, m: m, a: a.data, b: bVars, c: mat.NewDense(n, m, nil)}
	vals := a.Values()
	if hasNaN(vals) || hasNaN(b) {
		op.fillNaN()
		return op
	}
	var err error
	switch kind {
	case solveLU:
		op.lu = &mat.LU{}
		op.lu.Factorize(vals)
		if singular(op.lu) {
			op.fillNaN()
			return op
		}
		err = op.lu.SolveTo(op.c, false, b)
	case solveSPD:
		var ok bool
		if op.chol, ok = cholesky(vals); !ok {
			op.fillNaN()
			return op
		}
		err = op.chol.SolveTo(op.c, b)
	case solveLowerTri:
		op.tri = mat.NewTriDense(n, mat.Lower, nil)
		for i := range n {
			if vals.At(i, i) == 0 {
				op.fillNaN()
				return op
			}
			for j := 0; j <= i; j++ {
				op.tri.SetTri(i, j, vals.At(i, j))
			}
		}
		err = op.c.Solve(op.tri, b)
	}
	if err != nil && !isCondition(err) {
		op.fillNaN()
		return op
	}
	op.valid = true
	return op
}

func (op *solveOp) fillNaN() {
	nan := math.NaN()
	for i := range op.n {
		for j := range op.m {
			op.c.Set(i, j, nan)
		}
	}
}

// record adds the aggregate node followed by its outputs.
func record(op *solveOp) *Matrix {
	s := op.a[0].Stack()
	s.NewAggregate(0, op)
	op.out = make([]autodiff.Var, op.n*op.m)
	for i := range op.n {
		for j := range op.m {
			op.out[i*op.m+j] = s.NewNoChain(op.c.At(i, j))
		}
	}
	return &Matrix{s: s, rows: op.n, cols: op.m, data: op.out}
}

// solveT returns a⁻ᵀ·x.
func (op *solveOp) solveT(x mat.Matrix) (*mat.Dense, error) {
	dst := mat.NewDense(op.n, op.m, nil)
	var err error
	switch op.kind {
	case solveLU:
		err = op.lu.SolveTo(dst, true, x)
	case solveSPD:
		err = op.chol.SolveTo(dst, x)
	case solveLowerTri:
		err = dst.Solve(op.tri.TTri(), x)
	}
	if err != nil && !isCondition(err) {
		return nil, err
	}
	return dst, nil
}

func (op *solveOp) Chain(float64) {
	adjC := mat.NewDense(op.n, op.m, nil)
	nonZero := false
	for i := range op.n {
		for j := range op.m {
			d := op.out[i*op.m+j].Adj()
			adjC.Set(i, j, d)
			nonZero = nonZero || d != 0
		}
	}
	if !nonZero {
		return
	}
	if !op.valid {
		accumulateNaN(op.a)
		accumulateNaN(op.b)
		return
	}
	adjB, err := op.solveT(adjC)
	if err != nil {
		accumulateNaN(op.a)
		accumulateNaN(op.b)
		return
	}
	for k, v := range op.b {
		v.Accumulate(adjB.At(k/op.m, k%op.m))
	}
	var adjA mat.Dense
	adjA.Mul(adjB, op.c.T())
	for i := range op.n {
		for j := range op.n {
			if op.kind == solveLowerTri && j > i {
				continue
			}
			op.a[i*op.n+j].Accumulate(-adjA.At(i, j))
		}
	}
}

func (op *solveOp) Release() {
	op.lu, op.chol, op.tri = nil, nil, nil
}

func singular(lu *mat.LU) bool {
	return lu.Det() == 0 || math.IsInf(lu.Cond(), 1)
}

func cholesky(vals *mat.Dense) (*mat.Cholesky, bool) {
	n, _ := vals.Dims()
	if hasNaN(vals) || !mat.Equal(vals, vals.T()) {
		return nil, false
	}
	sym := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, vals.At(i, j))
		}
	}
	chol := &mat.Cholesky{}
	if !chol.Factorize(sym) {
		return nil, false
	}
	return chol, true
}

func eye(n int) *mat.DiagDense {
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	return mat.NewDiagDense(n, ones)
}

func hasNaN(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := range r {
		for j := range c {
			if math.IsNaN(m.At(i, j)) {
				return true
			}
		}
	}
	return false
}

func accumulateNaN(vs []autodiff.Var) {
	nan := math.NaN()
	for _, v := range vs {
		v.Accumulate(nan)
	}
}

// isCondition reports whether err only warns about an ill-conditioned
// matrix, in which case the result was still computed.
func isCondition(err error) bool {
	var c mat.Condition
	return errors.As(err, &c)
}
