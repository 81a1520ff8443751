package autodiff

import (
	"math"

	"github.com/born-ml/revad/internal/arena"
	"github.com/pkg/errors"
)

// Reductions over collections. Each records a single node whose operand
// references live in the stack's reference arena, however many operands
// there are.

// refsOf copies the ids of vs into the reference arena. It reports whether
// any of them holds a NaN.
func (s *Stack) refsOf(vs ...[]Var) (span arena.Span, refs []NodeID, hasNaN bool) {
	total := 0
	for _, part := range vs {
		total += len(part)
	}
	span = s.refs.Extend(total)
	refs = s.refs.Slice(span)
	i := 0
	for _, part := range vs {
		for _, v := range part {
			if isNaN(s.operand(v).val) {
				hasNaN = true
			}
			refs[i] = v.id
			i++
		}
	}
	return span, refs, hasNaN
}

func stackOf(name string, xs []Var) *Stack {
	if len(xs) == 0 {
		panic(errors.Wrapf(ErrLength, "%s of an empty collection", name))
	}
	xs[0].node()
	return xs[0].s
}

// Sum returns the sum of xs, which must not be empty.
func Sum(xs []Var) Var {
	s := stackOf("Sum", xs)
	span, refs, hasNaN := s.refsOf(xs)
	var val float64
	for _, id := range refs {
		val += s.val(id)
	}
	if hasNaN {
		val = nan()
	}
	return s.push(node{op: OpSum, val: val, a: noNode, b: noNode, operands: span}, true)
}

// Dot returns Σ xs[i]·ys[i].
func Dot(xs, ys []Var) Var {
	if len(xs) != len(ys) {
		panic(errors.Wrapf(ErrLength, "Dot of %d and %d values", len(xs), len(ys)))
	}
	s := stackOf("Dot", xs)
	span, refs, hasNaN := s.refsOf(xs, ys)
	n := len(xs)
	var val float64
	for i := range n {
		val += s.val(refs[i]) * s.val(refs[n+i])
	}
	if hasNaN {
		val = nan()
	}
	return s.push(node{op: OpDot, val: val, a: noNode, b: noNode, operands: span}, true)
}

// DotScalars returns Σ xs[i]·cs[i] for constant coefficients cs.
func DotScalars(xs []Var, cs []float64) Var {
	if len(xs) != len(cs) {
		panic(errors.Wrapf(ErrLength, "DotScalars of %d values and %d constants", len(xs), len(cs)))
	}
	s := stackOf("DotScalars", xs)
	span, refs, hasNaN := s.refsOf(xs)
	consts := s.consts.AllocSlice(cs)
	var val float64
	for i, id := range refs {
		val += s.val(id) * cs[i]
		if isNaN(cs[i]) {
			hasNaN = true
		}
	}
	if hasNaN {
		val = nan()
	}
	return s.push(node{op: OpDotScalars, val: val, a: noNode, b: noNode,
		operands: span, consts: consts}, true)
}

// LogSumExp returns log Σ exp(xs[i]), computed around the maximum so that
// large values do not overflow.
func LogSumExp(xs []Var) Var {
	s := stackOf("LogSumExp", xs)
	span, refs, hasNaN := s.refsOf(xs)
	val := logSumExp(s, refs)
	if hasNaN {
		val = nan()
	}
	return s.push(node{op: OpLogSumExp, val: val, a: noNode, b: noNode, operands: span}, true)
}

// LogSumExp2 returns log(eˣ + eʸ).
func LogSumExp2(x, y Var) Var {
	return LogSumExp([]Var{x, y})
}

func logSumExp(s *Stack, refs []NodeID) float64 {
	m := math.Inf(-1)
	for _, id := range refs {
		m = math.Max(m, s.val(id))
	}
	if math.IsInf(m, 0) {
		return m
	}
	var sum float64
	for _, id := range refs {
		sum += math.Exp(s.val(id) - m)
	}
	return m + math.Log(sum)
}

// Mean returns the arithmetic mean of xs.
func Mean(xs []Var) Var {
	s := stackOf("Mean", xs)
	n := float64(len(xs))
	partials := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		sum += x.Val()
		partials[i] = 1 / n
	}
	return s.Precomputed(sum/n, xs, partials)
}

// Variance returns the sample variance of xs (normalized by n-1), which must
// hold at least two values.
func Variance(xs []Var) Var {
	if len(xs) < 2 {
		panic(errors.Wrapf(ErrLength, "Variance of %d values", len(xs)))
	}
	s := stackOf("Variance", xs)
	n := float64(len(xs))
	var mean float64
	for _, x := range xs {
		mean += x.Val()
	}
	mean /= n
	partials := make([]float64, len(xs))
	var ss float64
	for i, x := range xs {
		d := x.Val() - mean
		ss += d * d
		partials[i] = 2 * d / (n - 1)
	}
	return s.Precomputed(ss/(n-1), xs, partials)
}

// SquaredNorm returns Σ xs[i]².
func SquaredNorm(xs []Var) Var {
	s := stackOf("SquaredNorm", xs)
	partials := make([]float64, len(xs))
	var val float64
	for i, x := range xs {
		v := x.Val()
		val += v * v
		partials[i] = 2 * v
	}
	return s.Precomputed(val, xs, partials)
}

func chainSum(s *Stack, n *node) {
	for _, id := range s.refs.Slice(n.operands) {
		s.addAdj(id, n.adj)
	}
}

func chainDot(s *Stack, n *node) {
	refs := s.refs.Slice(n.operands)
	half := len(refs) / 2
	xs, ys := refs[:half], refs[half:]
	for i := range xs {
		xv, yv := s.val(xs[i]), s.val(ys[i])
		s.addAdj(xs[i], n.adj*yv)
		s.addAdj(ys[i], n.adj*xv)
	}
}

func chainDotScalars(s *Stack, n *node) {
	cs := s.consts.Slice(n.consts)
	for i, id := range s.refs.Slice(n.operands) {
		s.addAdj(id, n.adj*cs[i])
	}
}

func chainLogSumExp(s *Stack, n *node) {
	for _, id := range s.refs.Slice(n.operands) {
		s.addAdj(id, n.adj*math.Exp(s.val(id)-n.val))
	}
}
