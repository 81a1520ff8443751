package autodiff

import "math"

// Comparisons read forward values only and record nothing: they are not
// differentiable. Control flow branching on them is invisible to the tape,
// so the gradient of such a function ignores the branch points. Any
// comparison with a NaN is false, except Ne.

// Eq reports whether v's value is equal to w's.
func (v Var) Eq(w Var) bool { return v.Val() == w.Val() }

// Ne reports whether v's value is not equal to w's.
func (v Var) Ne(w Var) bool { return v.Val() != w.Val() }

// Lt reports whether v's value is less than w's.
func (v Var) Lt(w Var) bool { return v.Val() < w.Val() }

// Le reports whether v's value is less than or equal to w's.
func (v Var) Le(w Var) bool { return v.Val() <= w.Val() }

// Gt reports whether v's value is greater than w's.
func (v Var) Gt(w Var) bool { return v.Val() > w.Val() }

// Ge reports whether v's value is greater than or equal to w's.
func (v Var) Ge(w Var) bool { return v.Val() >= w.Val() }

// EqScalar reports whether v's value is equal to c.
func (v Var) EqScalar(c float64) bool { return v.Val() == c }

// NeScalar reports whether v's value is not equal to c.
func (v Var) NeScalar(c float64) bool { return v.Val() != c }

// LtScalar reports whether v's value is less than c.
func (v Var) LtScalar(c float64) bool { return v.Val() < c }

// LeScalar reports whether v's value is less than or equal to c.
func (v Var) LeScalar(c float64) bool { return v.Val() <= c }

// GtScalar reports whether v's value is greater than c.
func (v Var) GtScalar(c float64) bool { return v.Val() > c }

// GeScalar reports whether v's value is greater than or equal to c.
func (v Var) GeScalar(c float64) bool { return v.Val() >= c }

// IsNaN reports whether v's value is NaN.
func IsNaN(v Var) bool { return math.IsNaN(v.Val()) }

// IsInf reports whether v's value is an infinity of either sign.
func IsInf(v Var) bool { return math.IsInf(v.Val(), 0) }

// IsFinite reports whether v's value is neither infinite nor NaN.
func IsFinite(v Var) bool {
	x := v.Val()
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Min returns whichever of x and y has the smaller value, x on ties. No node
// is recorded: the result is one of the operands. A NaN operand is returned
// as is, so the NaN reaches the value and, through the sweep, the adjoints.
func Min(x, y Var) Var {
	xv, yv := x.Val(), y.Val()
	if math.IsNaN(xv) {
		return x
	}
	if math.IsNaN(yv) || yv < xv {
		return y
	}
	return x
}

// Max returns whichever of x and y has the larger value, x on ties. See Min.
func Max(x, y Var) Var {
	xv, yv := x.Val(), y.Val()
	if math.IsNaN(xv) {
		return x
	}
	if math.IsNaN(yv) || yv > xv {
		return y
	}
	return x
}
