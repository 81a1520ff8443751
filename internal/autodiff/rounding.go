package autodiff

import "math"

// Non-smooth operations.
//
// Floor, Ceil, Round, Trunc and Step are piecewise constant: their derivative
// is zero wherever it exists, so their nodes go on the no-chain part of the
// tape and are never visited by the sweep. The exception is a NaN operand,
// whose node is kept on the chaining tape so that the NaN reaches the
// operand's adjoint.

func (s *Stack) piecewise(op Op, x Var, val float64) Var {
	chain := isNaN(s.operand(x).val)
	if chain {
		val = nan()
	}
	return s.push(node{op: op, val: val, a: x.id, b: noNode}, chain)
}

// Floor returns the greatest integer value less than or equal to x.
func Floor(x Var) Var { return x.s.piecewise(OpFloor, x, math.Floor(x.Val())) }

// Ceil returns the least integer value greater than or equal to x.
func Ceil(x Var) Var { return x.s.piecewise(OpCeil, x, math.Ceil(x.Val())) }

// Round returns the nearest integer, rounding half away from zero.
func Round(x Var) Var { return x.s.piecewise(OpRound, x, math.Round(x.Val())) }

// Trunc returns the integer value of x, rounded toward zero.
func Trunc(x Var) Var { return x.s.piecewise(OpTrunc, x, math.Trunc(x.Val())) }

// Step returns 0 for x < 0 and 1 otherwise.
func Step(x Var) Var {
	val := 1.0
	if x.Val() < 0 {
		val = 0
	}
	return x.s.piecewise(OpStep, x, val)
}

// Abs returns |x|. The derivative is sign(x), taken as 0 at x = 0.
func Abs(x Var) Var {
	return x.s.unary(OpAbs, x, math.Abs(x.Val()))
}

// Fmod returns the floating-point remainder of x/y, with the sign of x.
//
//	∂/∂x = 1, ∂/∂y = -trunc(x/y)
func Fmod(x, y Var) Var {
	return x.s.binary(OpFmod, x, y, math.Mod(x.Val(), y.Val()))
}

// FmodScalar returns fmod(x, c).
func FmodScalar(x Var, c float64) Var {
	return x.s.scalar(OpFmodScalar, x, c, math.Mod(x.Val(), c))
}

// ScalarFmod returns fmod(c, y).
func ScalarFmod(c float64, y Var) Var {
	return y.s.scalar(OpScalarFmod, y, c, math.Mod(c, y.Val()))
}

// chainPiecewiseConstant only runs for NaN-valued nodes, which the sweep
// poisons before dispatching; there is nothing left to propagate.
func chainPiecewiseConstant(*Stack, *node) {}

func chainAbs(s *Stack, n *node) {
	switch x := s.val(n.a); {
	case x > 0:
		s.addAdj(n.a, n.adj)
	case x < 0:
		s.addAdj(n.a, -n.adj)
	}
}

func chainFmod(s *Stack, n *node) {
	x, y := s.val(n.a), s.val(n.b)
	s.addAdj(n.a, n.adj)
	s.addAdj(n.b, -n.adj*math.Trunc(x/y))
}

func chainScalarFmod(s *Stack, n *node) {
	s.addAdj(n.a, -n.adj*math.Trunc(n.k/s.val(n.a)))
}
