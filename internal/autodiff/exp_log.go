package autodiff

import "math"

// Exp returns eˣ.
func Exp(x Var) Var {
	return x.s.unary(OpExp, x, math.Exp(x.Val()))
}

// Exp2 returns 2ˣ.
func Exp2(x Var) Var {
	return x.s.unary(OpExp2, x, math.Exp2(x.Val()))
}

// Expm1 returns eˣ - 1, accurate near zero.
func Expm1(x Var) Var {
	return x.s.unary(OpExpm1, x, math.Expm1(x.Val()))
}

// Log returns the natural logarithm of x. Negative values give NaN, zero
// gives -Inf.
func Log(x Var) Var {
	return x.s.unary(OpLog, x, math.Log(x.Val()))
}

// Log2 returns the binary logarithm of x.
func Log2(x Var) Var {
	return x.s.unary(OpLog2, x, math.Log2(x.Val()))
}

// Log10 returns the decimal logarithm of x.
func Log10(x Var) Var {
	return x.s.unary(OpLog10, x, math.Log10(x.Val()))
}

// Log1p returns log(1 + x), accurate near zero.
func Log1p(x Var) Var {
	return x.s.unary(OpLog1p, x, math.Log1p(x.Val()))
}

// Sqrt returns the square root of x. Negative values give NaN.
func Sqrt(x Var) Var {
	return x.s.unary(OpSqrt, x, math.Sqrt(x.Val()))
}

// Cbrt returns the cube root of x.
func Cbrt(x Var) Var {
	return x.s.unary(OpCbrt, x, math.Cbrt(x.Val()))
}

// InvSqrt returns 1/√x.
func InvSqrt(x Var) Var {
	return x.s.unary(OpInvSqrt, x, 1/math.Sqrt(x.Val()))
}

// Pow returns xʸ.
//
//	∂/∂x = y·xʸ/x, ∂/∂y = log(x)·xʸ
//
// At x = 0 no adjoint is propagated.
func Pow(x, y Var) Var {
	return x.s.binary(OpPow, x, y, math.Pow(x.Val(), y.Val()))
}

// PowScalar returns xᵏ for a constant exponent, with ∂/∂x = k·xᵏ/x.
// As for Pow, nothing is propagated at x = 0.
func PowScalar(x Var, k float64) Var {
	return x.s.scalar(OpPowScalar, x, k, math.Pow(x.Val(), k))
}

// ScalarPow returns kˣ for a constant base.
func ScalarPow(k float64, x Var) Var {
	return x.s.scalar(OpScalarPow, x, k, math.Pow(k, x.Val()))
}

// Log1pExp returns log(1 + eˣ) without overflowing for large x.
func Log1pExp(x Var) Var {
	return x.s.unary(OpLog1pExp, x, log1pExp(x.Val()))
}

// InvLogit returns the logistic sigmoid 1/(1 + e⁻ˣ).
func InvLogit(x Var) Var {
	return x.s.unary(OpInvLogit, x, invLogit(x.Val()))
}

// Logit returns log(x/(1-x)).
func Logit(x Var) Var {
	u := x.Val()
	return x.s.unary(OpLogit, x, math.Log(u/(1-u)))
}

func log1pExp(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

func invLogit(x float64) float64 {
	if x < 0 {
		e := math.Exp(x)
		return e / (1 + e)
	}
	return 1 / (1 + math.Exp(-x))
}

func chainExp(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*n.val)
}

func chainExp2(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*n.val*math.Ln2)
}

func chainExpm1(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*(n.val+1))
}

func chainLog(s *Stack, n *node) {
	s.addAdj(n.a, n.adj/s.val(n.a))
}

func chainLog2(s *Stack, n *node) {
	s.addAdj(n.a, n.adj/(s.val(n.a)*math.Ln2))
}

func chainLog10(s *Stack, n *node) {
	s.addAdj(n.a, n.adj/(s.val(n.a)*math.Ln10))
}

func chainLog1p(s *Stack, n *node) {
	s.addAdj(n.a, n.adj/(1+s.val(n.a)))
}

func chainSqrt(s *Stack, n *node) {
	s.addAdj(n.a, n.adj/(2*n.val))
}

func chainCbrt(s *Stack, n *node) {
	s.addAdj(n.a, n.adj/(3*n.val*n.val))
}

func chainInvSqrt(s *Stack, n *node) {
	s.addAdj(n.a, -0.5*n.adj*n.val/s.val(n.a))
}

func chainPow(s *Stack, n *node) {
	x, y := s.val(n.a), s.val(n.b)
	if x == 0 {
		return
	}
	s.addAdj(n.a, n.adj*y*n.val/x)
	s.addAdj(n.b, n.adj*math.Log(x)*n.val)
}

func chainPowScalar(s *Stack, n *node) {
	x := s.val(n.a)
	if x == 0 || n.k == 0 {
		return
	}
	s.addAdj(n.a, n.adj*n.k*n.val/x)
}

func chainScalarPow(s *Stack, n *node) {
	if n.k == 0 {
		return
	}
	s.addAdj(n.a, n.adj*n.val*math.Log(n.k))
}

func chainLog1pExp(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*invLogit(s.val(n.a)))
}

func chainInvLogit(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*n.val*(1-n.val))
}

func chainLogit(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, n.adj/(x-x*x))
}
