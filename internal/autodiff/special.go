package autodiff

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

const (
	twoOverSqrtPi = 2 / math.SqrtPi
	invSqrtTwoPi  = 1 / (math.Sqrt2 * math.SqrtPi)
	negInvSqrtTwo = -1 / math.Sqrt2
)

// Erf returns the error function of x.
func Erf(x Var) Var {
	return x.s.unary(OpErf, x, math.Erf(x.Val()))
}

// Erfc returns the complementary error function of x.
func Erfc(x Var) Var {
	return x.s.unary(OpErfc, x, math.Erfc(x.Val()))
}

// Lgamma returns log|Γ(x)|. Its derivative is the digamma function.
func Lgamma(x Var) Var {
	lg, _ := math.Lgamma(x.Val())
	return x.s.unary(OpLgamma, x, lg)
}

// Gamma returns Γ(x).
func Gamma(x Var) Var {
	return x.s.unary(OpGamma, x, math.Gamma(x.Val()))
}

// Phi returns the standard normal cumulative distribution function at x.
func Phi(x Var) Var {
	return x.s.unary(OpPhi, x, 0.5*math.Erfc(negInvSqrtTwo*x.Val()))
}

// Hypot returns √(x²+y²) without undue overflow.
func Hypot(x, y Var) Var {
	return x.s.binary(OpHypot, x, y, math.Hypot(x.Val(), y.Val()))
}

// Fdim returns the positive difference max(x-y, 0).
func Fdim(x, y Var) Var {
	return x.s.binary(OpFdim, x, y, math.Max(x.Val()-y.Val(), 0))
}

// Fmin returns the smaller of x and y as a new node. The adjoint flows to
// x on ties.
func Fmin(x, y Var) Var {
	return x.s.binary(OpFmin, x, y, math.Min(x.Val(), y.Val()))
}

// Fmax returns the larger of x and y as a new node. The adjoint flows to
// x on ties.
func Fmax(x, y Var) Var {
	return x.s.binary(OpFmax, x, y, math.Max(x.Val(), y.Val()))
}

func chainErf(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, n.adj*twoOverSqrtPi*math.Exp(-x*x))
}

func chainErfc(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, -n.adj*twoOverSqrtPi*math.Exp(-x*x))
}

func chainLgamma(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*mathext.Digamma(s.val(n.a)))
}

func chainGamma(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*n.val*mathext.Digamma(s.val(n.a)))
}

func chainPhi(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, n.adj*invSqrtTwoPi*math.Exp(-0.5*x*x))
}

func chainHypot(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*s.val(n.a)/n.val)
	s.addAdj(n.b, n.adj*s.val(n.b)/n.val)
}

func chainFdim(s *Stack, n *node) {
	if s.val(n.a) <= s.val(n.b) {
		return
	}
	s.addAdj(n.a, n.adj)
	s.addAdj(n.b, -n.adj)
}

func chainFmin(s *Stack, n *node) {
	if s.val(n.a) <= s.val(n.b) {
		s.addAdj(n.a, n.adj)
	} else {
		s.addAdj(n.b, n.adj)
	}
}

func chainFmax(s *Stack, n *node) {
	if s.val(n.a) >= s.val(n.b) {
		s.addAdj(n.a, n.adj)
	} else {
		s.addAdj(n.b, n.adj)
	}
}
