package autodiff

import "math"

// Trigonometric and hyperbolic functions, in radians.

// Sin returns the sine of x.
//
//	∂/∂x = cos(x)
func Sin(x Var) Var { return x.s.unary(OpSin, x, math.Sin(x.Val())) }

// Cos returns the cosine of x.
//
//	∂/∂x = -sin(x)
func Cos(x Var) Var { return x.s.unary(OpCos, x, math.Cos(x.Val())) }

// Tan returns the tangent of x.
//
//	∂/∂x = 1 + tan²(x)
func Tan(x Var) Var { return x.s.unary(OpTan, x, math.Tan(x.Val())) }

// Asin returns the arcsine of x, NaN outside [-1, 1].
//
//	∂/∂x = 1/√(1-x²)
func Asin(x Var) Var { return x.s.unary(OpAsin, x, math.Asin(x.Val())) }

// Acos returns the arccosine of x, NaN outside [-1, 1].
//
//	∂/∂x = -1/√(1-x²)
func Acos(x Var) Var { return x.s.unary(OpAcos, x, math.Acos(x.Val())) }

// Atan returns the arctangent of x.
//
//	∂/∂x = 1/(1+x²)
func Atan(x Var) Var { return x.s.unary(OpAtan, x, math.Atan(x.Val())) }

// Sinh returns the hyperbolic sine of x.
//
//	∂/∂x = cosh(x)
func Sinh(x Var) Var { return x.s.unary(OpSinh, x, math.Sinh(x.Val())) }

// Cosh returns the hyperbolic cosine of x.
//
//	∂/∂x = sinh(x)
func Cosh(x Var) Var { return x.s.unary(OpCosh, x, math.Cosh(x.Val())) }

// Tanh returns the hyperbolic tangent of x.
//
//	∂/∂x = 1 - tanh²(x)
func Tanh(x Var) Var { return x.s.unary(OpTanh, x, math.Tanh(x.Val())) }

// Asinh returns the inverse hyperbolic sine of x.
//
//	∂/∂x = 1/√(x²+1)
func Asinh(x Var) Var { return x.s.unary(OpAsinh, x, math.Asinh(x.Val())) }

// Acosh returns the inverse hyperbolic cosine of x, NaN below 1.
//
//	∂/∂x = 1/√(x²-1)
func Acosh(x Var) Var { return x.s.unary(OpAcosh, x, math.Acosh(x.Val())) }

// Atanh returns the inverse hyperbolic tangent of x, NaN outside [-1, 1].
//
//	∂/∂x = 1/(1-x²)
func Atanh(x Var) Var { return x.s.unary(OpAtanh, x, math.Atanh(x.Val())) }

// Atan2 returns the angle of the point (x, y), i.e. atan(y/x) in the right
// quadrant.
//
//	∂/∂y = x/(x²+y²), ∂/∂x = -y/(x²+y²)
func Atan2(y, x Var) Var {
	return y.s.binary(OpAtan2, y, x, math.Atan2(y.Val(), x.Val()))
}

// Atan2Scalar returns atan2(y, x) for a constant x.
func Atan2Scalar(y Var, x float64) Var {
	return y.s.scalar(OpAtan2Scalar, y, x, math.Atan2(y.Val(), x))
}

// ScalarAtan2 returns atan2(y, x) for a constant y.
func ScalarAtan2(y float64, x Var) Var {
	return x.s.scalar(OpScalarAtan2, x, y, math.Atan2(y, x.Val()))
}

func chainSin(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*math.Cos(s.val(n.a)))
}

func chainCos(s *Stack, n *node) {
	s.addAdj(n.a, -n.adj*math.Sin(s.val(n.a)))
}

func chainTan(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*(1+n.val*n.val))
}

func chainAsin(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, n.adj/math.Sqrt(1-x*x))
}

func chainAcos(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, -n.adj/math.Sqrt(1-x*x))
}

func chainAtan(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, n.adj/(1+x*x))
}

func chainAtan2(s *Stack, n *node) {
	y, x := s.val(n.a), s.val(n.b)
	d := x*x + y*y
	s.addAdj(n.a, n.adj*x/d)
	s.addAdj(n.b, -n.adj*y/d)
}

func chainAtan2Scalar(s *Stack, n *node) {
	y, x := s.val(n.a), n.k
	s.addAdj(n.a, n.adj*x/(x*x+y*y))
}

func chainScalarAtan2(s *Stack, n *node) {
	y, x := n.k, s.val(n.a)
	s.addAdj(n.a, -n.adj*y/(x*x+y*y))
}

func chainSinh(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*math.Cosh(s.val(n.a)))
}

func chainCosh(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*math.Sinh(s.val(n.a)))
}

func chainTanh(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*(1-n.val*n.val))
}

func chainAsinh(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, n.adj/math.Sqrt(x*x+1))
}

func chainAcosh(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, n.adj/math.Sqrt(x*x-1))
}

func chainAtanh(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, n.adj/(1-x*x))
}
