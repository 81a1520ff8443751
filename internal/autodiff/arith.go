package autodiff

// Arithmetic operations. Each one computes its value eagerly, allocates a
// node whose operands are the Vars it was given and appends it to the tape.
// Plain float64 operands are constants: they are stored on the node and
// receive no adjoint.

// unary records op over x with the already computed value val.
func (s *Stack) unary(op Op, x Var, val float64) Var {
	if isNaN(s.operand(x).val) {
		val = nan()
	}
	return s.push(node{op: op, val: val, a: x.id, b: noNode}, true)
}

// binary records op over x and y.
func (s *Stack) binary(op Op, x, y Var, val float64) Var {
	if isNaN(s.operand(x).val) || isNaN(s.operand(y).val) {
		val = nan()
	}
	return s.push(node{op: op, val: val, a: x.id, b: y.id}, true)
}

// scalar records op over x and the constant k.
func (s *Stack) scalar(op Op, x Var, k, val float64) Var {
	if isNaN(s.operand(x).val) || isNaN(k) {
		val = nan()
	}
	return s.push(node{op: op, val: val, k: k, a: x.id, b: noNode}, true)
}

// Neg returns -v.
func (v Var) Neg() Var {
	return v.s.unary(OpNeg, v, -v.Val())
}

// Add returns v + w.
//
//	∂/∂v = 1, ∂/∂w = 1
func (v Var) Add(w Var) Var {
	return v.s.binary(OpAdd, v, w, v.Val()+w.Val())
}

// AddScalar returns v + c.
func (v Var) AddScalar(c float64) Var {
	return v.s.scalar(OpAddScalar, v, c, v.Val()+c)
}

// Sub returns v - w.
//
//	∂/∂v = 1, ∂/∂w = -1
func (v Var) Sub(w Var) Var {
	return v.s.binary(OpSub, v, w, v.Val()-w.Val())
}

// SubScalar returns v - c.
func (v Var) SubScalar(c float64) Var {
	return v.s.scalar(OpSubScalar, v, c, v.Val()-c)
}

// ScalarSub returns c - v.
func ScalarSub(c float64, v Var) Var {
	return v.s.scalar(OpScalarSub, v, c, c-v.Val())
}

// Mul returns v * w.
//
//	∂/∂v = w, ∂/∂w = v
func (v Var) Mul(w Var) Var {
	return v.s.binary(OpMul, v, w, v.Val()*w.Val())
}

// MulScalar returns v * c.
func (v Var) MulScalar(c float64) Var {
	return v.s.scalar(OpMulScalar, v, c, v.Val()*c)
}

// Div returns v / w. Dividing by zero follows IEEE 754: ±Inf for a non-zero
// numerator, NaN (value and adjoints) for 0/0.
//
//	∂/∂v = 1/w, ∂/∂w = -v/w²
func (v Var) Div(w Var) Var {
	return v.s.binary(OpDiv, v, w, v.Val()/w.Val())
}

// DivScalar returns v / c.
func (v Var) DivScalar(c float64) Var {
	return v.s.scalar(OpDivScalar, v, c, v.Val()/c)
}

// ScalarDiv returns c / v.
func ScalarDiv(c float64, v Var) Var {
	return v.s.scalar(OpScalarDiv, v, c, c/v.Val())
}

// Inv returns 1 / v.
func Inv(v Var) Var {
	return ScalarDiv(1, v)
}

// Square returns v².
func Square(v Var) Var {
	x := v.Val()
	return v.s.unary(OpSquare, v, x*x)
}

// Fma returns a*b + c as a single node.
func Fma(a, b, c Var) Var {
	s := a.s
	av, bv, cv := a.Val(), b.Val(), c.Val()
	val := av*bv + cv
	refs := s.refs.Extend(3)
	ids := s.refs.Slice(refs)
	for i, v := range [...]Var{a, b, c} {
		if isNaN(s.operand(v).val) {
			val = nan()
		}
		ids[i] = v.id
	}
	return s.push(node{op: OpFma, val: val, a: noNode, b: noNode, operands: refs}, true)
}

func chainNeg(s *Stack, n *node) {
	s.addAdj(n.a, -n.adj)
}

func chainAdd(s *Stack, n *node) {
	s.addAdj(n.a, n.adj)
	s.addAdj(n.b, n.adj)
}

func chainPassA(s *Stack, n *node) {
	s.addAdj(n.a, n.adj)
}

func chainNegA(s *Stack, n *node) {
	s.addAdj(n.a, -n.adj)
}

func chainSub(s *Stack, n *node) {
	s.addAdj(n.a, n.adj)
	s.addAdj(n.b, -n.adj)
}

func chainMul(s *Stack, n *node) {
	av, bv := s.val(n.a), s.val(n.b)
	s.addAdj(n.a, n.adj*bv)
	s.addAdj(n.b, n.adj*av)
}

func chainMulScalar(s *Stack, n *node) {
	s.addAdj(n.a, n.adj*n.k)
}

func chainDiv(s *Stack, n *node) {
	av, bv := s.val(n.a), s.val(n.b)
	s.addAdj(n.a, n.adj/bv)
	s.addAdj(n.b, -n.adj*av/(bv*bv))
}

func chainDivScalar(s *Stack, n *node) {
	s.addAdj(n.a, n.adj/n.k)
}

func chainScalarDiv(s *Stack, n *node) {
	x := s.val(n.a)
	s.addAdj(n.a, -n.adj*n.k/(x*x))
}

func chainSquare(s *Stack, n *node) {
	s.addAdj(n.a, 2*n.adj*s.val(n.a))
}

func chainFma(s *Stack, n *node) {
	ids := s.refs.Slice(n.operands)
	av, bv := s.val(ids[0]), s.val(ids[1])
	s.addAdj(ids[0], n.adj*bv)
	s.addAdj(ids[1], n.adj*av)
	s.addAdj(ids[2], n.adj)
}
