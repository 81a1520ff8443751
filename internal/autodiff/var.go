package autodiff

import (
	"strconv"

	"github.com/pkg/errors"
)

// Var is a handle to a node of a Stack. It is a small value, meant to be
// copied freely; it never owns the node, whose lifetime is governed by the
// Stack alone (checkpoint pops and resets).
//
// The zero Var is uninitialized: any use other than IsZero panics.
type Var struct {
	s   *Stack
	id  NodeID
	gen uint32
}

// NewVar promotes x to a leaf of the graph. Leaves have no operands, so they
// are recorded on the no-chain part of the tape.
func (s *Stack) NewVar(x float64) Var {
	return s.push(node{op: OpLeaf, val: x, a: noNode, b: noNode}, false)
}

// Constant promotes a literal where an operation needs a Var. It is a leaf
// like any other: its adjoint is computed but nobody reads it.
func (s *Stack) Constant(x float64) Var {
	return s.NewVar(x)
}

// NewVars promotes every value of xs.
func (s *Stack) NewVars(xs []float64) []Var {
	vs := make([]Var, len(xs))
	for i, x := range xs {
		vs[i] = s.NewVar(x)
	}
	return vs
}

// IsZero reports whether v is the uninitialized Var.
func (v Var) IsZero() bool {
	return v.s == nil
}

// Stack returns the Stack owning v.
func (v Var) Stack() *Stack {
	return v.s
}

// ID returns the index of v's node.
func (v Var) ID() NodeID {
	return v.id
}

// Val returns the forward value.
func (v Var) Val() float64 {
	return v.node().val
}

// Adj returns the adjoint, meaningful after a gradient sweep.
func (v Var) Adj() float64 {
	return v.node().adj
}

// Op returns the operation that created v.
func (v Var) Op() Op {
	return v.node().op
}

// Accumulate adds d to v's adjoint. It is meant for Chainer implementations
// propagating an aggregate node's adjoint to its operands.
func (v Var) Accumulate(d float64) {
	v.node().adj += d
}

// String implements fmt.Stringer.
func (v Var) String() string {
	if v.s == nil {
		return "Var(uninitialized)"
	}
	if !v.s.valid(v) {
		return "Var(stale)"
	}
	return strconv.FormatFloat(v.Val(), 'g', -1, 64)
}

// node validates v and returns its node. Invalid handles panic with an error
// wrapping ErrUninitialized or ErrStaleVar.
func (v Var) node() *node {
	if v.s == nil {
		panic(errors.WithStack(ErrUninitialized))
	}
	if !v.s.valid(v) {
		panic(errors.Wrapf(ErrStaleVar, "%s: node %d (generation %d)", v.s.name, v.id, v.gen))
	}
	return v.s.at(v.id)
}

func (s *Stack) valid(v Var) bool {
	return v.s == s && v.id >= 0 && int(v.id) < s.nodes.Len() && s.at(v.id).gen == v.gen
}

// operand validates that v can be an operand of an operation on s.
func (s *Stack) operand(v Var) *node {
	if v.s != nil && v.s != s {
		panic(errors.Wrapf(ErrMixedStacks, "operand of %q used on %q", v.s.name, s.name))
	}
	return v.node()
}
