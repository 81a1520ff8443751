package autodiff

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Releaser is an auxiliary allocation whose lifetime must match the nodes
// created alongside it, e.g. a cached matrix factorization. Unlike plain
// nodes, which are reclaimed by forgetting them, every Releaser is visited
// and released individually when its region of the stack is discarded.
type Releaser interface {
	Release()
}

// AllocID addresses an auxiliary allocation.
type AllocID int

// Retain registers r so that it is released when the enclosing checkpoint is
// popped or the stack is reset.
func (s *Stack) Retain(r Releaser) AllocID {
	s.allocs = append(s.allocs, r)
	return AllocID(len(s.allocs) - 1)
}

// Alloc returns the auxiliary allocation registered under id.
func (s *Stack) Alloc(id AllocID) Releaser {
	if id < 0 || int(id) >= len(s.allocs) {
		exceptions.Panicf("%s: auxiliary allocation %d out of range [0, %d)", s.name, id, len(s.allocs))
	}
	return s.allocs[id]
}

// NumAllocs returns the number of live auxiliary allocations.
func (s *Stack) NumAllocs() int {
	return len(s.allocs)
}

// releaseFrom releases allocations [from, len) newest first and drops them.
func (s *Stack) releaseFrom(from int) {
	for i := len(s.allocs) - 1; i >= from; i-- {
		s.allocs[i].Release()
		s.allocs[i] = nil
	}
	s.allocs = s.allocs[:from]
}

// Chainer is the propagation rule of an aggregate node: an operation over
// many operands implemented as a single node, such as a matrix solve. Chain
// receives the node's final adjoint and must add its contribution to each
// operand with Var.Accumulate. It must not create nodes.
type Chainer interface {
	Chain(adj float64)
}

// NewAggregate records an aggregate node with forward value val. If c also
// implements Releaser it is retained as an auxiliary allocation.
//
// Operations with several outputs record one aggregate node (its value is
// usually irrelevant) followed by their outputs created with NewNoChain: the
// outputs are on the no-chain tape and the aggregate reads their adjoints.
// Because the aggregate precedes every consumer of its outputs, all their
// contributions are in place when its Chain runs.
func (s *Stack) NewAggregate(val float64, c Chainer) Var {
	if c == nil {
		exceptions.Panicf("%s: nil Chainer", s.name)
	}
	if r, ok := c.(Releaser); ok {
		s.Retain(r)
	}
	s.chainers = append(s.chainers, c)
	return s.push(node{op: OpAggregate, val: val, a: NodeID(len(s.chainers) - 1), b: noNode}, true)
}

// NewNoChain records an output node of an aggregate: a node with value val
// and no operands, placed on the no-chain part of the tape. The aggregate's
// Chainer reads its adjoint with Var.Adj.
func (s *Stack) NewNoChain(val float64) Var {
	return s.push(node{op: OpLeaf, val: val, a: noNode, b: noNode}, false)
}

// Precomputed records a node whose partial derivatives with respect to each
// operand are already known: during the sweep operands[i] receives
// adj*partials[i]. Operands and partials are copied into the stack's arenas.
func (s *Stack) Precomputed(val float64, operands []Var, partials []float64) Var {
	if len(operands) != len(partials) {
		panic(errors.Wrapf(ErrLength, "Precomputed: %d operands, %d partials", len(operands), len(partials)))
	}
	refs := s.refs.Extend(len(operands))
	ids := s.refs.Slice(refs)
	for i, v := range operands {
		s.operand(v)
		ids[i] = v.id
	}
	consts := s.consts.AllocSlice(partials)
	for _, v := range operands {
		if isNaN(v.Val()) {
			val = nan()
			break
		}
	}
	return s.push(node{op: OpPrecomputed, val: val, a: noNode, b: noNode, operands: refs, consts: consts}, true)
}

func chainPrecomputed(s *Stack, n *node) {
	ids := s.refs.Slice(n.operands)
	partials := s.consts.Slice(n.consts)
	for i, id := range ids {
		s.addAdj(id, n.adj*partials[i])
	}
}

func chainAggregate(s *Stack, n *node) {
	s.chainers[n.a].Chain(n.adj)
}
