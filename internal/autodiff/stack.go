// Package autodiff implements reverse-mode automatic differentiation over
// scalar float64 computations.
//
// A Stack is the whole mutable state of one computation: an arena of nodes,
// the tape recording their creation order, the auxiliary allocations tied to
// node lifetimes and the stack of nested checkpoints. Vars are small handles
// into a Stack; every arithmetic operation on Vars allocates a node and
// appends it to the tape, so ordinary code builds the graph as a side effect.
//
// Usage:
//
//	s := autodiff.New()
//	x := s.NewVar(3)
//	y := s.NewVar(4)
//	f := x.Mul(y)
//	if err := s.Grad(f); err != nil { ... }
//	fmt.Println(f.Val(), x.Adj(), y.Adj()) // 12 4 3
//
// A Stack is owned by one goroutine at a time. Independent computations
// running concurrently (for instance several sampler chains) must each use
// their own Stack.
package autodiff

import (
	"github.com/born-ml/revad/internal/arena"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const defaultCapacity = 1024

// Stack holds the graph of one computation.
type Stack struct {
	name     string
	nanCheck bool

	nodes  *arena.Arena[node]
	refs   *arena.Arena[NodeID]
	consts *arena.Arena[float64]

	tape    []NodeID // chaining nodes, in creation order
	noChain []NodeID // nodes whose rule never needs to run

	allocs   []Releaser
	chainers []Chainer

	checkpoints  []checkpoint
	checkpointID uint64
	gen          uint32
}

// Option configures a Stack.
type Option func(*Stack)

// WithCapacity pre-sizes the node arena.
func WithCapacity(nodes int) Option {
	return func(s *Stack) {
		s.nodes = arena.New[node](nodes)
		s.refs = arena.New[NodeID](nodes)
		s.consts = arena.New[float64](nodes)
		s.tape = make([]NodeID, 0, nodes)
	}
}

// WithNaNCheck makes Grad log the first node holding a NaN value or adjoint.
func WithNaNCheck(enabled bool) Option {
	return func(s *Stack) {
		s.nanCheck = enabled
	}
}

// WithName sets the name used in log lines.
func WithName(name string) Option {
	return func(s *Stack) {
		s.name = name
	}
}

// New creates an empty Stack.
func New(opts ...Option) *Stack {
	s := &Stack{name: "stack"}
	WithCapacity(defaultCapacity)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the name given with WithName.
func (s *Stack) Name() string {
	return s.name
}

// Len returns the number of nodes on the chaining part of the tape.
func (s *Stack) Len() int {
	return len(s.tape)
}

// NoChainLen returns the number of nodes on the no-chain part of the tape.
func (s *Stack) NoChainLen() int {
	return len(s.noChain)
}

// NumNodes returns the number of live nodes.
func (s *Stack) NumNodes() int {
	return s.nodes.Len()
}

// Reset discards every node and releases every auxiliary allocation.
// All Vars of the stack become stale. It fails with ErrNestedActive while
// checkpoints are active: only the top-level owner may reset.
func (s *Stack) Reset() error {
	if len(s.checkpoints) > 0 {
		return errors.Wrapf(ErrNestedActive, "%s: reset with %d active checkpoints", s.name, len(s.checkpoints))
	}
	klog.V(1).Infof("%s: reset, discarding %d nodes and %d auxiliary allocations",
		s.name, s.nodes.Len(), len(s.allocs))
	s.releaseFrom(0)
	clear(s.chainers)
	s.chainers = s.chainers[:0]
	s.tape = s.tape[:0]
	s.noChain = s.noChain[:0]
	s.nodes.Reset()
	s.refs.Reset()
	s.consts.Reset()
	s.gen++
	return nil
}

// FreeMemory resets the stack and returns its backing memory to the Go
// runtime.
func (s *Stack) FreeMemory() error {
	if err := s.Reset(); err != nil {
		return err
	}
	s.nodes.Release()
	s.refs.Release()
	s.consts.Release()
	s.tape = nil
	s.noChain = nil
	s.allocs = nil
	s.chainers = nil
	return nil
}

// push stores n and records it on the chaining or no-chain tape.
func (s *Stack) push(n node, chain bool) Var {
	n.gen = s.gen
	id := s.nodes.Alloc(n)
	if chain {
		s.tape = append(s.tape, id)
	} else {
		s.noChain = append(s.noChain, id)
	}
	return Var{s: s, id: id, gen: s.gen}
}

func (s *Stack) at(id NodeID) *node {
	return s.nodes.At(id)
}

func (s *Stack) val(id NodeID) float64 {
	return s.nodes.At(id).val
}

func (s *Stack) addAdj(id NodeID, d float64) {
	s.nodes.At(id).adj += d
}
