// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation of scalar
// functions.
//
// Operations on Vars record nodes on a Stack. Grad runs one reverse sweep
// from a root and accumulates ∂root/∂v into the adjoint of every variable v
// the root depends on. Checkpoints make nested evaluations cheap: everything
// recorded after PushCheckpoint is discarded by the matching PopCheckpoint.
//
// Example:
//
//	import "github.com/born-ml/revad/autodiff"
//
//	func main() {
//	    s := autodiff.New()
//	    x := s.NewVar(2)
//	    y := s.NewVar(3)
//	    z := autodiff.Log(x).Add(x.Mul(y))
//
//	    if err := s.Grad(z); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(x.Adj(), y.Adj()) // 3.5 2
//	}
//
// A Stack is owned by one goroutine at a time; run independent evaluations
// concurrently on independent stacks.
package autodiff

import "github.com/born-ml/revad/internal/autodiff"

// Stack records the expression graph and owns its memory.
type Stack = autodiff.Stack

// Var is a handle to a value on a Stack.
type Var = autodiff.Var

// Option configures a Stack.
type Option = autodiff.Option

// Checkpoint identifies one PushCheckpoint call.
type Checkpoint = autodiff.Checkpoint

// Stats is a snapshot of a Stack's memory.
type Stats = autodiff.Stats

// Releaser is auxiliary memory owned by a Stack.
type Releaser = autodiff.Releaser

// Chainer is the reverse step of an aggregate node.
type Chainer = autodiff.Chainer

// AllocID identifies a retained Releaser.
type AllocID = autodiff.AllocID

// New creates an empty Stack.
//
// Example:
//
//	s := autodiff.New(autodiff.WithCapacity(1<<16), autodiff.WithNaNCheck(true))
func New(opts ...Option) *Stack {
	return autodiff.New(opts...)
}

// WithCapacity sets the number of nodes preallocated by New.
func WithCapacity(nodes int) Option {
	return autodiff.WithCapacity(nodes)
}

// WithNaNCheck logs a warning after each sweep that produced NaN adjoints.
func WithNaNCheck(enabled bool) Option {
	return autodiff.WithNaNCheck(enabled)
}

// WithName names the Stack in log messages and errors.
func WithName(name string) Option {
	return autodiff.WithName(name)
}

// Usage errors, test with errors.Is.
var (
	ErrNoCheckpoint    = autodiff.ErrNoCheckpoint
	ErrCheckpointOrder = autodiff.ErrCheckpointOrder
	ErrNestedActive    = autodiff.ErrNestedActive
	ErrNoRoot          = autodiff.ErrNoRoot
	ErrUninitialized   = autodiff.ErrUninitialized
	ErrStaleVar        = autodiff.ErrStaleVar
	ErrMixedStacks     = autodiff.ErrMixedStacks
	ErrLength          = autodiff.ErrLength
)
