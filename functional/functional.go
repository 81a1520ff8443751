// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package functional computes values together with gradients, Jacobians and
// directional derivatives of functions of autodiff variables.
//
// Each call runs nested in the given Stack: the caller's graph survives it
// and the memory it used is reclaimed.
//
// Example:
//
//	s := autodiff.New()
//	fx, grad, err := functional.Gradient(s, func(x []autodiff.Var) autodiff.Var {
//	    return autodiff.Square(x[0]).Add(x[0].Mul(x[1]))
//	}, []float64{1, 2})
package functional

import (
	"github.com/born-ml/revad/autodiff"
	"github.com/born-ml/revad/internal/functional"
	"github.com/born-ml/revad/internal/parallel"
)

// Func is a scalar function of a vector of variables.
type Func = functional.Func

// VectorFunc is a vector-valued function of a vector of variables.
type VectorFunc = functional.VectorFunc

// Result is the value and gradient of a function at one point.
type Result = functional.Result

// Errors, test with errors.Is.
var (
	ErrDimension        = functional.ErrDimension
	ErrGradientMismatch = functional.ErrGradientMismatch
)

// Gradient returns f(x) and ∇f(x).
func Gradient(s *autodiff.Stack, f Func, x []float64) (float64, []float64, error) {
	return functional.Gradient(s, f, x)
}

// GradientReset is Gradient followed by a full Reset of s.
func GradientReset(s *autodiff.Stack, f Func, x []float64) (float64, []float64, error) {
	return functional.GradientReset(s, f, x)
}

// Jacobian returns f(x) and jac[i][j] = ∂fᵢ/∂xⱼ.
func Jacobian(s *autodiff.Stack, f VectorFunc, x []float64) ([]float64, [][]float64, error) {
	return functional.Jacobian(s, f, x)
}

// GradientDotVector returns f(x) and ∇f(x)·v.
func GradientDotVector(s *autodiff.Stack, f Func, x, v []float64) (float64, float64, error) {
	return functional.GradientDotVector(s, f, x, v)
}

// Value evaluates f at x without a reverse sweep.
func Value(s *autodiff.Stack, f Func, x []float64) (float64, error) {
	return functional.Value(s, f, x)
}

// CheckGradient compares the reverse-mode gradient of f at x against central
// finite differences, with relative tolerance tol.
func CheckGradient(s *autodiff.Stack, f Func, x []float64, tol float64) error {
	return functional.CheckGradient(s, f, x, tol)
}

// GradientBatch evaluates f and its gradient at each point on up to
// workers goroutines, one Stack per goroutine. workers <= 0 uses one per CPU.
func GradientBatch(f Func, points [][]float64, workers int, opts ...autodiff.Option) ([]Result, error) {
	cfg := parallel.DefaultConfig()
	if workers > 0 {
		cfg.NumWorkers = workers
	}
	return functional.GradientBatch(f, points, cfg, opts...)
}
