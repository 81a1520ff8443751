// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides first-order optimizers over plain parameter
// vectors, and a minimization loop that takes its gradients from an
// autodiff Stack.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//   - Minimize: evaluate, step, repeat until the gradient vanishes
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/revad/autodiff"
//	    "github.com/born-ml/revad/optim"
//	)
//
//	func main() {
//	    s := autodiff.New()
//	    f := func(x []autodiff.Var) autodiff.Var {
//	        return autodiff.Square(x[0].SubScalar(3))
//	    }
//
//	    res, err := optim.Minimize(s, f, []float64{0},
//	        optim.NewAdam(optim.AdamConfig{LR: 0.05}),
//	        optim.MinimizeConfig{MaxIters: 2000},
//	    )
//	}
//
// # Manual Loop Pattern
//
//	params := []float64{0, 0}
//	for range numSteps {
//	    // 1. Value and gradient, memory reclaimed on return
//	    _, grads, err := functional.Gradient(s, f, params)
//
//	    // 2. Update parameters in place
//	    err = optimizer.Step(params, grads)
//	}
package optim
