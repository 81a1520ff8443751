// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/revad/autodiff"
	"github.com/born-ml/revad/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// ErrDimension is returned when parameters and gradients differ in length.
var ErrDimension = optim.ErrDimension

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// Minimization

// MinimizeConfig controls Minimize.
type MinimizeConfig = optim.MinimizeConfig

// Result of Minimize.
type Result = optim.Result

// Minimize runs opt from x0 until the gradient norm of f drops below
// cfg.GradTol or cfg.MaxIters steps were taken.
func Minimize(s *autodiff.Stack, f func([]autodiff.Var) autodiff.Var, x0 []float64, opt Optimizer, cfg MinimizeConfig) (Result, error) {
	return optim.Minimize(s, f, x0, opt, cfg)
}
