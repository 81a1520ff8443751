// Package optim implements first-order optimizers over plain parameter
// vectors, driven by reverse-mode gradients.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - Minimize: a loop evaluating value and gradient with an autodiff Stack
//
// Example usage:
//
//	s := autodiff.New()
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.05})
//	res, err := optim.Minimize(s, f, x0, opt, optim.MinimizeConfig{MaxIters: 500})
package optim

import "github.com/pkg/errors"

// ErrDimension is returned when parameters and gradients have different
// lengths.
var ErrDimension = errors.New("optim: dimension mismatch")

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update parameters in place based on their gradients to
// minimize an objective.
type Optimizer interface {
	// Step applies one gradient update to params, in place.
	//
	// params and grads must have the same length, and the same length on
	// every call: per-parameter state (momentum, moments) is kept by index.
	Step(params, grads []float64) error

	// GetLR returns the current learning rate.
	//
	// Useful for monitoring and learning rate scheduling.
	GetLR() float64

	// SetLR updates the learning rate.
	SetLR(lr float64)
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

func checkDims(params, grads, state []float64) error {
	if len(params) != len(grads) {
		return errors.Wrapf(ErrDimension, "%d parameters, %d gradients", len(params), len(grads))
	}
	if state != nil && len(state) != len(params) {
		return errors.Wrapf(ErrDimension, "%d parameters, optimizer state for %d", len(params), len(state))
	}
	return nil
}
