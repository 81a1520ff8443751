package optim

import "github.com/pkg/errors"

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Momentum helps accelerate SGD in relevant directions and dampens oscillations.
type SGD struct {
	lr       float64
	momentum float64
	velocity []float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(config SGDConfig) *SGD {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		lr:       config.LR,
		momentum: config.Momentum,
	}
}

// Step performs a single optimization step.
//
// Applies gradient descent update to all parameters:
//   - Without momentum: param -= lr * grad
//   - With momentum: velocity = momentum * velocity + grad, param -= lr * velocity
func (s *SGD) Step(params, grads []float64) error {
	if err := checkDims(params, grads, s.velocity); err != nil {
		return err
	}
	if s.momentum == 0 {
		for i, g := range grads {
			params[i] -= s.lr * g
		}
		return nil
	}

	if s.velocity == nil {
		s.velocity = make([]float64, len(params))
	}
	for i, g := range grads {
		s.velocity[i] = s.momentum*s.velocity[i] + g
		params[i] -= s.lr * s.velocity[i]
	}
	return nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns the optimizer state.
//
// For SGD with momentum, this exports the velocity buffer under "velocity".
// Without momentum, or before the first step, returns an empty map.
func (s *SGD) StateDict() map[string][]float64 {
	stateDict := make(map[string][]float64)
	if s.momentum == 0 || s.velocity == nil {
		return stateDict
	}
	stateDict["velocity"] = append([]float64(nil), s.velocity...)
	return stateDict
}

// LoadStateDict restores the state exported by StateDict. If momentum is 0,
// the provided state is ignored.
//
// Returns an error if the velocity length doesn't match numParams.
func (s *SGD) LoadStateDict(stateDict map[string][]float64, numParams int) error {
	if s.momentum == 0 {
		return nil
	}
	velocity, exists := stateDict["velocity"]
	if !exists {
		// Will be initialized on first step
		s.velocity = nil
		return nil
	}
	if len(velocity) != numParams {
		return errors.Wrapf(ErrDimension, "velocity of %d values for %d parameters", len(velocity), numParams)
	}
	s.velocity = append([]float64(nil), velocity...)
	return nil
}
