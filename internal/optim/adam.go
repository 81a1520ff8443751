package optim

import (
	"math"

	"github.com/pkg/errors"
)

// Adam is the Adam optimizer (Kingma & Ba, 2014) over a flat parameter
// vector. It keeps, per parameter, exponential moving averages of the
// gradient (m) and of its square (v), corrected for their zero start:
//
//	m = beta1*m + (1-beta1)*g
//	v = beta2*v + (1-beta2)*g²
//	param -= lr * (m / (1-beta1^t)) / (sqrt(v / (1-beta2^t)) + eps)
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int       // Timestep for bias correction
	m     []float64 // First moment estimates
	v     []float64 // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer, with default hyperparameters where
// the config leaves them at zero:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(config AdamConfig) *Adam {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
	}
}

// Step applies one Adam update to params. The moment buffers are sized on
// the first call.
func (a *Adam) Step(params, grads []float64) error {
	if err := checkDims(params, grads, a.m); err != nil {
		return err
	}
	if a.m == nil {
		a.m = make([]float64, len(params))
		a.v = make([]float64, len(params))
	}
	a.t++

	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for i, g := range grads {
		a.m[i] = a.beta1*a.m[i] + (1.0-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1.0-a.beta2)*g*g

		mHat := a.m[i] / biasCorrection1
		vHat := a.v[i] / biasCorrection2

		params[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
	return nil
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam) GetTimestep() int {
	return a.t
}

// StateDict returns the optimizer state: the moment buffers under "m" and
// "v", and the timestep as a single value under "t". Before the first step,
// returns an empty map.
func (a *Adam) StateDict() map[string][]float64 {
	stateDict := make(map[string][]float64)
	if a.m == nil {
		return stateDict
	}
	stateDict["m"] = append([]float64(nil), a.m...)
	stateDict["v"] = append([]float64(nil), a.v...)
	stateDict["t"] = []float64{float64(a.t)}
	return stateDict
}

// LoadStateDict restores the state exported by StateDict. An empty map
// resets the optimizer to its initial state.
//
// Returns an error if a moment buffer's length doesn't match numParams.
func (a *Adam) LoadStateDict(stateDict map[string][]float64, numParams int) error {
	m, hasM := stateDict["m"]
	v, hasV := stateDict["v"]
	t, hasT := stateDict["t"]
	if !hasM && !hasV && !hasT {
		a.m, a.v, a.t = nil, nil, 0
		return nil
	}
	if !hasM || !hasV || len(t) != 1 {
		return errors.Errorf("optim: incomplete Adam state: needs m, v and a single t")
	}
	if len(m) != numParams || len(v) != numParams {
		return errors.Wrapf(ErrDimension, "moments of %d and %d values for %d parameters", len(m), len(v), numParams)
	}
	a.m = append([]float64(nil), m...)
	a.v = append([]float64(nil), v...)
	a.t = int(t[0])
	return nil
}
