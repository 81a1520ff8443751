package optim

import (
	"math"

	"github.com/born-ml/revad/internal/autodiff"
	"github.com/born-ml/revad/internal/functional"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
)

// MinimizeConfig controls Minimize.
type MinimizeConfig struct {
	MaxIters int     // Iteration budget (default: 1000)
	GradTol  float64 // Stop once the gradient's Euclidean norm is at most GradTol (default: 1e-6)
	LogEvery int     // Log progress with klog.V(1) every LogEvery iterations; 0 disables it
}

// Result of Minimize.
type Result struct {
	X         []float64
	Value     float64
	GradNorm  float64
	Iters     int
	Converged bool
}

// Minimize runs opt from x0 until the gradient norm drops below cfg.GradTol
// or cfg.MaxIters steps were taken. Every evaluation is nested in s, so the
// stack's memory stays flat however many iterations run.
func Minimize(s *autodiff.Stack, f functional.Func, x0 []float64, opt Optimizer, cfg MinimizeConfig) (Result, error) {
	if cfg.MaxIters == 0 {
		cfg.MaxIters = 1000
	}
	if cfg.GradTol == 0 {
		cfg.GradTol = 1e-6
	}
	res := Result{X: append([]float64(nil), x0...)}
	for res.Iters = 0; ; res.Iters++ {
		fx, grad, err := functional.Gradient(s, f, res.X)
		if err != nil {
			return res, errors.WithMessagef(err, "minimize, iteration %d", res.Iters)
		}
		res.Value, res.GradNorm = fx, floats.Norm(grad, 2)
		if math.IsNaN(res.Value) || math.IsNaN(res.GradNorm) {
			return res, errors.Errorf("minimize: NaN objective or gradient at iteration %d", res.Iters)
		}
		if cfg.LogEvery > 0 && res.Iters%cfg.LogEvery == 0 {
			klog.V(1).Infof("minimize: iteration %d, f=%g, |grad|=%g", res.Iters, res.Value, res.GradNorm)
		}
		if res.GradNorm <= cfg.GradTol {
			res.Converged = true
			return res, nil
		}
		if res.Iters == cfg.MaxIters {
			return res, nil
		}
		if err := opt.Step(res.X, grad); err != nil {
			return res, err
		}
	}
}
