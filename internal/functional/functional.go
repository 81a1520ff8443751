// Package functional evaluates functions of autodiff variables together with
// their derivatives, the way a sampler or an optimizer calls into the
// engine: "value and gradient of f at x".
//
// Every evaluation runs nested inside the given Stack, so whatever graph the
// caller already holds survives it, and the memory the evaluation used is
// reclaimed when it returns.
package functional

import (
	"github.com/born-ml/revad/internal/autodiff"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	// ErrDimension is returned when vector arguments have different lengths.
	ErrDimension = errors.New("functional: dimension mismatch")

	// ErrGradientMismatch is returned by CheckGradient when reverse-mode and
	// finite-difference gradients disagree.
	ErrGradientMismatch = errors.New("functional: gradient mismatch")
)

// Func is a scalar function of a vector of variables.
type Func func(x []autodiff.Var) autodiff.Var

// VectorFunc is a vector-valued function of a vector of variables.
type VectorFunc func(x []autodiff.Var) []autodiff.Var

// Gradient returns f(x) and ∇f(x).
//
// A panic raised inside f with an error value (a stale Var, an operand from
// another Stack, ...) is returned as an error.
func Gradient(s *autodiff.Stack, f Func, x []float64) (fx float64, grad []float64, err error) {
	grad = make([]float64, len(x))
	err = s.Nested(func() error {
		return exceptions.TryCatch[error](func() {
			vars := s.NewVars(x)
			y := f(vars)
			if err := s.Grad(y); err != nil {
				panic(err)
			}
			fx = y.Val()
			for i, v := range vars {
				grad[i] = v.Adj()
			}
			klog.V(1).Infof("%s: gradient of %d variables, %d nodes", s.Name(), len(x), s.NumNodes())
		})
	})
	if err != nil {
		return 0, nil, errors.WithMessage(err, "gradient")
	}
	return fx, grad, nil
}

// GradientReset is Gradient for a top-level owner: it requires that no
// checkpoint be active and resets the whole stack afterwards.
func GradientReset(s *autodiff.Stack, f Func, x []float64) (float64, []float64, error) {
	if s.Depth() > 0 {
		return 0, nil, errors.Wrapf(autodiff.ErrNestedActive, "GradientReset at depth %d", s.Depth())
	}
	fx, grad, err := Gradient(s, f, x)
	if resetErr := s.Reset(); resetErr != nil && err == nil {
		err = resetErr
	}
	return fx, grad, err
}

// Jacobian returns f(x) and the Jacobian of f at x: jac[i][j] = ∂fᵢ/∂xⱼ.
// One reverse sweep is run per output, with the adjoints zeroed in between.
func Jacobian(s *autodiff.Stack, f VectorFunc, x []float64) (fx []float64, jac [][]float64, err error) {
	err = s.Nested(func() error {
		return exceptions.TryCatch[error](func() {
			vars := s.NewVars(x)
			ys := f(vars)
			fx = make([]float64, len(ys))
			jac = make([][]float64, len(ys))
			for i, y := range ys {
				if i > 0 {
					s.ZeroAdjoints()
				}
				if err := s.Grad(y); err != nil {
					panic(err)
				}
				fx[i] = y.Val()
				jac[i] = make([]float64, len(vars))
				for j, v := range vars {
					jac[i][j] = v.Adj()
				}
			}
		})
	})
	if err != nil {
		return nil, nil, errors.WithMessage(err, "jacobian")
	}
	return fx, jac, nil
}

// GradientDotVector returns f(x) and the directional derivative ∇f(x)·v.
func GradientDotVector(s *autodiff.Stack, f Func, x, v []float64) (fx, dot float64, err error) {
	if len(x) != len(v) {
		return 0, 0, errors.Wrapf(ErrDimension, "GradientDotVector: %d variables, direction of %d", len(x), len(v))
	}
	fx, grad, err := Gradient(s, f, x)
	if err != nil {
		return 0, 0, err
	}
	for i, g := range grad {
		dot += g * v[i]
	}
	return fx, dot, nil
}

// Value evaluates f at x without running a sweep.
func Value(s *autodiff.Stack, f Func, x []float64) (fx float64, err error) {
	err = s.Nested(func() error {
		return exceptions.TryCatch[error](func() {
			fx = f(s.NewVars(x)).Val()
		})
	})
	return fx, err
}
