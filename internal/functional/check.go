package functional

import (
	"math"

	"github.com/born-ml/revad/internal/autodiff"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
)

// FiniteDiffGradient approximates the gradient of f at x with central
// differences. A zero step selects the default step of the formula.
func FiniteDiffGradient(f func([]float64) float64, x []float64, step float64) []float64 {
	return fd.Gradient(nil, f, x, &fd.Settings{Formula: fd.Central, Step: step})
}

// CheckGradient compares the reverse-mode gradient of f at x with a central
// finite-difference approximation. Component i passes when
// |reverse - approx| <= tol·max(1, |approx|).
func CheckGradient(s *autodiff.Stack, f Func, x []float64, tol float64) error {
	_, grad, err := Gradient(s, f, x)
	if err != nil {
		return err
	}
	var evalErr error
	approx := FiniteDiffGradient(func(p []float64) float64 {
		v, err := Value(s, f, p)
		if err != nil && evalErr == nil {
			evalErr = err
		}
		return v
	}, x, 0)
	if evalErr != nil {
		return evalErr
	}
	for i := range grad {
		if diff := math.Abs(grad[i] - approx[i]); !(diff <= tol*math.Max(1, math.Abs(approx[i]))) {
			return errors.Wrapf(ErrGradientMismatch, "component %d: reverse %g, finite differences %g", i, grad[i], approx[i])
		}
	}
	return nil
}
