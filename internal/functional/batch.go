package functional

import (
	"github.com/born-ml/revad/internal/autodiff"
	"github.com/born-ml/revad/internal/parallel"
	"github.com/pkg/errors"
)

// Result is the value and gradient of a function at one point.
type Result struct {
	Value float64
	Grad  []float64
}

// GradientBatch evaluates f and its gradient at every point concurrently.
// A Stack is owned by one goroutine at a time, so each worker gets its own,
// created with opts. The first failing point, in index order, is reported.
func GradientBatch(f Func, points [][]float64, cfg parallel.Config, opts ...autodiff.Option) ([]Result, error) {
	stacks := make([]*autodiff.Stack, cfg.Workers(len(points)))
	for i := range stacks {
		stacks[i] = autodiff.New(opts...)
	}
	results := make([]Result, len(points))
	errs := make([]error, len(points))
	parallel.ForWorkers(len(points), func(w, i int) {
		fx, grad, err := Gradient(stacks[w], f, points[i])
		results[i], errs[i] = Result{Value: fx, Grad: grad}, err
	}, cfg)
	for i, err := range errs {
		if err != nil {
			return nil, errors.WithMessagef(err, "point %d", i)
		}
	}
	return results, nil
}
