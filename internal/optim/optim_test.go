package optim_test

import (
	"testing"

	"github.com/born-ml/revad/internal/autodiff"
	"github.com/born-ml/revad/internal/optim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSGD_SimpleStep tests basic SGD without momentum.
func TestSGD_SimpleStep(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1})
	params := []float64{2.0}

	// param = 2.0 - 0.1 * 1.0 = 1.9
	require.NoError(t, opt.Step(params, []float64{1.0}))
	assert.InDelta(t, 1.9, params[0], 1e-12)
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	params := []float64{1.0}

	// Step 1: velocity = 1.0, param = 1.0 - 0.1 * 1.0 = 0.9
	require.NoError(t, opt.Step(params, []float64{1.0}))
	assert.InDelta(t, 0.9, params[0], 1e-12)

	// Step 2: velocity = 0.9 * 1.0 + 1.0 = 1.9, param = 0.9 - 0.1 * 1.9 = 0.71
	require.NoError(t, opt.Step(params, []float64{1.0}))
	assert.InDelta(t, 0.71, params[0], 1e-12)
}

func TestSGD_LearningRate(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{})
	assert.Equal(t, 0.01, opt.GetLR())

	opt.SetLR(0.05)
	assert.Equal(t, 0.05, opt.GetLR())
}

func TestSGD_StateDict(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	assert.Empty(t, opt.StateDict(), "no state before the first step")

	params := []float64{1, 2}
	require.NoError(t, opt.Step(params, []float64{1, -1}))
	state := opt.StateDict()
	assert.Equal(t, []float64{1, -1}, state["velocity"])

	// A restored optimizer continues exactly where the original left off.
	restored := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	require.NoError(t, restored.LoadStateDict(state, 2))
	a, b := append([]float64(nil), params...), append([]float64(nil), params...)
	require.NoError(t, opt.Step(a, []float64{0.5, 0.5}))
	require.NoError(t, restored.Step(b, []float64{0.5, 0.5}))
	assert.Equal(t, a, b)

	err := restored.LoadStateDict(state, 3)
	require.ErrorIs(t, err, optim.ErrDimension)
}

// TestAdam_FirstStep tests Adam's first optimization step.
//
// On the first step the bias-corrected update is lr * sign(grad).
func TestAdam_FirstStep(t *testing.T) {
	opt := optim.NewAdam(optim.AdamConfig{LR: 0.001})
	params := []float64{1.0}

	require.NoError(t, opt.Step(params, []float64{1.0}))
	assert.InDelta(t, 0.999, params[0], 1e-6)
	assert.Equal(t, 1, opt.GetTimestep())
}

// TestAdam_BiasCorrection checks that the update magnitude stays close to
// lr for a constant gradient, whatever the step.
func TestAdam_BiasCorrection(t *testing.T) {
	opt := optim.NewAdam(optim.AdamConfig{LR: 0.01})
	params := []float64{0}
	for i := 0; i < 10; i++ {
		before := params[0]
		require.NoError(t, opt.Step(params, []float64{3.0}))
		assert.InDelta(t, 0.01, before-params[0], 1e-6, "step %d", i)
	}
	assert.Equal(t, 10, opt.GetTimestep())
}

func TestAdam_StateDict(t *testing.T) {
	opt := optim.NewAdam(optim.AdamConfig{LR: 0.01})
	assert.Empty(t, opt.StateDict(), "no state before the first step")

	params := []float64{1, -2}
	for i := 0; i < 3; i++ {
		require.NoError(t, opt.Step(params, []float64{0.5, -1}))
	}
	state := opt.StateDict()
	assert.Equal(t, []float64{3}, state["t"])
	require.Len(t, state["m"], 2)
	require.Len(t, state["v"], 2)

	// A restored optimizer continues exactly where the original left off.
	restored := optim.NewAdam(optim.AdamConfig{LR: 0.01})
	require.NoError(t, restored.LoadStateDict(state, 2))
	assert.Equal(t, 3, restored.GetTimestep())
	a, b := append([]float64(nil), params...), append([]float64(nil), params...)
	require.NoError(t, opt.Step(a, []float64{0.2, 0.3}))
	require.NoError(t, restored.Step(b, []float64{0.2, 0.3}))
	assert.Equal(t, a, b)

	require.ErrorIs(t, restored.LoadStateDict(state, 3), optim.ErrDimension)
	require.Error(t, restored.LoadStateDict(map[string][]float64{"m": {0}}, 1))
	require.NoError(t, restored.LoadStateDict(map[string][]float64{}, 2))
	assert.Equal(t, 0, restored.GetTimestep())
}

// TestConvergence_SimpleQuadratic tests optimizer convergence on f(x) = x².
func TestConvergence_SimpleQuadratic(t *testing.T) {
	for name, opt := range map[string]optim.Optimizer{
		"SGD":  optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9}),
		"Adam": optim.NewAdam(optim.AdamConfig{LR: 0.1}),
	} {
		t.Run(name, func(t *testing.T) {
			params := []float64{3.0}
			for i := 0; i < 100; i++ {
				require.NoError(t, opt.Step(params, []float64{2 * params[0]}))
			}
			assert.InDelta(t, 0, params[0], 0.1)
		})
	}
}

// TestMultipleParameters tests optimizers with multiple parameters.
func TestMultipleParameters(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.5})
	params := []float64{1.0, 2.0, 3.0}
	require.NoError(t, opt.Step(params, []float64{2, -2, 0}))
	assert.InDeltaSlice(t, []float64{0, 3, 3}, params, 1e-12)
}

func TestStep_DimensionMismatch(t *testing.T) {
	sgd := optim.NewSGD(optim.SGDConfig{Momentum: 0.5})
	require.ErrorIs(t, sgd.Step([]float64{1, 2}, []float64{1}), optim.ErrDimension)
	require.NoError(t, sgd.Step([]float64{1, 2}, []float64{1, 1}))
	require.ErrorIs(t, sgd.Step([]float64{1, 2, 3}, []float64{1, 1, 1}), optim.ErrDimension,
		"state is kept per index")

	adam := optim.NewAdam(optim.AdamConfig{})
	require.ErrorIs(t, adam.Step([]float64{1}, nil), optim.ErrDimension)
	assert.Equal(t, 0, adam.GetTimestep())
}

// quadratic is (x-3)² + (y+1)², minimized at (3, -1).
func quadratic(v []autodiff.Var) autodiff.Var {
	dx := v[0].SubScalar(3)
	dy := v[1].AddScalar(1)
	return autodiff.Square(dx).Add(autodiff.Square(dy))
}

func TestMinimize(t *testing.T) {
	s := autodiff.New()
	res, err := optim.Minimize(s, quadratic, []float64{0, 0}, optim.NewSGD(optim.SGDConfig{LR: 0.1}),
		optim.MinimizeConfig{LogEvery: 10})
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.LessOrEqual(t, res.GradNorm, 1e-6)
	assert.Less(t, res.Iters, 100)
	assert.InDeltaSlice(t, []float64{3, -1}, res.X, 1e-6)
	assert.InDelta(t, 0, res.Value, 1e-12)
	assert.Equal(t, 0, s.NumNodes(), "every evaluation is reclaimed")
}

func TestMinimize_Budget(t *testing.T) {
	s := autodiff.New()
	rosenbrock := func(v []autodiff.Var) autodiff.Var {
		a := autodiff.ScalarSub(1, v[0])
		b := v[1].Sub(autodiff.Square(v[0]))
		return autodiff.Square(a).Add(autodiff.Square(b).MulScalar(100))
	}
	x0 := []float64{-1.2, 1}
	res, err := optim.Minimize(s, rosenbrock, x0, optim.NewAdam(optim.AdamConfig{LR: 0.01}),
		optim.MinimizeConfig{MaxIters: 50})
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 50, res.Iters)
	assert.Less(t, res.Value, 24.2)
	assert.Equal(t, []float64{-1.2, 1}, x0, "the starting point is not modified")
}

func TestMinimize_Errors(t *testing.T) {
	s := autodiff.New()
	_, err := optim.Minimize(s, func(v []autodiff.Var) autodiff.Var {
		return autodiff.Log(v[0])
	}, []float64{-1}, optim.NewSGD(optim.SGDConfig{}), optim.MinimizeConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NaN")

	_, err = optim.Minimize(s, func([]autodiff.Var) autodiff.Var {
		return autodiff.Var{}
	}, []float64{1}, optim.NewSGD(optim.SGDConfig{}), optim.MinimizeConfig{})
	require.ErrorIs(t, err, autodiff.ErrNoRoot)
	assert.Equal(t, 0, s.NumNodes())
}
