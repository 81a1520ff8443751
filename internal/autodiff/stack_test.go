package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/revad/internal/autodiff"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requirePanicIs runs fn and requires it to panic with an error matching
// target.
func requirePanicIs(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, target)
	}()
	fn()
}

func TestGrad_Product(t *testing.T) {
	s := autodiff.New()
	x := s.NewVar(3)
	y := s.NewVar(4)
	f := x.Mul(y)
	require.NoError(t, s.Grad(f))

	assert.Equal(t, 12.0, f.Val())
	assert.Equal(t, 4.0, x.Adj())
	assert.Equal(t, 3.0, y.Adj())
}

func TestGrad_ChainRule(t *testing.T) {
	s := autodiff.New()
	x := s.NewVar(0.5)
	f := autodiff.Log(x).MulScalar(2).AddScalar(4)
	require.NoError(t, s.Grad(f))

	assert.InDelta(t, 2.6137, f.Val(), 1e-4)
	assert.InDelta(t, 4.0, x.Adj(), 1e-12)
}

func TestGrad_SharedSubexpression(t *testing.T) {
	s := autodiff.New()
	x := s.NewVar(3)
	u := x.Mul(x)
	f := u.Add(u).Add(x) // 2x² + x
	require.NoError(t, s.Grad(f))

	assert.Equal(t, 21.0, f.Val())
	assert.Equal(t, 13.0, x.Adj())
	assert.Equal(t, 2.0, u.Adj())
}

func TestGrad_UnreachedNodesGetNothing(t *testing.T) {
	s := autodiff.New()
	x := s.NewVar(2)
	y := s.NewVar(5)
	unused := y.MulScalar(10)
	f := autodiff.Square(x)
	require.NoError(t, s.Grad(f))

	assert.Equal(t, 4.0, x.Adj())
	assert.Equal(t, 0.0, y.Adj())
	assert.Equal(t, 0.0, unused.Adj())
}

func TestGrad_AccumulatesAcrossSweeps(t *testing.T) {
	s := autodiff.New()
	x := s.NewVar(2)
	f := autodiff.Square(x)
	require.NoError(t, s.Grad(f))
	require.NoError(t, s.Grad(f))
	assert.Equal(t, 8.0, x.Adj(), "second sweep without zeroing doubles the adjoints")

	s.ZeroAdjoints()
	require.NoError(t, s.Grad(f))
	assert.Equal(t, 4.0, x.Adj())
}

func TestGrad_RootErrors(t *testing.T) {
	s := autodiff.New()
	other := autodiff.New(autodiff.WithName("other"))

	err := s.Grad(autodiff.Var{})
	require.ErrorIs(t, err, autodiff.ErrNoRoot)

	err = s.Grad(other.NewVar(1))
	require.ErrorIs(t, err, autodiff.ErrNoRoot)

	x := s.NewVar(1)
	require.NoError(t, s.Reset())
	require.ErrorIs(t, s.Grad(x), autodiff.ErrStaleVar)
}

func TestNaN_SqrtOfNegative(t *testing.T) {
	s := autodiff.New()
	x := s.NewVar(-1)
	f := autodiff.Sqrt(x)
	require.NoError(t, s.Grad(f))

	assert.True(t, math.IsNaN(f.Val()))
	assert.True(t, math.IsNaN(x.Adj()))
}

func TestNaN_PropagatesThroughValueAndAdjoint(t *testing.T) {
	s := autodiff.New(autodiff.WithNaNCheck(true))
	x := s.NewVar(math.NaN())
	y := s.NewVar(2)
	u := x.Mul(y)
	f := u.AddScalar(1)
	require.NoError(t, s.Grad(f))

	assert.True(t, math.IsNaN(u.Val()))
	assert.True(t, math.IsNaN(f.Val()))
	assert.True(t, math.IsNaN(x.Adj()))
	assert.True(t, math.IsNaN(y.Adj()))
}

func TestNaN_ScalarOperand(t *testing.T) {
	s := autodiff.New()
	x := s.NewVar(2)
	f := x.MulScalar(math.NaN())
	require.NoError(t, s.Grad(f))
	assert.True(t, math.IsNaN(f.Val()))
	assert.True(t, math.IsNaN(x.Adj()))
}

func TestNaN_PiecewiseOperand(t *testing.T) {
	s := autodiff.New()
	x := s.NewVar(math.NaN())
	f := autodiff.Floor(x)
	assert.Equal(t, 1, s.Len(), "a NaN operand keeps the node on the chaining tape")
	require.NoError(t, s.Grad(f))
	assert.True(t, math.IsNaN(x.Adj()))
}

func TestNaN_DomainErrors(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		args []float64
		f    func(x []autodiff.Var) autodiff.Var
	}{
		{"Log", []float64{-1}, func(x []autodiff.Var) autodiff.Var { return autodiff.Log(x[0]) }},
		{"Log1p", []float64{-2}, func(x []autodiff.Var) autodiff.Var { return autodiff.Log1p(x[0]) }},
		{"Asin", []float64{2}, func(x []autodiff.Var) autodiff.Var { return autodiff.Asin(x[0]) }},
		{"Acos", []float64{-2}, func(x []autodiff.Var) autodiff.Var { return autodiff.Acos(x[0]) }},
		{"Acosh", []float64{0.5}, func(x []autodiff.Var) autodiff.Var { return autodiff.Acosh(x[0]) }},
		{"Atanh", []float64{2}, func(x []autodiff.Var) autodiff.Var { return autodiff.Atanh(x[0]) }},
		{"Logit", []float64{2}, func(x []autodiff.Var) autodiff.Var { return autodiff.Logit(x[0]) }},
		{"Pow", []float64{-1, 0.5}, func(x []autodiff.Var) autodiff.Var { return autodiff.Pow(x[0], x[1]) }},
		{"PowScalar", []float64{-1}, func(x []autodiff.Var) autodiff.Var { return autodiff.PowScalar(x[0], 0.5) }},
		{"DivZeroByZero", []float64{0, 0}, func(x []autodiff.Var) autodiff.Var { return x[0].Div(x[1]) }},
		{"Fmod", []float64{1, 0}, func(x []autodiff.Var) autodiff.Var { return autodiff.Fmod(x[0], x[1]) }},
		{"FmodScalar", []float64{1}, func(x []autodiff.Var) autodiff.Var { return autodiff.FmodScalar(x[0], 0) }},
		{"Abs", []float64{nan}, func(x []autodiff.Var) autodiff.Var { return autodiff.Abs(x[0]) }},
		{"Step", []float64{nan}, func(x []autodiff.Var) autodiff.Var { return autodiff.Step(x[0]) }},
		{"Exp", []float64{nan}, func(x []autodiff.Var) autodiff.Var { return autodiff.Exp(x[0]) }},
		{"Atan2", []float64{nan, 1}, func(x []autodiff.Var) autodiff.Var { return autodiff.Atan2(x[0], x[1]) }},
		{"Min", []float64{nan, 3}, func(x []autodiff.Var) autodiff.Var { return autodiff.Min(x[0], x[1]).MulScalar(2) }},
		{"Max", []float64{3, nan}, func(x []autodiff.Var) autodiff.Var { return autodiff.Max(x[0], x[1]).MulScalar(2) }},
		{"Sum", []float64{nan, 1}, autodiff.Sum},
		{"Dot", []float64{nan, 1}, func(x []autodiff.Var) autodiff.Var { return autodiff.Dot(x[:1], x[1:]) }},
		{"LogSumExp", []float64{1, nan}, autodiff.LogSumExp},
		{"Mean", []float64{nan, 1}, autodiff.Mean},
		{"Variance", []float64{1, nan, 2}, autodiff.Variance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := autodiff.New()
			x := s.NewVars(tt.args)
			f := tt.f(x)
			require.NoError(t, s.Grad(f))
			assert.True(t, math.IsNaN(f.Val()), "value %g", f.Val())
			for i, v := range x {
				if tt.name == "Min" && i == 1 || tt.name == "Max" && i == 0 {
					continue // the operand Min/Max did not select
				}
				assert.True(t, math.IsNaN(v.Adj()), "operand %d: adjoint %g", i, v.Adj())
			}
		})
	}
}

func TestMinMax_SelectNaN(t *testing.T) {
	s := autodiff.New()
	x, y := s.NewVar(math.NaN()), s.NewVar(3)
	assert.Equal(t, x.ID(), autodiff.Min(x, y).ID())
	assert.Equal(t, x.ID(), autodiff.Min(y, x).ID())
	assert.Equal(t, x.ID(), autodiff.Max(x, y).ID())
	assert.Equal(t, x.ID(), autodiff.Max(y, x).ID())
	assert.True(t, math.IsNaN(autodiff.Fmin(y, x).Val()), "Fmin agrees")

	m := autodiff.Min(x, y).MulScalar(2)
	require.NoError(t, s.Grad(m))
	assert.True(t, math.IsNaN(m.Val()))
	assert.True(t, math.IsNaN(x.Adj()))
}

func TestPowAtZero(t *testing.T) {
	s := autodiff.New()
	x, y := s.NewVar(0), s.NewVar(1)
	f := autodiff.Pow(x, y).Add(autodiff.PowScalar(x, 0.5))
	require.NoError(t, s.Grad(f))
	assert.Equal(t, 0.0, f.Val())
	assert.Equal(t, 0.0, x.Adj(), "nothing is propagated at a zero base")
	assert.Equal(t, 0.0, y.Adj())
}

func TestNaN_UnusedBranchDoesNotPoison(t *testing.T) {
	s := autodiff.New()
	x := s.NewVar(1)
	bad := autodiff.Sqrt(x.Neg())
	f := x.MulScalar(3)
	require.NoError(t, s.Grad(f))

	assert.True(t, math.IsNaN(bad.Val()))
	assert.Equal(t, 3.0, x.Adj())
}

func TestVar_Stale(t *testing.T) {
	s := autodiff.New()
	x := s.NewVar(1)
	require.NoError(t, s.Reset())
	y := s.NewVar(2)

	assert.Equal(t, x.ID(), y.ID(), "slot reused after reset")
	assert.Equal(t, 2.0, y.Val())
	requirePanicIs(t, autodiff.ErrStaleVar, func() { x.Val() })
	requirePanicIs(t, autodiff.ErrStaleVar, func() { y.Add(x) })
	assert.Equal(t, "Var(stale)", x.String())
}

func TestVar_Uninitialized(t *testing.T) {
	var v autodiff.Var
	assert.True(t, v.IsZero())
	assert.Equal(t, "Var(uninitialized)", v.String())
	requirePanicIs(t, autodiff.ErrUninitialized, func() { v.Val() })
	requirePanicIs(t, autodiff.ErrUninitialized, func() { autodiff.Exp(v) })
}

func TestVar_MixedStacks(t *testing.T) {
	s1 := autodiff.New(autodiff.WithName("first"))
	s2 := autodiff.New(autodiff.WithName("second"))
	x := s1.NewVar(1)
	y := s2.NewVar(2)
	requirePanicIs(t, autodiff.ErrMixedStacks, func() { x.Add(y) })
	requirePanicIs(t, autodiff.ErrMixedStacks, func() { autodiff.Sum([]autodiff.Var{x, y}) })
}

func TestStack_ResetAndFreeMemory(t *testing.T) {
	s := autodiff.New(autodiff.WithCapacity(4))
	xs := s.NewVars([]float64{1, 2, 3})
	f := autodiff.Sum(xs)
	_ = autodiff.Exp(f)

	assert.Equal(t, 5, s.NumNodes())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, s.NoChainLen())

	require.NoError(t, s.Reset())
	assert.Equal(t, 0, s.NumNodes())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.NoChainLen())
	assert.Equal(t, 5, s.Stats().PeakNodes)
	assert.NotZero(t, s.Stats().Reserved, "reset keeps the backing memory")

	require.NoError(t, s.FreeMemory())
	assert.Zero(t, s.Stats().Reserved)

	x := s.NewVar(7)
	assert.Equal(t, 7.0, x.Val())
}

func TestStack_Stats(t *testing.T) {
	s := autodiff.New(autodiff.WithName("stats"))
	x := s.NewVar(1)
	_ = x.Add(x)
	st := s.Stats()
	assert.Equal(t, 2, st.Nodes)
	assert.Equal(t, 1, st.Chaining)
	assert.Equal(t, 1, st.NoChain)
	assert.Equal(t, s.LiveBytes(), st.LiveBytes)
	assert.Positive(t, st.LiveBytes)
	assert.Contains(t, st.String(), "2 nodes")
	assert.Equal(t, "stats", s.Name())
}

func TestErrors_Wrapping(t *testing.T) {
	s := autodiff.New()
	err := s.PopCheckpoint(autodiff.Checkpoint{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, autodiff.ErrNoCheckpoint))
	assert.Equal(t, autodiff.ErrNoCheckpoint, errors.Cause(err))
}
