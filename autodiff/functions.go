// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff

import "github.com/born-ml/revad/internal/autodiff"

// Arithmetic with a constant on the left. Var methods cover the rest.
var (
	ScalarSub = autodiff.ScalarSub
	ScalarDiv = autodiff.ScalarDiv
	Inv       = autodiff.Inv
	Square    = autodiff.Square
	Fma       = autodiff.Fma
)

// Exponentials, logarithms and powers.
var (
	Exp       = autodiff.Exp
	Exp2      = autodiff.Exp2
	Expm1     = autodiff.Expm1
	Log       = autodiff.Log
	Log2      = autodiff.Log2
	Log10     = autodiff.Log10
	Log1p     = autodiff.Log1p
	Sqrt      = autodiff.Sqrt
	Cbrt      = autodiff.Cbrt
	InvSqrt   = autodiff.InvSqrt
	Pow       = autodiff.Pow
	PowScalar = autodiff.PowScalar
	ScalarPow = autodiff.ScalarPow
	Log1pExp  = autodiff.Log1pExp
	InvLogit  = autodiff.InvLogit
	Logit     = autodiff.Logit
)

// Trigonometric and hyperbolic functions.
var (
	Sin         = autodiff.Sin
	Cos         = autodiff.Cos
	Tan         = autodiff.Tan
	Asin        = autodiff.Asin
	Acos        = autodiff.Acos
	Atan        = autodiff.Atan
	Atan2       = autodiff.Atan2
	Atan2Scalar = autodiff.Atan2Scalar
	ScalarAtan2 = autodiff.ScalarAtan2
	Sinh        = autodiff.Sinh
	Cosh        = autodiff.Cosh
	Tanh        = autodiff.Tanh
	Asinh       = autodiff.Asinh
	Acosh       = autodiff.Acosh
	Atanh       = autodiff.Atanh
)

// Special functions.
var (
	Erf    = autodiff.Erf
	Erfc   = autodiff.Erfc
	Lgamma = autodiff.Lgamma
	Gamma  = autodiff.Gamma
	Phi    = autodiff.Phi
	Hypot  = autodiff.Hypot
	Fdim   = autodiff.Fdim
	Fmin   = autodiff.Fmin
	Fmax   = autodiff.Fmax
)

// Piecewise functions. Floor, Ceil, Round, Trunc and Step have a zero
// derivative and are not swept.
var (
	Floor      = autodiff.Floor
	Ceil       = autodiff.Ceil
	Round      = autodiff.Round
	Trunc      = autodiff.Trunc
	Step       = autodiff.Step
	Abs        = autodiff.Abs
	Fmod       = autodiff.Fmod
	FmodScalar = autodiff.FmodScalar
	ScalarFmod = autodiff.ScalarFmod
)

// Value tests and selection. They read forward values only.
var (
	Min      = autodiff.Min
	Max      = autodiff.Max
	IsNaN    = autodiff.IsNaN
	IsInf    = autodiff.IsInf
	IsFinite = autodiff.IsFinite
)

// Reductions over slices of Vars.
var (
	Sum         = autodiff.Sum
	Dot         = autodiff.Dot
	DotScalars  = autodiff.DotScalars
	LogSumExp   = autodiff.LogSumExp
	LogSumExp2  = autodiff.LogSumExp2
	Mean        = autodiff.Mean
	Variance    = autodiff.Variance
	SquaredNorm = autodiff.SquaredNorm
)
