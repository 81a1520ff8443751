package autodiff

import "github.com/born-ml/revad/internal/arena"

// NodeID addresses a node inside its Stack.
type NodeID = arena.Index

// noNode marks an absent operand.
const noNode NodeID = -1

// node is one vertex of the computation graph.
//
// Up to two operands are referenced directly through a and b; operations
// over collections keep their operands in the reference arena (operands)
// and any per-node constants in the float arena (consts). k holds a scalar
// constant operand for the mixed Var/float64 variants.
type node struct {
	val      float64
	adj      float64
	k        float64
	a, b     NodeID
	operands arena.Span
	consts   arena.Span
	gen      uint32
	op       Op
}

// Op identifies the propagation rule of a node.
type Op uint8

const (
	OpLeaf Op = iota
	OpNeg
	OpAdd
	OpAddScalar
	OpSub
	OpSubScalar
	OpScalarSub
	OpMul
	OpMulScalar
	OpDiv
	OpDivScalar
	OpScalarDiv
	OpSquare
	OpFma
	OpExp
	OpExp2
	OpExpm1
	OpLog
	OpLog2
	OpLog10
	OpLog1p
	OpSqrt
	OpCbrt
	OpInvSqrt
	OpPow
	OpPowScalar
	OpScalarPow
	OpLog1pExp
	OpInvLogit
	OpLogit
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpAtan2
	OpAtan2Scalar
	OpScalarAtan2
	OpSinh
	OpCosh
	OpTanh
	OpAsinh
	OpAcosh
	OpAtanh
	OpErf
	OpErfc
	OpLgamma
	OpGamma
	OpPhi
	OpHypot
	OpFdim
	OpFmin
	OpFmax
	OpAbs
	OpFloor
	OpCeil
	OpRound
	OpTrunc
	OpStep
	OpFmod
	OpFmodScalar
	OpScalarFmod
	OpSum
	OpDot
	OpDotScalars
	OpLogSumExp
	OpPrecomputed
	OpAggregate
	numOps
)

var opNames = [numOps]string{
	OpLeaf:        "Leaf",
	OpNeg:         "Neg",
	OpAdd:         "Add",
	OpAddScalar:   "AddScalar",
	OpSub:         "Sub",
	OpSubScalar:   "SubScalar",
	OpScalarSub:   "ScalarSub",
	OpMul:         "Mul",
	OpMulScalar:   "MulScalar",
	OpDiv:         "Div",
	OpDivScalar:   "DivScalar",
	OpScalarDiv:   "ScalarDiv",
	OpSquare:      "Square",
	OpFma:         "Fma",
	OpExp:         "Exp",
	OpExp2:        "Exp2",
	OpExpm1:       "Expm1",
	OpLog:         "Log",
	OpLog2:        "Log2",
	OpLog10:       "Log10",
	OpLog1p:       "Log1p",
	OpSqrt:        "Sqrt",
	OpCbrt:        "Cbrt",
	OpInvSqrt:     "InvSqrt",
	OpPow:         "Pow",
	OpPowScalar:   "PowScalar",
	OpScalarPow:   "ScalarPow",
	OpLog1pExp:    "Log1pExp",
	OpInvLogit:    "InvLogit",
	OpLogit:       "Logit",
	OpSin:         "Sin",
	OpCos:         "Cos",
	OpTan:         "Tan",
	OpAsin:        "Asin",
	OpAcos:        "Acos",
	OpAtan:        "Atan",
	OpAtan2:       "Atan2",
	OpAtan2Scalar: "Atan2Scalar",
	OpScalarAtan2: "ScalarAtan2",
	OpSinh:        "Sinh",
	OpCosh:        "Cosh",
	OpTanh:        "Tanh",
	OpAsinh:       "Asinh",
	OpAcosh:       "Acosh",
	OpAtanh:       "Atanh",
	OpErf:         "Erf",
	OpErfc:        "Erfc",
	OpLgamma:      "Lgamma",
	OpGamma:       "Gamma",
	OpPhi:         "Phi",
	OpHypot:       "Hypot",
	OpFdim:        "Fdim",
	OpFmin:        "Fmin",
	OpFmax:        "Fmax",
	OpAbs:         "Abs",
	OpFloor:       "Floor",
	OpCeil:        "Ceil",
	OpRound:       "Round",
	OpTrunc:       "Trunc",
	OpStep:        "Step",
	OpFmod:        "Fmod",
	OpFmodScalar:  "FmodScalar",
	OpScalarFmod:  "ScalarFmod",
	OpSum:         "Sum",
	OpDot:         "Dot",
	OpDotScalars:  "DotScalars",
	OpLogSumExp:   "LogSumExp",
	OpPrecomputed: "Precomputed",
	OpAggregate:   "Aggregate",
}

// String implements fmt.Stringer.
func (op Op) String() string {
	if op < numOps {
		return opNames[op]
	}
	return "Op(?)"
}
