package autodiff

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

type chainFn func(s *Stack, n *node)

// rules maps each operation to its propagation rule. Operations that never
// chain (leaves) have no entry.
var rules = [numOps]chainFn{
	OpNeg:         chainNeg,
	OpAdd:         chainAdd,
	OpAddScalar:   chainPassA,
	OpSub:         chainSub,
	OpSubScalar:   chainPassA,
	OpScalarSub:   chainNegA,
	OpMul:         chainMul,
	OpMulScalar:   chainMulScalar,
	OpDiv:         chainDiv,
	OpDivScalar:   chainDivScalar,
	OpScalarDiv:   chainScalarDiv,
	OpSquare:      chainSquare,
	OpFma:         chainFma,
	OpExp:         chainExp,
	OpExp2:        chainExp2,
	OpExpm1:       chainExpm1,
	OpLog:         chainLog,
	OpLog2:        chainLog2,
	OpLog10:       chainLog10,
	OpLog1p:       chainLog1p,
	OpSqrt:        chainSqrt,
	OpCbrt:        chainCbrt,
	OpInvSqrt:     chainInvSqrt,
	OpPow:         chainPow,
	OpPowScalar:   chainPowScalar,
	OpScalarPow:   chainScalarPow,
	OpLog1pExp:    chainLog1pExp,
	OpInvLogit:    chainInvLogit,
	OpLogit:       chainLogit,
	OpSin:         chainSin,
	OpCos:         chainCos,
	OpTan:         chainTan,
	OpAsin:        chainAsin,
	OpAcos:        chainAcos,
	OpAtan:        chainAtan,
	OpAtan2:       chainAtan2,
	OpAtan2Scalar: chainAtan2Scalar,
	OpScalarAtan2: chainScalarAtan2,
	OpSinh:        chainSinh,
	OpCosh:        chainCosh,
	OpTanh:        chainTanh,
	OpAsinh:       chainAsinh,
	OpAcosh:       chainAcosh,
	OpAtanh:       chainAtanh,
	OpErf:         chainErf,
	OpErfc:        chainErfc,
	OpLgamma:      chainLgamma,
	OpGamma:       chainGamma,
	OpPhi:         chainPhi,
	OpHypot:       chainHypot,
	OpFdim:        chainFdim,
	OpFmin:        chainFmin,
	OpFmax:        chainFmax,
	OpAbs:         chainAbs,
	OpFloor:       chainPiecewiseConstant,
	OpCeil:        chainPiecewiseConstant,
	OpRound:       chainPiecewiseConstant,
	OpTrunc:       chainPiecewiseConstant,
	OpStep:        chainPiecewiseConstant,
	OpFmod:        chainFmod,
	OpFmodScalar:  chainPassA,
	OpScalarFmod:  chainScalarFmod,
	OpSum:         chainSum,
	OpDot:         chainDot,
	OpDotScalars:  chainDotScalars,
	OpLogSumExp:   chainLogSumExp,
	OpPrecomputed: chainPrecomputed,
	OpAggregate:   chainAggregate,
}

// Grad runs the gradient sweep rooted at root: the root's adjoint is set to
// 1 and every chaining node, from the newest back to the oldest, adds its
// adjoint times its local partial derivatives into its operands' adjoints.
// Since operands always precede their users on the tape, a node's adjoint is
// complete by the time its own rule runs.
//
// When checkpoints are active only the innermost checkpoint's region is
// swept, so root must have been created after that checkpoint. Leaves of
// interest can then be read with Var.Adj.
//
// Adjoints are accumulated, never reset: sweeping twice without a fresh
// forward pass (or ZeroAdjoints) doubles them. That is the caller's
// responsibility.
func (s *Stack) Grad(root Var) error {
	if root.s == nil {
		return errors.Wrap(ErrNoRoot, "uninitialized root")
	}
	if root.s != s {
		return errors.Wrapf(ErrNoRoot, "root belongs to %q, not %q", root.s.name, s.name)
	}
	if !s.valid(root) {
		return errors.Wrapf(ErrStaleVar, "%s: root node %d", s.name, root.id)
	}
	begin, nodesBegin := s.nestedStart()
	if int(root.id) < nodesBegin {
		return errors.Wrapf(ErrNoRoot, "%s: root node %d precedes the innermost checkpoint", s.name, root.id)
	}

	s.at(root.id).adj = 1
	for i := len(s.tape) - 1; i >= begin; i-- {
		n := *s.at(s.tape[i])
		if n.op != OpAggregate && isNaN(n.val) {
			// A NaN that reaches the root poisons its operands; one that
			// does not reach it (zero adjoint) leaves them alone.
			if n.adj != 0 {
				s.poison(&n)
			}
			continue
		}
		rules[n.op](s, &n)
	}
	if s.nanCheck {
		s.reportNaN(nodesBegin)
	}
	return nil
}

// nestedStart returns where the innermost checkpoint region begins on the
// tape and in the node arena.
func (s *Stack) nestedStart() (tape int, nodes int) {
	if len(s.checkpoints) == 0 {
		return 0, 0
	}
	top := s.checkpoints[len(s.checkpoints)-1]
	return top.tape, int(top.nodes)
}

// poison propagates a NaN value: every operand of n receives a NaN adjoint.
func (s *Stack) poison(n *node) {
	if n.a != noNode {
		s.addAdj(n.a, nan())
	}
	if n.b != noNode {
		s.addAdj(n.b, nan())
	}
	if n.operands.Len > 0 {
		for _, id := range s.refs.Slice(n.operands) {
			s.addAdj(id, nan())
		}
	}
}

// ZeroAdjoints sets to zero the adjoint of every node of the innermost
// checkpoint region (the whole stack when no checkpoint is active), so that
// another sweep can be run over the same forward pass.
func (s *Stack) ZeroAdjoints() {
	_, begin := s.nestedStart()
	for id := begin; id < s.nodes.Len(); id++ {
		s.at(NodeID(id)).adj = 0
	}
}

// ZeroAllAdjoints sets to zero the adjoint of every node of the stack.
func (s *Stack) ZeroAllAdjoints() {
	for id := 0; id < s.nodes.Len(); id++ {
		s.at(NodeID(id)).adj = 0
	}
}

// reportNaN logs the first node, in creation order, holding a NaN value and
// the first holding a NaN adjoint.
func (s *Stack) reportNaN(begin int) {
	firstVal, firstAdj := -1, -1
	for id := begin; id < s.nodes.Len() && (firstVal < 0 || firstAdj < 0); id++ {
		n := s.at(NodeID(id))
		if firstVal < 0 && isNaN(n.val) {
			firstVal = id
		}
		if firstAdj < 0 && isNaN(n.adj) {
			firstAdj = id
		}
	}
	if firstVal >= 0 {
		klog.Warningf("%s: NaN value first produced by node %d (%s)", s.name, firstVal, s.at(NodeID(firstVal)).op)
	}
	if firstAdj >= 0 {
		klog.Warningf("%s: NaN adjoint first found at node %d (%s)", s.name, firstAdj, s.at(NodeID(firstAdj)).op)
	}
}

func isNaN(x float64) bool {
	return x != x
}

func nan() float64 {
	return math.NaN()
}
