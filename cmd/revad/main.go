// Package main provides the revad CLI: a demonstration of the engine and a
// soak test of nested evaluation memory.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/born-ml/revad/autodiff"
	"github.com/born-ml/revad/functional"
	"github.com/born-ml/revad/matrix"
	"github.com/born-ml/revad/optim"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

var (
	flagIters    = flag.Int("iters", 10000, "soak: number of nested evaluations.")
	flagDim      = flag.Int("dim", 8, "soak: dimension of the evaluated function.")
	flagCapacity = flag.Int("capacity", 1024, "Nodes preallocated by the stack.")
	flagNaNCheck = flag.Bool("nancheck", false, "Log NaN adjoints after every sweep.")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "revad %s - reverse-mode automatic differentiation\n\n", version)
	fmt.Fprintln(out, "Usage: revad [flags] <command>")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  version    Show version")
	fmt.Fprintln(out, "  demo       Differentiate a few functions and print the results")
	fmt.Fprintln(out, "  soak       Run many nested evaluations and check memory stays flat")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	s := autodiff.New(
		autodiff.WithName("revad"),
		autodiff.WithCapacity(*flagCapacity),
		autodiff.WithNaNCheck(*flagNaNCheck),
	)

	var run func(*autodiff.Stack)
	switch flag.Arg(0) {
	case "version":
		fmt.Printf("revad %s\n", version)
		return
	case "demo":
		run = demo
	case "soak":
		run = func(s *autodiff.Stack) { soak(s, *flagIters, *flagDim) }
	default:
		klog.Errorf("unknown command %q", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}

	err := exceptions.TryCatch[error](func() { run(s) })
	if err != nil {
		klog.Fatalf("Failed with error: %+v", err)
	}
}

// rosenbrock is (1-x)² + 100(y-x²)².
func rosenbrock(v []autodiff.Var) autodiff.Var {
	a := autodiff.ScalarSub(1, v[0])
	b := v[1].Sub(autodiff.Square(v[0]))
	return autodiff.Square(a).Add(autodiff.Square(b).MulScalar(100))
}

func demo(s *autodiff.Stack) {
	x := s.NewVar(2)
	y := s.NewVar(3)
	z := autodiff.Log(x).Add(x.Mul(y))
	must.M(s.Grad(z))
	fmt.Printf("f(x, y) = log(x) + x·y at (2, 3): f = %g, ∂f/∂x = %g, ∂f/∂y = %g\n", z.Val(), x.Adj(), y.Adj())

	fx, grad := must.M2(functional.Gradient(s, rosenbrock, []float64{-1.2, 1}))
	fmt.Printf("rosenbrock at (-1.2, 1): f = %g, ∇f = %v\n", fx, grad)

	must.M(s.Nested(func() error {
		a := must.M1(matrix.New(s, 2, 2, []float64{4, 1, 1, 3}))
		ld := must.M1(matrix.LogDeterminantSPD(a))
		must.M(s.Grad(ld))
		fmt.Printf("log det A = %g, ∂/∂A = A⁻¹ =\n%v\n", ld.Val(), a.Adjoints())
		return nil
	}))

	res := must.M1(optim.Minimize(s, rosenbrock, []float64{-1.2, 1},
		optim.NewAdam(optim.AdamConfig{LR: 0.02}),
		optim.MinimizeConfig{MaxIters: 20000, GradTol: 1e-5, LogEvery: 1000}))
	fmt.Printf("minimize rosenbrock: x = %.6f after %d iterations (converged: %v)\n", res.X, res.Iters, res.Converged)
	fmt.Println(s.Stats())
}

// soakFunc is log det(A(x)) + logsumexp(θ·x) for a symmetric diagonally
// dominant A built from x.
func soakFunc(theta autodiff.Var) functional.Func {
	return func(x []autodiff.Var) autodiff.Var {
		n := len(x)
		vars := make([]autodiff.Var, n*n)
		for i := range n {
			for j := range n {
				if i == j {
					vars[i*n+j] = autodiff.Exp(x[i]).AddScalar(float64(n))
				} else {
					vars[i*n+j] = x[i].Mul(x[j]).MulScalar(0.01)
				}
			}
		}
		a := must.M1(matrix.FromVars(n, n, vars))
		ld := must.M1(matrix.LogDeterminantSPD(a))
		scaled := make([]autodiff.Var, n)
		for i, xi := range x {
			scaled[i] = xi.Mul(theta)
		}
		return ld.Add(autodiff.LogSumExp(scaled))
	}
}

func soak(s *autodiff.Stack, iters, dim int) {
	theta := s.NewVar(0.5)
	f := soakFunc(theta)
	before := s.Stats()
	klog.Infof("soak: %d evaluations of dimension %d, start: %s", iters, dim, before)

	rng := rand.New(rand.NewPCG(42, 7))
	x := make([]float64, dim)
	for it := range iters {
		for i := range x {
			x[i] = rng.NormFloat64()
		}
		must.M2(functional.Gradient(s, f, x))
		if (it+1)%(max(iters/10, 1)) == 0 {
			klog.V(1).Infof("soak: %d/%d, %s", it+1, iters, s.Stats())
		}
	}

	after := s.Stats()
	fmt.Printf("soak: %d evaluations\n  before: %s\n  after:  %s\n", iters, before, after)
	if after.Nodes != before.Nodes || after.LiveBytes != before.LiveBytes || after.Allocs != before.Allocs {
		exceptions.Panicf("soak: stack grew from %d to %d nodes", before.Nodes, after.Nodes)
	}
	fmt.Println("soak: memory is flat")
}
