package expr

import (
	"fmt"
	"math"
)

// Program is a compiled numeric evaluator for one tree.
type Program struct {
	eval func(env map[string]float64) (float64, error)
}

// Compile resolves every function call of n against cfg. Errors reference
// unknown functions or arity mismatches; unbound variables are only detected
// by Eval since bindings are supplied per call.
func Compile(n Node, cfg Config) (*Program, error) {
	f, err := compile(n, cfg)
	if err != nil {
		return nil, err
	}
	return &Program{eval: f}, nil
}

// Eval evaluates the program. A binding shadows a configured constant of the
// same name. Domain errors surface as NaN or ±Inf, not as errors.
func (p *Program) Eval(bindings map[string]float64) (float64, error) {
	return p.eval(bindings)
}

// Evaluate compiles and evaluates n in one step.
func Evaluate(n Node, cfg Config, bindings map[string]float64) (float64, error) {
	p, err := Compile(n, cfg)
	if err != nil {
		return 0, err
	}
	return p.Eval(bindings)
}

type evalFunc func(env map[string]float64) (float64, error)

func compile(n Node, cfg Config) (evalFunc, error) {
	switch v := n.(type) {
	case *Constant:
		val := v.value
		return func(map[string]float64) (float64, error) { return val, nil }, nil

	case *Variable:
		name := v.name
		constant, isConst := cfg.Constant(name)
		return func(env map[string]float64) (float64, error) {
			if x, ok := env[name]; ok {
				return x, nil
			}
			if isConst {
				return constant, nil
			}
			return 0, fmt.Errorf("%w: %s", ErrUnboundVariable, name)
		}, nil

	case *Grouping:
		return compile(v.inner, cfg)

	case *BinaryOp:
		return compileBinary(v, cfg)

	case *Call:
		fn, ok := cfg.Function(v.name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, v.name)
		}
		if !fn.accepts(len(v.args)) {
			return nil, fmt.Errorf("%w: %s takes %s, got %d", ErrArity, v.name, arityText(fn), len(v.args))
		}
		args, err := compileAll(v.args, cfg)
		if err != nil {
			return nil, err
		}
		return func(env map[string]float64) (float64, error) {
			vals := make([]float64, len(args))
			for i, a := range args {
				x, err := a(env)
				if err != nil {
					return 0, err
				}
				vals[i] = x
			}
			return fn.Eval(vals), nil
		}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrMalformedNode, n)
}

func arityText(f Function) string {
	switch {
	case f.MaxArgs < 0:
		return fmt.Sprintf("at least %d arguments", f.MinArgs)
	case f.MinArgs == f.MaxArgs:
		return fmt.Sprintf("%d argument(s)", f.MinArgs)
	}
	return fmt.Sprintf("%d to %d arguments", f.MinArgs, f.MaxArgs)
}

func compileAll(ns []Node, cfg Config) ([]evalFunc, error) {
	out := make([]evalFunc, len(ns))
	for i, n := range ns {
		f, err := compile(n, cfg)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func compileBinary(b *BinaryOp, cfg Config) (evalFunc, error) {
	if len(b.args) < 2 {
		return nil, fmt.Errorf("%w: %s with %d operand(s)", ErrMalformedNode, b.op, len(b.args))
	}
	args, err := compileAll(b.args, cfg)
	if err != nil {
		return nil, err
	}

	var combine func(float64, float64) float64
	switch b.op {
	case Add:
		combine = func(x, y float64) float64 { return x + y }
	case Sub:
		combine = func(x, y float64) float64 { return x - y }
	case Mul:
		combine = func(x, y float64) float64 { return x * y }
	case Div:
		combine = func(x, y float64) float64 { return x / y }
	case Pow:
		// Right-associative fold.
		return func(env map[string]float64) (float64, error) {
			acc, err := args[len(args)-1](env)
			if err != nil {
				return 0, err
			}
			for i := len(args) - 2; i >= 0; i-- {
				base, err := args[i](env)
				if err != nil {
					return 0, err
				}
				acc = math.Pow(base, acc)
			}
			return acc, nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: operator %d", ErrMalformedNode, int(b.op))
	}

	return func(env map[string]float64) (float64, error) {
		acc, err := args[0](env)
		if err != nil {
			return 0, err
		}
		for _, a := range args[1:] {
			x, err := a(env)
			if err != nil {
				return 0, err
			}
			acc = combine(acc, x)
		}
		return acc, nil
	}, nil
}
