package symbolic

import (
	"fmt"

	"github.com/njchilds90/derivtutor/expr"
)

// Lower converts a parsed tree into a simplified kernel expression.
// Subtraction and division become sums and products with -1 coefficients and
// exponents. log(u, b), log10, log2 and cbrt are rewritten in terms of ln and
// rational powers; arcsin, arccos and arctan map to asin, acos and atan.
func Lower(n expr.Node) (Expr, error) {
	switch v := n.(type) {
	case *expr.Constant:
		num, ok := NDecimal(v.Value())
		if !ok {
			return nil, fmt.Errorf("%w: constant %v", ErrUnsupported, v.Value())
		}
		return num, nil

	case *expr.Variable:
		return S(v.Name()), nil

	case *expr.Grouping:
		return Lower(v.Inner())

	case *expr.BinaryOp:
		return lowerBinary(v)

	case *expr.Call:
		return lowerCall(v)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupported, n)
}

func lowerAll(ns []expr.Node) ([]Expr, error) {
	out := make([]Expr, len(ns))
	for i, n := range ns {
		e, err := Lower(n)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func lowerBinary(b *expr.BinaryOp) (Expr, error) {
	if b.Len() < 2 {
		return nil, fmt.Errorf("%w: %s with %d operand(s)", expr.ErrMalformedNode, b.Op(), b.Len())
	}
	args, err := lowerAll(b.Args())
	if err != nil {
		return nil, err
	}
	switch b.Op() {
	case expr.Add:
		return AddOf(args...), nil
	case expr.Mul:
		return MulOf(args...), nil
	case expr.Sub:
		terms := []Expr{args[0]}
		for _, a := range args[1:] {
			terms = append(terms, MulOf(N(-1), a))
		}
		return AddOf(terms...), nil
	case expr.Div:
		factors := []Expr{args[0]}
		for _, a := range args[1:] {
			factors = append(factors, PowOf(a, N(-1)))
		}
		return MulOf(factors...), nil
	case expr.Pow:
		acc := args[len(args)-1]
		for i := len(args) - 2; i >= 0; i-- {
			acc = PowOf(args[i], acc)
		}
		return acc, nil
	}
	return nil, fmt.Errorf("%w: operator %s", expr.ErrMalformedNode, b.Op())
}

var funcAliases = map[string]string{
	"arcsin": "asin",
	"arccos": "acos",
	"arctan": "atan",
}

func lowerCall(c *expr.Call) (Expr, error) {
	args, err := lowerAll(c.Args())
	if err != nil {
		return nil, err
	}
	name := c.Name()
	if alias, ok := funcAliases[name]; ok {
		name = alias
	}

	switch {
	case name == "log" && len(args) == 2:
		return MulOf(LnOf(args[0]), PowOf(LnOf(args[1]), N(-1))), nil
	case name == "log" && len(args) == 1:
		return LnOf(args[0]), nil
	case name == "log10" && len(args) == 1:
		return MulOf(LnOf(args[0]), PowOf(LnOf(N(10)), N(-1))), nil
	case name == "log2" && len(args) == 1:
		return MulOf(LnOf(args[0]), PowOf(LnOf(N(2)), N(-1))), nil
	case name == "cbrt" && len(args) == 1:
		return PowOf(args[0], F(1, 3)), nil
	case len(args) == 1:
		return FuncOf(name, args[0]), nil
	}
	return nil, fmt.Errorf("%w: %s with %d arguments", ErrUnsupported, c.Name(), len(args))
}
