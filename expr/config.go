package expr

import (
	"math"
	"sort"
)

// Function is a numeric implementation of a named function.
// MaxArgs < 0 means variadic.
type Function struct {
	MinArgs int
	MaxArgs int
	Eval    func(args []float64) float64
}

func (f Function) accepts(n int) bool {
	return n >= f.MinArgs && (f.MaxArgs < 0 || n <= f.MaxArgs)
}

// Config is the immutable engine configuration shared by the parser, the
// numeric evaluator and the symbolic engine. The With* methods return a
// modified copy and never touch the receiver.
type Config struct {
	functions   map[string]Function
	constants   map[string]float64
	implicitMul bool
}

func unary(f func(float64) float64) Function {
	return Function{MinArgs: 1, MaxArgs: 1, Eval: func(a []float64) float64 { return f(a[0]) }}
}

// DefaultConfig returns the standard function table, the constants pi and e,
// and implicit multiplication enabled.
func DefaultConfig() Config {
	fns := map[string]Function{
		"sin":   unary(math.Sin),
		"cos":   unary(math.Cos),
		"tan":   unary(math.Tan),
		"sec":   unary(func(x float64) float64 { return 1 / math.Cos(x) }),
		"csc":   unary(func(x float64) float64 { return 1 / math.Sin(x) }),
		"cot":   unary(func(x float64) float64 { return 1 / math.Tan(x) }),
		"asin":  unary(math.Asin),
		"acos":  unary(math.Acos),
		"atan":  unary(math.Atan),
		"sinh":  unary(math.Sinh),
		"cosh":  unary(math.Cosh),
		"tanh":  unary(math.Tanh),
		"exp":   unary(math.Exp),
		"ln":    unary(math.Log),
		"sqrt":  unary(math.Sqrt),
		"cbrt":  unary(math.Cbrt),
		"abs":   unary(math.Abs),
		"log10": unary(math.Log10),
		"log2":  unary(math.Log2),
		"log": {MinArgs: 1, MaxArgs: 2, Eval: func(a []float64) float64 {
			if len(a) == 2 {
				return math.Log(a[0]) / math.Log(a[1])
			}
			return math.Log(a[0])
		}},
	}
	fns["arcsin"] = fns["asin"]
	fns["arccos"] = fns["acos"]
	fns["arctan"] = fns["atan"]
	return Config{
		functions:   fns,
		constants:   map[string]float64{"pi": math.Pi, "e": math.E},
		implicitMul: true,
	}
}

func (c Config) clone() Config {
	fns := make(map[string]Function, len(c.functions))
	for k, v := range c.functions {
		fns[k] = v
	}
	consts := make(map[string]float64, len(c.constants))
	for k, v := range c.constants {
		consts[k] = v
	}
	return Config{functions: fns, constants: consts, implicitMul: c.implicitMul}
}

func (c Config) WithFunction(name string, f Function) Config {
	out := c.clone()
	out.functions[name] = f
	return out
}

func (c Config) WithConstant(name string, v float64) Config {
	out := c.clone()
	out.constants[name] = v
	return out
}

func (c Config) WithImplicitMultiplication(on bool) Config {
	out := c.clone()
	out.implicitMul = on
	return out
}

func (c Config) Function(name string) (Function, bool) {
	f, ok := c.functions[name]
	return f, ok
}

func (c Config) Constant(name string) (float64, bool) {
	v, ok := c.constants[name]
	return v, ok
}

func (c Config) IsConstant(name string) bool {
	_, ok := c.constants[name]
	return ok
}

func (c Config) ImplicitMultiplication() bool { return c.implicitMul }

// Functions lists the configured function names in sorted order.
func (c Config) Functions() []string {
	out := make([]string, 0, len(c.functions))
	for name := range c.functions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
