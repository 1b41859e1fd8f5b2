package symbolic_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/derivtutor/expr"
	"github.com/njchilds90/derivtutor/symbolic"
)

func TestEngine_Derivative(t *testing.T) {
	eng := symbolic.NewEngine(expr.DefaultConfig())
	tests := []struct {
		input string
		want  string
	}{
		{"x^3", "3 * x^2"},
		{"3*x^2", "6 * x"},
		{"6*x", "6"},
		{"sin(x^2)", "2 * x * cos(x^2)"},
		{"x^2 - 3x + 1", "2 * x - 3"},
		{"ln(x)", "1 / x"},
		{"log(x)", "1 / x"},
		{"arcsin(x)", "1 / sqrt(1 - x^2)"},
		{"(x + 1) / x", "-(x + 1) / x^2 + 1 / x"},
		{"e^x", "e^x"},
		{"g(2)", "0"},
		{"y * x", "y"},
	}
	for _, tt := range tests {
		d, err := eng.Derivative(expr.MustParse(tt.input), "x")
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, expr.Format(d), tt.input)
	}
}

func TestEngine_DerivativeMatchesClosedForm(t *testing.T) {
	eng := symbolic.NewEngine(expr.DefaultConfig())
	cfg := expr.DefaultConfig()
	tests := []struct {
		input  string
		closed string
	}{
		{"tan(x)", "1 / cos(x)^2"},
		{"sec(x)", "sec(x) * tan(x)"},
		{"csc(x)", "-csc(x) * cot(x)"},
		{"cot(x)", "-csc(x)^2"},
		{"sqrt(x)", "1 / (2 * sqrt(x))"},
		{"acos(x)", "-1 / sqrt(1 - x^2)"},
		{"log(x, 2)", "1 / (x * ln(2))"},
		{"log10(x)", "1 / (x * ln(10))"},
		{"cbrt(x)", "1 / (3 * cbrt(x)^2)"},
		{"sinh(x) + cosh(x) + tanh(x)", "cosh(x) + sinh(x) + 1 - tanh(x)^2"},
		{"abs(x)", "x / abs(x)"},
		{"x^x", "x^x * (ln(x) + 1)"},
	}
	for _, tt := range tests {
		d, err := eng.Derivative(expr.MustParse(tt.input), "x")
		require.NoError(t, err, tt.input)
		for _, x := range []float64{0.3, 0.7} {
			env := map[string]float64{"x": x}
			got, err := expr.Evaluate(d, cfg, env)
			require.NoError(t, err)
			want, err := expr.Evaluate(expr.MustParse(tt.closed), cfg, env)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-9, "%s at x=%v: %s", tt.input, x, expr.Format(d))
		}
	}
}

func TestEngine_DerivativeErrors(t *testing.T) {
	eng := symbolic.NewEngine(expr.DefaultConfig())

	_, err := eng.Derivative(expr.MustParse("f(x)"), "x")
	assert.True(t, errors.Is(err, symbolic.ErrNoDerivative))

	_, err = eng.Derivative(expr.MustParse("max(x, 2)"), "x")
	assert.True(t, errors.Is(err, symbolic.ErrUnsupported))

	_, err = eng.Derivative(expr.Binary(expr.Mul, expr.Var("x")), "x")
	assert.True(t, errors.Is(err, expr.ErrMalformedNode))
}

func TestEngine_Simplify(t *testing.T) {
	eng := symbolic.NewEngine(expr.DefaultConfig())
	tests := []struct {
		input string
		want  string
	}{
		{"x + x", "2 * x"},
		{"x - x", "0"},
		{"(x + 1) / (x + 1)", "1"},
		{"2 * 0.5 * x", "x"},
		{"0 * sin(x) + 1 * cos(x)", "cos(x)"},
		{"x * x^2", "x^3"},
		{"cos(2)", "cos(2)"},
		{"0.1 + 0.2", "3 / 10"},
	}
	for _, tt := range tests {
		got, err := eng.SimplifyString(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestEngine_SimplifyOutputParses(t *testing.T) {
	eng := symbolic.NewEngine(expr.DefaultConfig())
	for _, input := range []string{
		"x^(1/2) * x^(-3)",
		"(2*x)^(-1) - x/3",
		"-(x + 1)^2 * sin(x)",
		"e^(x*ln(2)) / (x - 1)",
	} {
		n, err := eng.Simplify(expr.MustParse(input))
		require.NoError(t, err, input)
		_, err = expr.Parse(expr.Format(n))
		assert.NoError(t, err, input)
	}
}

func TestEngine_SimplifyStringParseError(t *testing.T) {
	eng := symbolic.NewEngine(expr.DefaultConfig())
	_, err := eng.SimplifyString("x +")
	assert.True(t, errors.Is(err, expr.ErrSyntax))
}

func TestEngine_SimplifyKeepsDivisionByZero(t *testing.T) {
	eng := symbolic.NewEngine(expr.DefaultConfig())
	tests := []struct {
		input string
		want  string
	}{
		{"0/0", "0 / 0"},
		{"0/0 + 1", "0 / 0 + 1"},
		{"1/0 - 1/0", "0 / 0"},
		{"(x - x) / (x - x)", "0 / 0"},
		{"0 * x / 5", "0"},
	}
	for _, tt := range tests {
		got, err := eng.SimplifyString(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}
