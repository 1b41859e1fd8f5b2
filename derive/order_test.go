package derive_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/derivtutor/derive"
	"github.com/njchilds90/derivtutor/expr"
)

func TestDeriveOrder_Cubic(t *testing.T) {
	d := newDifferentiator()
	want := []string{"3 * x^2", "6 * x", "6"}
	for k, w := range want {
		res, err := d.DeriveOrder(expr.MustParse("x^3"), "x", k+1)
		require.NoError(t, err)
		assert.Equal(t, w, res.ResultText(), "order %d", k+1)
		require.Len(t, res.Orders, k+1)
		assert.Equal(t, w, expr.Format(res.Orders[k].Simplified))
		assert.False(t, res.Degraded)
	}
}

func TestDeriveOrder_SinOfSquare(t *testing.T) {
	d := newDifferentiator()
	res, err := d.DeriveOrder(expr.MustParse("sin(x^2)"), "x", 1)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Cos(1), at(t, res.Result, 1), 1e-6)
	assert.InDelta(t, 1.0806, at(t, res.Result, 1), 1e-4)
}

func TestDeriveOrder_FramingSteps(t *testing.T) {
	d := newDifferentiator()
	res, err := d.DeriveOrder(expr.MustParse("x^3"), "x", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Original expression:",
		"Derivative of order 1",
		"Power rule: (x^n)' = n·x^(n-1) with n = 3.",
		"Derivative of order 1:",
		"Simplify:",
		"Derivative of order 2",
		"Product rule: (u·v)' = u'·v + u·v'.",
		"The derivative of a constant is 0.",
		"Power rule: (x^n)' = n·x^(n-1) with n = 2.",
		"Derivative of order 2:",
		"Simplify:",
		"Conclusion: the simplified derivative is 6 * x",
	}, explanations(res.Steps))

	assert.Equal(t, `\displaystyle x^{3}`, res.Steps[0].Formula)
	assert.Equal(t, `\displaystyle f''(x) = 6 \cdot x`, res.Steps[len(res.Steps)-1].Formula)
	assert.Len(t, res.Orders[1].Steps, 3)
}

func TestDeriveOrder_ConclusionNotation(t *testing.T) {
	d := newDifferentiator()
	res, err := d.DeriveOrder(expr.MustParse("x^5"), "x", 4)
	require.NoError(t, err)
	assert.Equal(t, "120 * x", res.ResultText())
	assert.Equal(t, `\displaystyle f^{(4)}(x) = 120 \cdot x`, res.Steps[len(res.Steps)-1].Formula)
}

func TestDeriveOrder_NextOrderMatchesRederivation(t *testing.T) {
	d := newDifferentiator()
	for _, input := range []string{"x^4 - 2x", "sin(x) * x", "exp(2x) / (x + 1)", "ln(x^2 + 1)"} {
		for k := 1; k <= 3; k++ {
			kth, err := d.DeriveOrder(expr.MustParse(input), "x", k)
			require.NoError(t, err)
			again, err := d.DeriveOrder(kth.Result, "x", 1)
			require.NoError(t, err)
			next, err := d.DeriveOrder(expr.MustParse(input), "x", k+1)
			require.NoError(t, err)
			for _, x := range []float64{0.25, 1.5} {
				assert.InDelta(t, at(t, next.Result, x), at(t, again.Result, x), 1e-9,
					"%s order %d at %v", input, k+1, x)
			}
		}
	}
}

func TestDeriveOrder_Validation(t *testing.T) {
	d := newDifferentiator(derive.WithMaxOrder(3))
	n := expr.MustParse("x")

	_, err := d.DeriveOrder(n, "x", 0)
	assert.True(t, errors.Is(err, derive.ErrInvalidOrder))
	_, err = d.DeriveOrder(n, "x", 4)
	assert.True(t, errors.Is(err, derive.ErrInvalidOrder))
	_, err = d.DeriveOrder(n, "x", 3)
	assert.NoError(t, err)

	for _, v := range []string{"", "2x", "x y", "x+1"} {
		_, err = d.DeriveOrder(n, v, 1)
		assert.True(t, errors.Is(err, derive.ErrInvalidVariable), v)
	}

	_, err = d.DeriveOrder(nil, "x", 1)
	assert.True(t, errors.Is(err, derive.ErrNilExpression))
	assert.Equal(t, 3, d.MaxOrder())
}

type failingSimplifier struct{}

func (failingSimplifier) Simplify(expr.Node) (expr.Node, error) {
	return nil, errors.New("simplifier unavailable")
}

func TestDeriveOrder_SimplifierFailureKeepsRaw(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d := derive.New(expr.DefaultConfig(), nil, failingSimplifier{}, derive.WithLogger(logger))

	res, err := d.DeriveOrder(expr.MustParse("x^2 + x"), "x", 1)
	require.NoError(t, err)
	assert.Equal(t, "2 * x^1 + 1", res.ResultText())
	assert.True(t, expr.Equal(res.Orders[0].Raw, res.Orders[0].Simplified))
	assert.Contains(t, buf.String(), "simplifier failed")
}

func TestDeriveOrder_DegradedPropagates(t *testing.T) {
	d := derive.New(expr.DefaultConfig(), nil, nil)
	res, err := d.DeriveOrder(expr.MustParse("f(x) + x^2"), "x", 2)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.True(t, res.Orders[0].Degraded)
}
