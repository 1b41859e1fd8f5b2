package chat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/derivtutor/chat"
	"github.com/njchilds90/derivtutor/derive"
	"github.com/njchilds90/derivtutor/expr"
	"github.com/njchilds90/derivtutor/symbolic"
)

type engineDeriver struct {
	calls []string
	d     *derive.Differentiator
}

func newDeriver() *engineDeriver {
	cfg := expr.DefaultConfig()
	eng := symbolic.NewEngine(cfg)
	return &engineDeriver{d: derive.New(cfg, eng, eng)}
}

func (e *engineDeriver) DeriveText(_ context.Context, expression, variable string) (*derive.Derivation, error) {
	e.calls = append(e.calls, expression)
	n, err := expr.Parse(expression)
	if err != nil {
		return nil, err
	}
	return e.d.DeriveOrder(n, variable, 1)
}

func TestRespond_Rules(t *testing.T) {
	r := chat.NewResponder(newDeriver(), nil)
	tests := []struct {
		question string
		rule     string
		contains string
	}{
		{"   ", "empty", "not asked"},
		{"Who created you?", "creator", chat.Name},
		{"Ai tạo ra bạn?", "creator", "Tôi là AI HQD"},
		{"What is your name", "identity", chat.Name},
		{"Bạn là ai?", "identity", "Mình là AI HQD"},
		{"explain the product rule", "product_rule", "u'·v + u·v'"},
		{"Quy tắc thương là gì", "quotient_rule", "Quy tắc thương"},
		{"chain rule please", "chain_rule", "f'(g(x))"},
		{"power rule?", "power_rule", "n·x^(n-1)"},
		{"thanks!", "thanks", "Happy to help"},
		{"cảm ơn nhiều", "thanks", "Rất vui"},
		{"what is the weather", "fallback", "derivative of sin(x^2)"},
	}
	for _, tt := range tests {
		rep := r.Respond(context.Background(), tt.question)
		assert.Equal(t, tt.rule, rep.Rule, tt.question)
		assert.Contains(t, rep.Text, tt.contains, tt.question)
		assert.Nil(t, rep.Derivation, tt.question)
	}
}

func TestRespond_FirstMatchWins(t *testing.T) {
	r := chat.NewResponder(nil, nil)
	rep := r.Respond(context.Background(), "who created the product rule?")
	assert.Equal(t, "creator", rep.Rule)
}

func TestRespond_Derivative(t *testing.T) {
	d := newDeriver()
	r := chat.NewResponder(d, nil)

	rep := r.Respond(context.Background(), "What is the derivative of x^3?")
	assert.Equal(t, "derivative", rep.Rule)
	assert.Equal(t, "The derivative of x^3 is 3 * x^2", rep.Text)
	require.NotNil(t, rep.Derivation)

	rep = r.Respond(context.Background(), "Đạo hàm của sin(x^2)")
	assert.Equal(t, "Đạo hàm của sin(x^2) là 2 * x * cos(x^2)", rep.Text)

	rep = r.Respond(context.Background(), "d/dx 6x.")
	assert.Equal(t, "The derivative of 6x is 6", rep.Text)

	assert.Equal(t, []string{"x^3", "sin(x^2)", "6x"}, d.calls)
}

func TestRespond_DerivativeWithoutExpression(t *testing.T) {
	d := newDeriver()
	r := chat.NewResponder(d, nil)

	rep := r.Respond(context.Background(), "can you take a derivative")
	assert.Equal(t, "derivative", rep.Rule)
	assert.Contains(t, rep.Text, "Which function")
	assert.Empty(t, d.calls)

	rep = chat.NewResponder(nil, nil).Respond(context.Background(), "derivative of x^2")
	assert.Contains(t, rep.Text, "Which function")
}

func TestRespond_DerivativeParseError(t *testing.T) {
	r := chat.NewResponder(newDeriver(), nil)
	rep := r.Respond(context.Background(), "derive sin(x^")
	assert.Equal(t, "derivative", rep.Rule)
	assert.Contains(t, rep.Text, "I could not differentiate sin(x^")
	assert.Nil(t, rep.Derivation)
}
