package symbolic

import (
	"fmt"

	"github.com/njchilds90/derivtutor/expr"
)

// Engine runs the kernel on expr trees. Results travel back as text and are
// re-parsed, so every tree it returns is one the parser could have produced.
type Engine struct {
	parser *expr.Parser
}

func NewEngine(cfg expr.Config) *Engine {
	return &Engine{parser: expr.NewParser(cfg)}
}

// Derivative returns the simplified derivative of n with respect to variable.
func (e *Engine) Derivative(n expr.Node, variable string) (out expr.Node, err error) {
	defer recoverInto(&err)
	k, err := Lower(n)
	if err != nil {
		return nil, err
	}
	d, err := Diff(k, variable)
	if err != nil {
		return nil, err
	}
	return e.raise(d)
}

// Simplify returns an equivalent simplified tree.
func (e *Engine) Simplify(n expr.Node) (out expr.Node, err error) {
	defer recoverInto(&err)
	k, err := Lower(n)
	if err != nil {
		return nil, err
	}
	return e.raise(k.Simplify())
}

// SimplifyString parses s, simplifies it and returns the kernel text.
func (e *Engine) SimplifyString(s string) (string, error) {
	n, err := e.parser.Parse(s)
	if err != nil {
		return "", err
	}
	out, err := e.Simplify(n)
	if err != nil {
		return "", err
	}
	return expr.Format(out), nil
}

func (e *Engine) raise(k Expr) (expr.Node, error) {
	text := k.String()
	n, err := e.parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("symbolic: cannot read back %q: %w", text, err)
	}
	return n, nil
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrInternal, r)
	}
}
