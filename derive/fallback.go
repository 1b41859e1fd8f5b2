package derive

import (
	"fmt"

	"github.com/njchilds90/derivtutor/expr"
)

// placeholder stands in for the argument when asking the Derivator for the
// derivative of a bare function form. The leading underscores keep it out of
// any name a user can reasonably type.
const placeholder = "__arg"

// genericChain handles calls with no table entry: f(u)' = f'(u)·u'.
func (w *walker) genericChain(c *expr.Call) expr.Node {
	idx := w.open(fmt.Sprintf("Chain rule for %s: (f(u))' = f'(u)·u'.", c.Name()))
	if c.Len() == 1 {
		if res, ok := w.outerThenInner(c); ok {
			w.fill(idx, w.equation(c, res))
			return res
		}
	}
	return w.direct(c)
}

// outerThenInner differentiates f(__arg) through the Derivator, puts u back
// in place of the placeholder and multiplies by u'.
func (w *walker) outerThenInner(c *expr.Call) (expr.Node, bool) {
	u := c.Arg(0)
	outer, ok := w.d.derivative(expr.Apply(c.Name(), expr.Var(placeholder)), placeholder)
	if !ok {
		return nil, false
	}
	outer = expr.Substitute(outer, placeholder, expr.Clone(u))
	du := w.diff(u)
	return expr.Binary(expr.Mul, outer, du), true
}

// unmatched covers shapes no rule recognizes, such as malformed nodes.
func (w *walker) unmatched(n expr.Node) expr.Node {
	w.add(fmt.Sprintf("No differentiation rule matches %s; computing the derivative directly.", describe(n)), "")
	return w.direct(n)
}

// direct asks the Derivator for the whole derivative and degrades to 0.
func (w *walker) direct(n expr.Node) expr.Node {
	if res, ok := w.d.derivative(n, w.v); ok {
		w.add("Derivative computed directly.", w.equation(n, res))
		return res
	}
	w.degraded = true
	w.add(fmt.Sprintf("Cannot differentiate %s; using 0.", describe(n)), w.equation(n, expr.Const(0)))
	return expr.Const(0)
}

func describe(n expr.Node) string {
	if n == nil {
		return "an empty expression"
	}
	return expr.Format(n)
}
