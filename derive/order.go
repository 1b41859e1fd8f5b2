package derive

import (
	"fmt"
	"strings"

	"github.com/njchilds90/derivtutor/expr"
)

// Order is one pass of the higher-order pipeline.
type Order struct {
	Number     int       `json:"number"`
	Steps      []Step    `json:"steps"`
	Raw        expr.Node `json:"-"`
	Simplified expr.Node `json:"-"`
	Degraded   bool      `json:"degraded"`
}

// Derivation is the full outcome of DeriveOrder. Steps holds the framing
// steps around the rule steps of every order, ready for rendering.
type Derivation struct {
	Original expr.Node `json:"-"`
	Variable string    `json:"variable"`
	Orders   []Order   `json:"orders"`
	Steps    []Step    `json:"steps"`
	Result   expr.Node `json:"-"`
	Degraded bool      `json:"degraded"`
}

// ResultText is the final derivative in parser syntax.
func (d *Derivation) ResultText() string { return expr.Format(d.Result) }

// ResultLaTeX is the final derivative as LaTeX.
func (d *Derivation) ResultLaTeX() string { return expr.LaTeX(d.Result) }

// DeriveOrder differentiates root order times. After every pass the
// derivative is simplified, printed and parsed again, so the steps of pass k
// explain the simplified result of pass k-1 rather than the original tree.
func (d *Differentiator) DeriveOrder(root expr.Node, variable string, order int) (*Derivation, error) {
	if order < 1 || order > d.maxOrder {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidOrder, order, d.maxOrder)
	}
	if !expr.IsIdentifier(variable) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVariable, variable)
	}
	if root == nil {
		return nil, ErrNilExpression
	}

	out := &Derivation{Original: root, Variable: variable}
	out.Steps = append(out.Steps, Step{
		Explanation: "Original expression:",
		Formula:     `\displaystyle ` + expr.LaTeX(root),
	})

	current := root
	for k := 1; k <= order; k++ {
		res := d.Differentiate(current, variable)
		simplified, ok := d.simplify(res.Tree)
		if !ok {
			d.logger.Debug("keeping unsimplified derivative", "order", k, "derivative", expr.Format(res.Tree))
		}

		out.Steps = append(out.Steps, Step{Explanation: fmt.Sprintf("Derivative of order %d", k)})
		out.Steps = append(out.Steps, res.Steps...)
		out.Steps = append(out.Steps,
			Step{
				Explanation: fmt.Sprintf("Derivative of order %d:", k),
				Formula:     `\displaystyle ` + expr.LaTeX(res.Tree),
			},
			Step{
				Explanation: "Simplify:",
				Formula:     `\displaystyle ` + expr.LaTeX(simplified),
			},
		)
		out.Orders = append(out.Orders, Order{
			Number:     k,
			Steps:      res.Steps,
			Raw:        res.Tree,
			Simplified: simplified,
			Degraded:   res.Degraded,
		})
		out.Degraded = out.Degraded || res.Degraded

		current = simplified
		if reparsed, err := d.parser.Parse(expr.Format(simplified)); err == nil {
			current = reparsed
		} else {
			d.logger.Debug("re-parse failed, continuing with tree", "order", k, "error", err)
		}
	}

	out.Result = current
	out.Steps = append(out.Steps, Step{
		Explanation: "Conclusion: the simplified derivative is " + expr.Format(current),
		Formula:     conclusion(variable, order, current),
	})
	d.logger.Debug("derivation complete",
		"variable", variable, "order", order,
		"result", expr.Format(current), "steps", len(out.Steps), "degraded", out.Degraded)
	return out, nil
}

// conclusion renders f'(v) = ..., switching to f^{(k)} past the third order.
func conclusion(variable string, order int, result expr.Node) string {
	mark := strings.Repeat("'", order)
	if order > 3 {
		mark = fmt.Sprintf("^{(%d)}", order)
	}
	return `\displaystyle f` + mark + `(` + expr.LaTeXSymbol(variable) + `) = ` + expr.LaTeX(result)
}
