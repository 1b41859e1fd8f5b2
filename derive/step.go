package derive

import "github.com/njchilds90/derivtutor/expr"

// Step is one explanatory unit: a sentence and an optional LaTeX formula.
type Step struct {
	Explanation string `json:"explanation"`
	Formula     string `json:"formula,omitempty"`
}

// Result is the outcome of one Differentiate call. Steps are in pre-order:
// a rule's step precedes the steps of the sub-expressions it recursed into.
type Result struct {
	Tree     expr.Node
	Steps    []Step
	Degraded bool
}

// walker accumulates steps for one Differentiate call.
type walker struct {
	d        *Differentiator
	v        string
	steps    []Step
	degraded bool
}

func (w *walker) add(explanation, formula string) {
	w.steps = append(w.steps, Step{Explanation: explanation, Formula: formula})
}

// open records a step whose formula is only known after recursion and
// returns its index for fill.
func (w *walker) open(explanation string) int {
	w.steps = append(w.steps, Step{Explanation: explanation})
	return len(w.steps) - 1
}

func (w *walker) fill(idx int, formula string) { w.steps[idx].Formula = formula }

// ddx is the LaTeX operator d/dv.
func (w *walker) ddx() string {
	return `\frac{d}{d` + expr.LaTeXSymbol(w.v) + `}`
}

// equation renders d/dv(n) = result.
func (w *walker) equation(n, result expr.Node) string {
	return w.ddx() + `\left(` + expr.LaTeX(n) + `\right) = ` + expr.LaTeX(result)
}
