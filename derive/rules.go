package derive

import (
	"fmt"

	"github.com/njchilds90/derivtutor/expr"
)

func (w *walker) diff(n expr.Node) expr.Node {
	switch v := n.(type) {
	case *expr.Constant:
		w.add("The derivative of a constant is 0.", w.equation(n, expr.Const(0)))
		return expr.Const(0)

	case *expr.Variable:
		if v.Name() == w.v {
			w.add(fmt.Sprintf("%s is the differentiation variable, so its derivative is 1.", v.Name()),
				w.equation(n, expr.Const(1)))
			return expr.Const(1)
		}
		msg := fmt.Sprintf("%s does not depend on %s, so it is treated as a constant: derivative 0.", v.Name(), w.v)
		if w.d.cfg.IsConstant(v.Name()) {
			msg = fmt.Sprintf("%s is a named constant: derivative 0.", v.Name())
		}
		w.add(msg, w.equation(n, expr.Const(0)))
		return expr.Const(0)

	case *expr.Grouping:
		idx := w.open("Differentiate the contents of the parentheses.")
		d := w.diff(v.Inner())
		w.fill(idx, w.equation(n, d))
		return d

	case *expr.BinaryOp:
		return w.binary(v)

	case *expr.Call:
		if rule, ok := chainRules[v.Name()]; ok && v.Len() == 1 {
			return w.chain(v, rule)
		}
		return w.genericChain(v)
	}
	return w.unmatched(n)
}

func (w *walker) binary(b *expr.BinaryOp) expr.Node {
	switch op := b.Op(); {
	case (op == expr.Add || op == expr.Sub) && b.Len() >= 2:
		return w.sum(b)
	case op == expr.Mul && b.Len() == 2:
		return w.product(b)
	case op == expr.Mul && b.Len() > 2:
		return w.productN(b)
	case op == expr.Div && b.Len() == 2:
		return w.quotient(b)
	case op == expr.Pow && b.Len() >= 2:
		return w.power(b)
	}
	return w.unmatched(b)
}

// ============================================================
// Linearity, product and quotient
// ============================================================

func (w *walker) sum(b *expr.BinaryOp) expr.Node {
	text := "Sum rule: (u + v)' = u' + v'. Differentiate each term."
	if b.Op() == expr.Sub {
		text = "Difference rule: (u - v)' = u' - v'. Differentiate each term."
	}
	idx := w.open(text)
	args := b.Args()
	ds := make([]expr.Node, len(args))
	for i, a := range args {
		ds[i] = w.diff(a)
	}
	res := expr.Binary(b.Op(), ds...)
	w.fill(idx, w.equation(b, res))
	return res
}

func (w *walker) product(b *expr.BinaryOp) expr.Node {
	idx := w.open("Product rule: (u·v)' = u'·v + u·v'.")
	u, v := b.Arg(0), b.Arg(1)
	du := w.diff(u)
	dv := w.diff(v)
	res := expr.Binary(expr.Add,
		expr.Binary(expr.Mul, du, expr.Clone(v)),
		expr.Binary(expr.Mul, expr.Clone(u), dv),
	)
	w.fill(idx, w.equation(b, res))
	return res
}

// productN sums, in factor order, the products with one factor replaced by
// its derivative.
func (w *walker) productN(b *expr.BinaryOp) expr.Node {
	idx := w.open(fmt.Sprintf("Generalized product rule for %d factors: differentiate one factor at a time and add the results.", b.Len()))
	factors := b.Args()
	terms := make([]expr.Node, len(factors))
	for i := range factors {
		di := w.diff(factors[i])
		prod := make([]expr.Node, len(factors))
		for j, f := range factors {
			if j == i {
				prod[j] = di
			} else {
				prod[j] = expr.Clone(f)
			}
		}
		terms[i] = expr.Binary(expr.Mul, prod...)
	}
	res := expr.Binary(expr.Add, terms...)
	w.fill(idx, w.equation(b, res))
	return res
}

func (w *walker) quotient(b *expr.BinaryOp) expr.Node {
	idx := w.open("Quotient rule: (u/v)' = (u'·v - u·v') / v^2.")
	u, v := b.Arg(0), b.Arg(1)
	du := w.diff(u)
	dv := w.diff(v)
	res := expr.Binary(expr.Div,
		expr.Binary(expr.Sub,
			expr.Binary(expr.Mul, du, expr.Clone(v)),
			expr.Binary(expr.Mul, expr.Clone(u), dv),
		),
		expr.Binary(expr.Pow, expr.Clone(v), expr.Const(2)),
	)
	w.fill(idx, w.equation(b, res))
	return res
}

// ============================================================
// Powers
// ============================================================

func (w *walker) power(b *expr.BinaryOp) expr.Node {
	// a^b^c is a^(b^c).
	args := b.Args()
	exp := args[len(args)-1]
	for i := len(args) - 2; i >= 1; i-- {
		exp = expr.Binary(expr.Pow, args[i], exp)
	}
	base := args[0]
	node := expr.Binary(expr.Pow, base, exp)

	if w.isVariable(base) {
		if c, ok := expr.Unwrap(exp).(*expr.Constant); ok {
			n := c.Value()
			res := expr.Binary(expr.Mul,
				expr.Const(n),
				expr.Binary(expr.Pow, expr.Clone(base), expr.Const(n-1)),
			)
			w.add(fmt.Sprintf("Power rule: (%s^n)' = n·%s^(n-1) with n = %s.", w.v, w.v, expr.FormatNumber(n)),
				w.equation(node, res))
			return res
		}
	}

	if w.isConstant(base) && w.isVariable(exp) {
		res := expr.Binary(expr.Mul, expr.Clone(node), expr.Apply("ln", expr.Clone(base)))
		w.add(fmt.Sprintf("Exponential rule: (a^%s)' = a^%s·ln(a) with a = %s.", w.v, w.v, expr.Format(base)),
			w.equation(node, res))
		return res
	}

	idx := w.open("General power rule: (a^b)' = a^b·(b'·ln(a) + b·a'/a).")
	da := w.diff(base)
	db := w.diff(exp)
	res := expr.Binary(expr.Mul,
		expr.Clone(node),
		expr.Binary(expr.Add,
			expr.Binary(expr.Mul, db, expr.Apply("ln", expr.Clone(base))),
			expr.Binary(expr.Mul, expr.Clone(exp), expr.Binary(expr.Div, da, expr.Clone(base))),
		),
	)
	w.fill(idx, w.equation(node, res))
	return res
}

func (w *walker) isVariable(n expr.Node) bool {
	v, ok := expr.Unwrap(n).(*expr.Variable)
	return ok && v.Name() == w.v
}

// isConstant accepts numeric literals and named constants such as e and pi.
func (w *walker) isConstant(n expr.Node) bool {
	switch v := expr.Unwrap(n).(type) {
	case *expr.Constant:
		return true
	case *expr.Variable:
		return v.Name() != w.v && w.d.cfg.IsConstant(v.Name())
	}
	return false
}

// ============================================================
// Functions
// ============================================================

type chainRule struct {
	identity string
	build    func(u, du expr.Node) expr.Node
}

func neg(n expr.Node) expr.Node { return expr.Binary(expr.Mul, expr.Const(-1), n) }

func call(name string, u expr.Node) expr.Node { return expr.Apply(name, expr.Clone(u)) }

func oneMinusSquare(u expr.Node) expr.Node {
	return expr.Binary(expr.Sub, expr.Const(1), expr.Binary(expr.Pow, expr.Clone(u), expr.Const(2)))
}

var (
	lnRule = chainRule{"(ln u)' = u'/u", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Div, du, expr.Clone(u))
	}}
	asinRule = chainRule{"(asin u)' = u'/sqrt(1 - u^2)", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Div, du, expr.Apply("sqrt", oneMinusSquare(u)))
	}}
	acosRule = chainRule{"(acos u)' = -u'/sqrt(1 - u^2)", func(u, du expr.Node) expr.Node {
		return neg(expr.Binary(expr.Div, du, expr.Apply("sqrt", oneMinusSquare(u))))
	}}
	atanRule = chainRule{"(atan u)' = u'/(1 + u^2)", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Div, du,
			expr.Binary(expr.Add, expr.Const(1), expr.Binary(expr.Pow, expr.Clone(u), expr.Const(2))))
	}}
)

var chainRules = map[string]chainRule{
	"sin": {"(sin u)' = cos(u)·u'", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Mul, call("cos", u), du)
	}},
	"cos": {"(cos u)' = -sin(u)·u'", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Mul, neg(call("sin", u)), du)
	}},
	"tan": {"(tan u)' = u'/cos^2(u)", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Div, du, expr.Binary(expr.Pow, call("cos", u), expr.Const(2)))
	}},
	"sec": {"(sec u)' = sec(u)·tan(u)·u'", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Mul, call("sec", u), call("tan", u), du)
	}},
	"csc": {"(csc u)' = -csc(u)·cot(u)·u'", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Mul, neg(call("csc", u)), call("cot", u), du)
	}},
	"cot": {"(cot u)' = -csc^2(u)·u'", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Mul, neg(expr.Binary(expr.Pow, call("csc", u), expr.Const(2))), du)
	}},
	"exp": {"(exp u)' = exp(u)·u'", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Mul, call("exp", u), du)
	}},
	"sqrt": {"(sqrt u)' = u'/(2·sqrt(u))", func(u, du expr.Node) expr.Node {
		return expr.Binary(expr.Div, du, expr.Binary(expr.Mul, expr.Const(2), call("sqrt", u)))
	}},
	"ln":     lnRule,
	"log":    lnRule,
	"asin":   asinRule,
	"arcsin": asinRule,
	"acos":   acosRule,
	"arccos": acosRule,
	"atan":   atanRule,
	"arctan": atanRule,
}

func (w *walker) chain(c *expr.Call, rule chainRule) expr.Node {
	u := c.Arg(0)
	idx := w.open(fmt.Sprintf("Chain rule: %s, with u = %s.", rule.identity, expr.Format(u)))
	du := w.diff(u)
	res := rule.build(u, du)
	w.fill(idx, w.equation(c, res))
	return res
}
