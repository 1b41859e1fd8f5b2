package expr

import (
	"math"
	"strconv"
	"strings"
)

// Binding strength used to decide where parentheses are needed.
const (
	precSum = iota + 1
	precProduct
	precUnary
	precPower
	precFrac
	precAtom
)

// ============================================================
// Text
// ============================================================

// Format renders n as expression text the Parser accepts. Binary operators
// are spaced except ^, and a product led by -1 prints as a negation:
// "3 * x^2", "-sin(x)", "(x + 1) / x".
func Format(n Node) string {
	s, _ := format(n)
	return s
}

// FormatNumber renders a constant the way Format does.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func format(n Node) (string, int) {
	switch v := n.(type) {
	case *Constant:
		if v.value < 0 {
			return FormatNumber(v.value), precUnary
		}
		return FormatNumber(v.value), precAtom
	case *Variable:
		return v.name, precAtom
	case *Grouping:
		return "(" + Format(v.inner) + ")", precAtom
	case *Call:
		parts := make([]string, len(v.args))
		for i, a := range v.args {
			parts[i] = Format(a)
		}
		return v.name + "(" + strings.Join(parts, ", ") + ")", precAtom
	case *BinaryOp:
		return formatBinary(v)
	}
	return "?", precAtom
}

func formatBinary(b *BinaryOp) (string, int) {
	if len(b.args) == 0 {
		return "?", precAtom
	}
	switch b.op {
	case Add:
		parts := make([]string, len(b.args))
		for i, a := range b.args {
			parts[i] = operand(a, precSum)
		}
		return strings.Join(parts, " + "), precSum
	case Sub:
		parts := []string{operand(b.args[0], precSum)}
		for _, a := range b.args[1:] {
			parts = append(parts, operand(a, precProduct))
		}
		return strings.Join(parts, " - "), precSum
	case Mul:
		if len(b.args) == 2 && isNegOne(b.args[0]) {
			return "-" + operand(b.args[1], precUnary), precUnary
		}
		parts := make([]string, len(b.args))
		for i, a := range b.args {
			parts[i] = operand(a, precProduct)
		}
		return strings.Join(parts, " * "), precProduct
	case Div:
		parts := []string{operand(b.args[0], precProduct)}
		for _, a := range b.args[1:] {
			parts = append(parts, operand(a, precUnary))
		}
		return strings.Join(parts, " / "), precProduct
	case Pow:
		// Right-associative: only the last exponent binds without parentheses.
		s := operand(b.args[len(b.args)-1], precUnary)
		for i := len(b.args) - 2; i >= 0; i-- {
			s = operand(b.args[i], precAtom) + "^" + s
		}
		return s, precPower
	}
	return "?", precAtom
}

func operand(n Node, min int) string {
	s, prec := format(n)
	if prec < min {
		return "(" + s + ")"
	}
	return s
}

func isNegOne(n Node) bool {
	c, ok := n.(*Constant)
	return ok && c.value == -1
}

// ============================================================
// LaTeX
// ============================================================

// LaTeX renders n as a LaTeX math fragment without delimiters.
func LaTeX(n Node) string {
	s, _ := latex(n)
	return s
}

var latexFuncs = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`,
	"sec": `\sec`, "csc": `\csc`, "cot": `\cot`,
	"sinh": `\sinh`, "cosh": `\cosh`, "tanh": `\tanh`,
	"asin": `\arcsin`, "arcsin": `\arcsin`,
	"acos": `\arccos`, "arccos": `\arccos`,
	"atan": `\arctan`, "arctan": `\arctan`,
	"exp": `\exp`, "ln": `\ln`, "log": `\log`,
}

var latexSymbols = map[string]string{
	"pi": `\pi`, "alpha": `\alpha`, "beta": `\beta`, "gamma": `\gamma`,
	"theta": `\theta`, "lambda": `\lambda`, "mu": `\mu`, "omega": `\omega`,
	"phi": `\phi`, "sigma": `\sigma`, "tau": `\tau`,
}

// LaTeXSymbol renders a variable name.
func LaTeXSymbol(name string) string {
	if s, ok := latexSymbols[name]; ok {
		return s
	}
	if len(name) > 1 {
		return `\mathrm{` + escapeLaTeX(name) + `}`
	}
	return name
}

func latex(n Node) (string, int) {
	switch v := n.(type) {
	case *Constant:
		if v.value < 0 {
			return FormatNumber(v.value), precUnary
		}
		return FormatNumber(v.value), precAtom
	case *Variable:
		return LaTeXSymbol(v.name), precAtom
	case *Grouping:
		return `\left(` + LaTeX(v.inner) + `\right)`, precAtom
	case *Call:
		return latexCall(v), precAtom
	case *BinaryOp:
		return latexBinary(v)
	}
	return `\square`, precAtom
}

func latexCall(c *Call) string {
	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = LaTeX(a)
	}
	switch {
	case c.name == "sqrt" && len(args) == 1:
		return `\sqrt{` + LaTeX(Unwrap(c.args[0])) + `}`
	case c.name == "cbrt" && len(args) == 1:
		return `\sqrt[3]{` + LaTeX(Unwrap(c.args[0])) + `}`
	case c.name == "abs" && len(args) == 1:
		return `\left|` + args[0] + `\right|`
	case c.name == "log" && len(args) == 2:
		return `\log_{` + args[1] + `}\left(` + args[0] + `\right)`
	case c.name == "log10" && len(args) == 1:
		return `\log_{10}\left(` + args[0] + `\right)`
	case c.name == "log2" && len(args) == 1:
		return `\log_{2}\left(` + args[0] + `\right)`
	}
	if fn, ok := latexFuncs[c.name]; ok {
		return fn + `\left(` + strings.Join(args, ", ") + `\right)`
	}
	return `\operatorname{` + escapeLaTeX(c.name) + `}\left(` + strings.Join(args, ", ") + `\right)`
}

func latexBinary(b *BinaryOp) (string, int) {
	if len(b.args) == 0 {
		return `\square`, precAtom
	}
	switch b.op {
	case Add:
		parts := make([]string, len(b.args))
		for i, a := range b.args {
			parts[i] = latexOperand(a, precSum)
		}
		return strings.Join(parts, " + "), precSum
	case Sub:
		parts := []string{latexOperand(b.args[0], precSum)}
		for _, a := range b.args[1:] {
			parts = append(parts, latexOperand(a, precProduct))
		}
		return strings.Join(parts, " - "), precSum
	case Mul:
		if len(b.args) == 2 && isNegOne(b.args[0]) {
			return "-" + latexOperand(b.args[1], precUnary), precUnary
		}
		parts := make([]string, len(b.args))
		for i, a := range b.args {
			parts[i] = latexOperand(a, precProduct)
		}
		return strings.Join(parts, ` \cdot `), precProduct
	case Div:
		s := LaTeX(Unwrap(b.args[0]))
		for _, a := range b.args[1:] {
			s = `\frac{` + s + `}{` + LaTeX(Unwrap(a)) + `}`
		}
		return s, precFrac
	case Pow:
		s := LaTeX(Unwrap(b.args[len(b.args)-1]))
		for i := len(b.args) - 2; i >= 0; i-- {
			s = latexOperand(b.args[i], precAtom) + `^{` + s + `}`
		}
		return s, precPower
	}
	return `\square`, precAtom
}

func latexOperand(n Node, min int) string {
	s, prec := latex(n)
	if prec < min {
		return `\left(` + s + `\right)`
	}
	return s
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`, `{`, `\{`, `}`, `\}`, `_`, `\_`,
	`%`, `\%`, `$`, `\$`, `#`, `\#`, `&`, `\&`, `^`, `\^{}`, `~`, `\~{}`,
)

func escapeLaTeX(s string) string { return latexEscaper.Replace(s) }

// TextLaTeX wraps arbitrary text so it typesets literally. It is the fallback
// when a string cannot be converted to a formula.
func TextLaTeX(s string) string {
	return `\text{` + escapeLaTeX(s) + `}`
}
