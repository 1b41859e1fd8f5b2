package symbolic

import (
	"math/big"
	"strings"
)

// Binding strength used to decide where parentheses are needed. The levels
// match the expr grammar: sum < product < unary minus < power < atom.
const (
	precSum = iota + 1
	precProduct
	precUnary
	precPower
	precAtom
)

func (n *Num) String() string  { s, _ := format(n); return s }
func (s *Sym) String() string  { return s.name }
func (a *Add) String() string  { s, _ := format(a); return s }
func (m *Mul) String() string  { s, _ := format(m); return s }
func (p *Pow) String() string  { s, _ := format(p); return s }
func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func format(e Expr) (string, int) {
	switch v := e.(type) {
	case *Num:
		return formatNum(v)
	case *Sym:
		return v.name, precAtom
	case *Func:
		return v.String(), precAtom
	case *Add:
		return formatAdd(v)
	case *Mul:
		return formatProduct(v.factors)
	case *Pow:
		return formatPow(v)
	}
	return e.String(), precAtom
}

func operand(e Expr, min int) string {
	s, prec := format(e)
	if prec < min {
		return "(" + s + ")"
	}
	return s
}

func formatNum(n *Num) (string, int) {
	if n.val.IsInt() {
		s := n.val.Num().String()
		if n.IsNegative() {
			return s, precUnary
		}
		return s, precAtom
	}
	return n.val.Num().String() + "/" + n.val.Denom().String(), precProduct
}

// formatAdd prints terms with a negative coefficient as subtractions:
// x^2 - 3 * x + 1.
func formatAdd(a *Add) (string, int) {
	if len(a.terms) == 0 {
		return "0", precAtom
	}
	terms := a.terms
	// 1 - x^2 rather than -x^2 + 1.
	if n := len(terms); n > 1 {
		if last, ok := terms[n-1].(*Num); ok && last.IsPositive() {
			if _, neg := negated(terms[0]); neg {
				terms = append([]Expr{last}, terms[:n-1]...)
			}
		}
	}
	var b strings.Builder
	b.WriteString(operand(terms[0], precSum))
	for _, t := range terms[1:] {
		if pos, ok := negated(t); ok {
			b.WriteString(" - ")
			b.WriteString(operand(pos, precProduct))
			continue
		}
		b.WriteString(" + ")
		b.WriteString(operand(t, precSum))
	}
	return b.String(), precSum
}

// negated returns -t when t carries a negative numeric coefficient. The result
// is built directly so the factor order of t is kept.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if len(v.factors) < 2 {
			return nil, false
		}
		c, ok := v.factors[0].(*Num)
		if !ok || !c.IsNegative() {
			return nil, false
		}
		rest := v.factors[1:]
		if c.IsNegOne() {
			if len(rest) == 1 {
				return rest[0], true
			}
			return &Mul{factors: append([]Expr(nil), rest...)}, true
		}
		return &Mul{factors: append([]Expr{numNeg(c)}, rest...)}, true
	}
	return nil, false
}

// formatProduct splits factors into a numerator and a denominator:
// the coefficient p/q contributes p above and q below, and every power with
// a negative numeric exponent moves below with the exponent negated.
func formatProduct(factors []Expr) (string, int) {
	coeff := N(1)
	var num, den []Expr
	for _, f := range factors {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
			continue
		case *Pow:
			if e, ok := v.exp.(*Num); ok && e.IsNegative() {
				if pos := numNeg(e); pos.IsOne() {
					den = append(den, v.base)
				} else {
					den = append(den, &Pow{base: v.base, exp: pos})
				}
				continue
			}
		}
		num = append(num, f)
	}

	neg := coeff.IsNegative()
	c := numAbs(coeff)
	p, q := c.val.Num(), c.val.Denom()

	var top []string
	if !p.IsInt64() || p.Int64() != 1 || len(num) == 0 {
		top = append(top, p.String())
	}
	for _, f := range num {
		top = append(top, operand(f, precProduct))
	}

	var bottom []Expr
	if !q.IsInt64() || q.Int64() != 1 {
		bottom = append(bottom, &Num{val: new(big.Rat).SetInt(q)})
	}
	bottom = append(bottom, den...)

	s := strings.Join(top, " * ")
	switch len(bottom) {
	case 0:
	case 1:
		s += " / " + operand(bottom[0], precUnary)
	default:
		parts := make([]string, len(bottom))
		for i, f := range bottom {
			parts[i] = operand(f, precProduct)
		}
		s += " / (" + strings.Join(parts, " * ") + ")"
	}

	prec := precProduct
	switch {
	case len(top) != 1 || len(bottom) != 0:
	case neg:
		prec = precUnary
	case len(num) == 1:
		if _, p0 := format(num[0]); p0 >= precProduct {
			prec = p0
		} else {
			prec = precAtom
		}
	default:
		prec = precAtom
	}
	if neg {
		s = "-" + s
	}
	return s, prec
}

func formatPow(p *Pow) (string, int) {
	if e, ok := p.exp.(*Num); ok && e.IsNegative() {
		return formatProduct([]Expr{p})
	}
	base := operand(p.base, precAtom)
	if e, ok := p.exp.(*Num); ok && e.IsInteger() {
		return base + "^" + e.String(), precPower
	}
	return base + "^" + operand(p.exp, precAtom), precPower
}
