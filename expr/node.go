// Package expr holds the parsed representation of a mathematical expression.
//
// A Node is one of exactly five shapes:
//   - *Constant   numeric literal
//   - *Variable   named symbol
//   - *Grouping   parenthesized sub-expression, transparent to the math
//   - *BinaryOp   +, -, *, /, ^ (+ and * may be n-ary)
//   - *Call       named function application
//
// Nodes are immutable once constructed. Constructors copy the slices they are
// given and accessors hand out copies, so a sub-tree can be shared between an
// input tree and any number of trees built from it.
package expr

import "sort"

// ============================================================
// Core Interface
// ============================================================

// Node is a sealed interface: only the types in this package implement it.
type Node interface {
	node()
}

// Operator identifies the operation of a BinaryOp.
type Operator int

const (
	Add Operator = iota
	Sub
	Mul
	Div
	Pow
)

func (o Operator) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Pow:
		return "^"
	}
	return "?"
}

// ============================================================
// Constant
// ============================================================

type Constant struct{ value float64 }

func Const(v float64) *Constant { return &Constant{value: v} }

func (c *Constant) Value() float64 { return c.value }

// ============================================================
// Variable
// ============================================================

type Variable struct{ name string }

func Var(name string) *Variable { return &Variable{name: name} }

func (v *Variable) Name() string { return v.name }

// ============================================================
// Grouping
// ============================================================

type Grouping struct{ inner Node }

func Group(inner Node) *Grouping { return &Grouping{inner: inner} }

func (g *Grouping) Inner() Node { return g.inner }

// ============================================================
// BinaryOp
// ============================================================

// BinaryOp applies Op to two or more operands. Only Add and Mul are built
// with more than two operands by the parser.
type BinaryOp struct {
	op   Operator
	args []Node
}

func Binary(op Operator, args ...Node) *BinaryOp {
	return &BinaryOp{op: op, args: append([]Node(nil), args...)}
}

func (b *BinaryOp) Op() Operator   { return b.op }
func (b *BinaryOp) Len() int       { return len(b.args) }
func (b *BinaryOp) Arg(i int) Node { return b.args[i] }
func (b *BinaryOp) Args() []Node   { return append([]Node(nil), b.args...) }
func (b *BinaryOp) Left() Node     { return b.args[0] }
func (b *BinaryOp) Right() Node    { return b.args[len(b.args)-1] }

// ============================================================
// Call
// ============================================================

type Call struct {
	name string
	args []Node
}

func Apply(name string, args ...Node) *Call {
	return &Call{name: name, args: append([]Node(nil), args...)}
}

func (c *Call) Name() string   { return c.name }
func (c *Call) Len() int       { return len(c.args) }
func (c *Call) Arg(i int) Node { return c.args[i] }
func (c *Call) Args() []Node   { return append([]Node(nil), c.args...) }

func (*Constant) node() {}
func (*Variable) node() {}
func (*Grouping) node() {}
func (*BinaryOp) node() {}
func (*Call) node()     {}

// ============================================================
// Tree utilities
// ============================================================

// Clone returns a deep copy of n.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Constant:
		return Const(v.value)
	case *Variable:
		return Var(v.name)
	case *Grouping:
		return Group(Clone(v.inner))
	case *BinaryOp:
		return Binary(v.op, cloneAll(v.args)...)
	case *Call:
		return Apply(v.name, cloneAll(v.args)...)
	}
	return n
}

func cloneAll(ns []Node) []Node {
	out := make([]Node, len(ns))
	for i, n := range ns {
		out[i] = Clone(n)
	}
	return out
}

// Equal reports structural equality. Grouping is significant.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Constant:
		y, ok := b.(*Constant)
		return ok && x.value == y.value
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.name == y.name
	case *Grouping:
		y, ok := b.(*Grouping)
		return ok && Equal(x.inner, y.inner)
	case *BinaryOp:
		y, ok := b.(*BinaryOp)
		return ok && x.op == y.op && equalAll(x.args, y.args)
	case *Call:
		y, ok := b.(*Call)
		return ok && x.name == y.name && equalAll(x.args, y.args)
	}
	return false
}

func equalAll(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Unwrap strips any number of enclosing Groupings.
func Unwrap(n Node) Node {
	for {
		g, ok := n.(*Grouping)
		if !ok {
			return n
		}
		n = g.inner
	}
}

// DependsOn reports whether the variable name occurs anywhere in n.
func DependsOn(n Node, name string) bool {
	switch v := n.(type) {
	case *Variable:
		return v.name == name
	case *Grouping:
		return DependsOn(v.inner, name)
	case *BinaryOp:
		for _, a := range v.args {
			if DependsOn(a, name) {
				return true
			}
		}
	case *Call:
		for _, a := range v.args {
			if DependsOn(a, name) {
				return true
			}
		}
	}
	return false
}

// Substitute replaces every Variable called name with a clone of value.
func Substitute(n Node, name string, value Node) Node {
	switch v := n.(type) {
	case *Variable:
		if v.name == name {
			return Clone(value)
		}
		return v
	case *Grouping:
		return Group(Substitute(v.inner, name, value))
	case *BinaryOp:
		args := make([]Node, len(v.args))
		for i, a := range v.args {
			args[i] = Substitute(a, name, value)
		}
		return Binary(v.op, args...)
	case *Call:
		args := make([]Node, len(v.args))
		for i, a := range v.args {
			args[i] = Substitute(a, name, value)
		}
		return Apply(v.name, args...)
	}
	return n
}

// Variables returns the sorted set of variable names that occur in n.
func Variables(n Node) []string {
	seen := map[string]struct{}{}
	collectVariables(n, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectVariables(n Node, out map[string]struct{}) {
	switch v := n.(type) {
	case *Variable:
		out[v.name] = struct{}{}
	case *Grouping:
		collectVariables(v.inner, out)
	case *BinaryOp:
		for _, a := range v.args {
			collectVariables(a, out)
		}
	case *Call:
		for _, a := range v.args {
			collectVariables(a, out)
		}
	}
}
