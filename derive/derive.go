// Package derive differentiates expression trees by explicit rule matching
// and records one explanatory Step per rule applied.
//
// Rules are tried in a fixed order and the first match wins:
//
//  1. constant                    -> 0
//  2. the differentiation variable -> 1
//  3. any other variable          -> 0, treated as a constant
//  4. grouping                    -> derivative of the inner expression
//  5. sum / difference            -> linearity
//  6. product                     -> product rule, generalized for n factors
//  7. quotient                    -> quotient rule
//  8. power                       -> power rule, exponential rule, general a^b
//  9. known function of one arg   -> chain rule from the derivative table
//  10. other function             -> generic chain rule through the Derivator
//  11. anything else              -> direct Derivator call
//
// When every avenue fails the derivative is 0, a "cannot differentiate" step
// is recorded and Result.Degraded is set. Differentiate never panics and
// never returns an error.
package derive

import (
	"io"
	"log/slog"

	"github.com/njchilds90/derivtutor/expr"
)

// DefaultMaxOrder bounds the order accepted by DeriveOrder.
const DefaultMaxOrder = 10

// Derivator computes a derivative without explanation. It backs rules 10
// and 11.
type Derivator interface {
	Derivative(n expr.Node, variable string) (expr.Node, error)
}

// Simplifier returns an equivalent, simpler tree. Failures are tolerated.
type Simplifier interface {
	Simplify(n expr.Node) (expr.Node, error)
}

// Differentiator holds the collaborators shared by every derivation. It is
// safe for concurrent use when its collaborators are.
type Differentiator struct {
	cfg        expr.Config
	parser     *expr.Parser
	derivator  Derivator
	simplifier Simplifier
	maxOrder   int
	logger     *slog.Logger
}

type Option func(*Differentiator)

// WithMaxOrder sets the largest order DeriveOrder accepts.
func WithMaxOrder(n int) Option {
	return func(d *Differentiator) {
		if n > 0 {
			d.maxOrder = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Differentiator) {
		if l != nil {
			d.logger = l
		}
	}
}

// New returns a Differentiator. Either collaborator may be nil: without a
// Derivator the fallback rules degrade immediately, and without a
// Simplifier every order keeps its raw derivative.
func New(cfg expr.Config, d Derivator, s Simplifier, opts ...Option) *Differentiator {
	diff := &Differentiator{
		cfg:        cfg,
		parser:     expr.NewParser(cfg),
		derivator:  d,
		simplifier: s,
		maxOrder:   DefaultMaxOrder,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(diff)
	}
	return diff
}

// MaxOrder reports the largest order DeriveOrder accepts.
func (d *Differentiator) MaxOrder() int { return d.maxOrder }

// Differentiate applies the rule table to n.
func (d *Differentiator) Differentiate(n expr.Node, variable string) Result {
	w := &walker{d: d, v: variable}
	tree := w.diff(n)
	return Result{Tree: tree, Steps: w.steps, Degraded: w.degraded}
}

func (d *Differentiator) derivative(n expr.Node, variable string) (out expr.Node, ok bool) {
	if d.derivator == nil {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("derivator panicked", "expression", expr.Format(n), "panic", r)
			out, ok = nil, false
		}
	}()
	out, err := d.derivator.Derivative(n, variable)
	if err != nil || out == nil {
		d.logger.Debug("derivator failed", "expression", expr.Format(n), "variable", variable, "error", err)
		return nil, false
	}
	return out, true
}

func (d *Differentiator) simplify(n expr.Node) (out expr.Node, ok bool) {
	if d.simplifier == nil {
		return n, false
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("simplifier panicked", "expression", expr.Format(n), "panic", r)
			out, ok = n, false
		}
	}()
	out, err := d.simplifier.Simplify(n)
	if err != nil || out == nil {
		d.logger.Debug("simplifier failed", "expression", expr.Format(n), "error", err)
		return n, false
	}
	return out, true
}
