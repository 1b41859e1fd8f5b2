// Package derivtutor is a step-by-step derivative tutor.
//
// Design goals:
//   - Explain every rule applied, in the order a student would apply it
//   - Never fail on a parsed expression: unknown shapes degrade to 0 with a note
//   - Exact rational simplification of every intermediate result
//   - JSON-friendly results for pages, chat front ends and agent tool calls
package derivtutor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/njchilds90/derivtutor/chat"
	"github.com/njchilds90/derivtutor/derive"
	"github.com/njchilds90/derivtutor/expr"
	"github.com/njchilds90/derivtutor/history"
	"github.com/njchilds90/derivtutor/plot"
	"github.com/njchilds90/derivtutor/render"
	"github.com/njchilds90/derivtutor/symbolic"
)

// ErrEmptyExpression is returned when the input is blank.
var ErrEmptyExpression = errors.New("derivtutor: empty expression")

// DefaultVariable is used when a request names none.
const DefaultVariable = "x"

// ============================================================
// Tutor
// ============================================================

// Tutor wires the parser, the rule-based differentiator, the symbolic engine,
// the sampler, the chat responder and an optional history store. It is safe
// for concurrent use.
type Tutor struct {
	cfg      expr.Config
	parser   *expr.Parser
	engine   *symbolic.Engine
	diff     *derive.Differentiator
	sampler  *plot.Sampler
	history  *history.Store
	chat     *chat.Responder
	logger   *slog.Logger
	variable string
	maxOrder int
	xMin     float64
	xMax     float64
}

type Option func(*Tutor)

func WithConfig(cfg expr.Config) Option { return func(t *Tutor) { t.cfg = cfg } }

// WithHistory persists every successful Derive to s.
func WithHistory(s *history.Store) Option { return func(t *Tutor) { t.history = s } }

func WithLogger(l *slog.Logger) Option {
	return func(t *Tutor) {
		if l != nil {
			t.logger = l
		}
	}
}

func WithSampler(s *plot.Sampler) Option { return func(t *Tutor) { t.sampler = s } }

func WithMaxOrder(n int) Option { return func(t *Tutor) { t.maxOrder = n } }

// WithDefaultVariable replaces DefaultVariable for requests that name none.
func WithDefaultVariable(v string) Option {
	return func(t *Tutor) {
		if expr.IsIdentifier(v) {
			t.variable = v
		}
	}
}

// WithPlotRange sets the x range used when a plot request gives none.
func WithPlotRange(xMin, xMax float64) Option {
	return func(t *Tutor) {
		if xMin < xMax {
			t.xMin, t.xMax = xMin, xMax
		}
	}
}

func New(opts ...Option) *Tutor {
	t := &Tutor{
		cfg:      expr.DefaultConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		variable: DefaultVariable,
		maxOrder: derive.DefaultMaxOrder,
		xMin:     plot.DefaultXMin,
		xMax:     plot.DefaultXMax,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.parser = expr.NewParser(t.cfg)
	t.engine = symbolic.NewEngine(t.cfg)
	t.diff = derive.New(t.cfg, t.engine, t.engine,
		derive.WithMaxOrder(t.maxOrder), derive.WithLogger(t.logger))
	if t.sampler == nil {
		t.sampler = plot.NewSampler(t.cfg)
	}
	t.chat = chat.NewResponder(t, t.logger)
	return t
}

// Parse reads an expression with the tutor's configuration.
func (t *Tutor) Parse(input string) (expr.Node, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyExpression
	}
	return t.parser.Parse(input)
}

// ============================================================
// Derive
// ============================================================

// Request asks for the order-th derivative of Expression. Zero values mean
// order 1 and the default variable. Steps controls whether the explanation
// is rendered and stored.
type Request struct {
	Expression string `json:"expression"`
	Variable   string `json:"variable,omitempty"`
	Order      int    `json:"order,omitempty"`
	Steps      bool   `json:"steps,omitempty"`
}

// Outcome is the displayable result of a Derive call.
type Outcome struct {
	Expression string             `json:"expression"`
	Variable   string             `json:"variable"`
	Order      int                `json:"order"`
	Result     string             `json:"result"`
	LaTeX      string             `json:"latex"`
	Steps      []render.Block     `json:"steps,omitempty"`
	Degraded   bool               `json:"degraded"`
	Derivation *derive.Derivation `json:"-"`
}

func (t *Tutor) normalize(variable string, order int) (string, int) {
	variable = strings.TrimSpace(variable)
	if variable == "" {
		variable = t.variable
	}
	if order == 0 {
		order = 1
	}
	return variable, order
}

// Derive parses, differentiates, renders and records one request. Parse
// failures come back as *expr.ParseError; history failures are only logged.
func (t *Tutor) Derive(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()
	root, err := t.Parse(req.Expression)
	if err != nil {
		return nil, err
	}
	variable, order := t.normalize(req.Variable, req.Order)
	d, err := t.diff.DeriveOrder(root, variable, order)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Expression: strings.TrimSpace(req.Expression),
		Variable:   variable,
		Order:      order,
		Result:     d.ResultText(),
		LaTeX:      d.ResultLaTeX(),
		Degraded:   d.Degraded,
		Derivation: d,
	}
	var steps []derive.Step
	if req.Steps {
		steps = d.Steps
		out.Steps = render.Render(steps)
	}

	if t.history != nil {
		rec := history.NewRecord(out.Expression, variable, order, out.Result, out.LaTeX, steps)
		if err := t.history.Save(ctx, rec); err != nil {
			t.logger.Warn("history save failed", "error", err)
		}
	}
	t.logger.Info("derived",
		"expression", out.Expression, "variable", variable, "order", order,
		"result", out.Result, "degraded", out.Degraded, "duration", time.Since(start))
	return out, nil
}

// DeriveText returns the simplified derivative of expression without
// rendering or recording it.
func (t *Tutor) DeriveText(_ context.Context, expression, variable string) (*derive.Derivation, error) {
	root, err := t.Parse(expression)
	if err != nil {
		return nil, err
	}
	variable, _ = t.normalize(variable, 1)
	return t.diff.DeriveOrder(root, variable, 1)
}

// Simplify returns the simplified form of expression in parser syntax.
func (t *Tutor) Simplify(expression string) (string, error) {
	root, err := t.Parse(expression)
	if err != nil {
		return "", err
	}
	n, err := t.engine.Simplify(root)
	if err != nil {
		return "", err
	}
	return expr.Format(n), nil
}

// ============================================================
// Plot
// ============================================================

// PlotRequest samples Expression and its order-th derivative. A range with
// XMin == XMax == 0 means the tutor's default range.
type PlotRequest struct {
	Expression string  `json:"expression"`
	Variable   string  `json:"variable,omitempty"`
	Order      int     `json:"order,omitempty"`
	XMin       float64 `json:"x_min,omitempty"`
	XMax       float64 `json:"x_max,omitempty"`
}

type PlotOutcome struct {
	Derivative string       `json:"derivative"`
	Series     *plot.Series `json:"series"`
	Figure     *plot.Figure `json:"figure"`
}

func (t *Tutor) Plot(_ context.Context, req PlotRequest) (*PlotOutcome, error) {
	root, err := t.Parse(req.Expression)
	if err != nil {
		return nil, err
	}
	variable, order := t.normalize(req.Variable, req.Order)
	d, err := t.diff.DeriveOrder(root, variable, order)
	if err != nil {
		return nil, err
	}
	xMin, xMax := req.XMin, req.XMax
	if xMin == 0 && xMax == 0 {
		xMin, xMax = t.xMin, t.xMax
	}
	series, err := t.sampler.Sample(root, d.Result, variable, xMin, xMax)
	if err != nil {
		return nil, err
	}
	return &PlotOutcome{
		Derivative: d.ResultText(),
		Series:     series,
		Figure:     plot.NewFigure(series, variable),
	}, nil
}

// ============================================================
// Chat and history
// ============================================================

func (t *Tutor) Chat(ctx context.Context, question string) chat.Reply {
	return t.chat.Respond(ctx, question)
}

// History lists saved derivations, most recent first. Without a store it is
// always empty.
func (t *Tutor) History(ctx context.Context) []history.Record {
	if t.history == nil {
		return nil
	}
	return t.history.List(ctx)
}

func (t *Tutor) ClearHistory(ctx context.Context) error {
	if t.history == nil {
		return nil
	}
	return t.history.Clear(ctx)
}
