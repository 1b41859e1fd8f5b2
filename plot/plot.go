// Package plot samples a function and its derivative over an interval and
// describes the resulting chart for a client-side plotting library.
package plot

import (
	"fmt"
	"math"

	"github.com/njchilds90/derivtutor/expr"
)

const (
	DefaultPoints = 241
	DefaultXMin   = -6.0
	DefaultXMax   = 6.0
)

// Sampler evaluates expressions at evenly spaced points.
type Sampler struct {
	Points int
	cfg    expr.Config
}

func NewSampler(cfg expr.Config) *Sampler {
	return &Sampler{Points: DefaultPoints, cfg: cfg}
}

// Series holds paired samples. A nil entry in F or DF is a gap: the
// expression failed to evaluate or was not finite at that x.
type Series struct {
	X  []float64  `json:"x"`
	F  []*float64 `json:"f"`
	DF []*float64 `json:"df"`
}

// Sample evaluates f and df at s.Points values spanning [xMin, xMax]. Errors
// are reserved for a bad range and expressions that do not compile;
// evaluation failures become gaps.
func (s *Sampler) Sample(f, df expr.Node, variable string, xMin, xMax float64) (*Series, error) {
	if math.IsNaN(xMin) || math.IsNaN(xMax) || math.IsInf(xMin, 0) || math.IsInf(xMax, 0) {
		return nil, fmt.Errorf("%w: bounds must be finite", ErrInvalidRange)
	}
	if xMin >= xMax {
		return nil, fmt.Errorf("%w: %v >= %v", ErrInvalidRange, xMin, xMax)
	}
	points := s.Points
	if points < 2 {
		points = DefaultPoints
	}

	fp, err := expr.Compile(f, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("plot: function: %w", err)
	}
	dp, err := expr.Compile(df, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("plot: derivative: %w", err)
	}

	out := &Series{
		X:  make([]float64, points),
		F:  make([]*float64, points),
		DF: make([]*float64, points),
	}
	step := (xMax - xMin) / float64(points-1)
	env := map[string]float64{}
	for i := 0; i < points; i++ {
		x := round6(xMin + float64(i)*step)
		env[variable] = x
		out.X[i] = x
		out.F[i] = sample(fp, env)
		out.DF[i] = sample(dp, env)
	}
	return out, nil
}

func sample(p *expr.Program, env map[string]float64) *float64 {
	v, err := p.Eval(env)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func round6(x float64) float64 {
	r := math.Round(x*1e6) / 1e6
	if r == 0 {
		return 0 // no -0
	}
	return r
}
