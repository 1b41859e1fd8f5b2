package plot

// Figure is a chart description in the shape Plotly's react call takes:
// a list of traces and a layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	X    []float64  `json:"x"`
	Y    []*float64 `json:"y"`
	Mode string     `json:"mode"`
	Name string     `json:"name"`
	Line Line       `json:"line"`
}

type Line struct {
	Color string `json:"color"`
	Width int    `json:"width"`
	Dash  string `json:"dash,omitempty"`
}

type Layout struct {
	Margin       Margin `json:"margin"`
	XAxis        Axis   `json:"xaxis"`
	YAxis        Axis   `json:"yaxis"`
	PaperBGColor string `json:"paper_bgcolor"`
	PlotBGColor  string `json:"plot_bgcolor"`
	Height       int    `json:"height"`
}

type Margin struct {
	T int `json:"t"`
	B int `json:"b"`
	L int `json:"l"`
	R int `json:"r"`
}

type Axis struct {
	Title     string `json:"title"`
	GridColor string `json:"gridcolor"`
}

const (
	functionColor   = "#0f4b8a"
	derivativeColor = "#eab308"
	gridColor       = "#eef4ff"
	background      = "#ffffff"
)

// NewFigure draws f as a solid line and f' dotted, both over the shared x
// samples. Gaps stay null so the chart breaks the line there.
func NewFigure(s *Series, variable string) *Figure {
	return &Figure{
		Data: []Trace{
			{X: s.X, Y: s.F, Mode: "lines", Name: "f(" + variable + ")",
				Line: Line{Color: functionColor, Width: 2}},
			{X: s.X, Y: s.DF, Mode: "lines", Name: "f'(" + variable + ")",
				Line: Line{Color: derivativeColor, Width: 2, Dash: "dot"}},
		},
		Layout: Layout{
			Margin:       Margin{T: 20, B: 40, L: 50, R: 20},
			XAxis:        Axis{Title: variable, GridColor: gridColor},
			YAxis:        Axis{Title: "Value", GridColor: gridColor},
			PaperBGColor: background,
			PlotBGColor:  background,
			Height:       340,
		},
	}
}
