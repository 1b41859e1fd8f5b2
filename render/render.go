// Package render turns derivation steps into display structures: numbered
// blocks for JSON clients, step-block HTML for pages and plain text for
// terminals. Steps are never reordered or merged.
package render

import (
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/njchilds90/derivtutor/derive"
	"github.com/njchilds90/derivtutor/expr"
)

// Block is one numbered step with HTML-escaped text. Formula holds the
// escaped LaTeX inside \( \) delimiters, or "" when the step has none.
type Block struct {
	Number  int    `json:"number"`
	Text    string `json:"text"`
	Formula string `json:"formula,omitempty"`
}

// Render numbers steps from 1 in order.
func Render(steps []derive.Step) []Block {
	blocks := make([]Block, len(steps))
	for i, s := range steps {
		blocks[i] = Block{Number: i + 1, Text: html.EscapeString(s.Explanation)}
		if s.Formula != "" {
			blocks[i].Formula = Inline(html.EscapeString(s.Formula))
		}
	}
	return blocks
}

// Inline wraps LaTeX in inline math delimiters.
func Inline(tex string) string { return `\(` + tex + `\)` }

var stepsTemplate = template.Must(template.New("steps").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(
	`{{if not .}}<div class="muted">No steps.</div>{{else}}{{range $i, $s := .}}` +
		`<div class="step-block"><strong>Step {{inc $i}}:</strong> {{$s.Explanation}}` +
		`{{if $s.Formula}}<div class="step-latex" data-tex="{{$s.Formula}}">\({{$s.Formula}}\)</div>{{end}}` +
		`</div>{{end}}{{end}}`,
))

// WriteHTML writes the step-block markup for steps to w.
func WriteHTML(w io.Writer, steps []derive.Step) error {
	if err := stepsTemplate.Execute(w, steps); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// PlainText renders steps as numbered lines, formulas indented below.
func PlainText(steps []derive.Step) string {
	if len(steps) == 0 {
		return "No steps.\n"
	}
	var b strings.Builder
	for i, s := range steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Explanation)
		if s.Formula != "" {
			fmt.Fprintf(&b, "   %s\n", s.Formula)
		}
	}
	return b.String()
}

// LaTeXOrText parses s with p and returns its LaTeX. Text that does not
// parse comes back as an escaped \text{} block.
func LaTeXOrText(p *expr.Parser, s string) string {
	n, err := p.Parse(s)
	if err != nil {
		return expr.TextLaTeX(s)
	}
	return expr.LaTeX(n)
}
