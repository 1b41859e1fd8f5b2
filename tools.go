package derivtutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/njchilds90/derivtutor/expr"
)

// ============================================================
// Tool-call interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ErrUnknownTool is reported for a tool name ToolSpec does not list.
var ErrUnknownTool = errors.New("derivtutor: unknown tool")

// HandleToolCall runs one tool. Failures, including panics, are reported in
// ToolResponse.Error.
func (t *Tutor) HandleToolCall(ctx context.Context, req ToolRequest) (resp ToolResponse) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("tool call panicked", "tool", req.Tool, "panic", r)
			resp = ToolResponse{Error: fmt.Sprintf("internal error in %s", req.Tool)}
		}
	}()

	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	optString := func(key string) (string, error) {
		if _, ok := req.Params[key]; !ok {
			return "", nil
		}
		return getString(key)
	}
	optNumber := func(key string) (float64, bool, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, false, nil
		}
		f, ok := v.(float64)
		if !ok {
			return 0, false, fmt.Errorf("param %s must be a number", key)
		}
		return f, true, nil
	}
	optInt := func(key string) (int, error) {
		f, ok, err := optNumber(key)
		if err != nil || !ok {
			return 0, err
		}
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		return int(f), nil
	}
	optBool := func(key string) (bool, error) {
		v, ok := req.Params[key]
		if !ok {
			return false, nil
		}
		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("param %s must be a boolean", key)
		}
		return b, nil
	}
	// getExpr accepts expression text or an encoded tree.
	getExpr := func(key string) (expr.Node, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case string:
			return t.Parse(val)
		case map[string]interface{}:
			return expr.FromJSON(val)
		}
		return nil, fmt.Errorf("param %s must be a string or expression object", key)
	}
	respond := func(n expr.Node) ToolResponse {
		return ToolResponse{Result: expr.Encode(n), LaTeX: expr.LaTeX(n), String: expr.Format(n)}
	}

	switch req.Tool {
	case "derive":
		e, err := getString("expr")
		if err != nil {
			return fail(err)
		}
		v, err := optString("var")
		if err != nil {
			return fail(err)
		}
		order, err := optInt("order")
		if err != nil {
			return fail(err)
		}
		steps, err := optBool("steps")
		if err != nil {
			return fail(err)
		}
		out, err := t.Derive(ctx, Request{Expression: e, Variable: v, Order: order, Steps: steps})
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: out, LaTeX: out.LaTeX, String: out.Result}

	case "plot":
		e, err := getString("expr")
		if err != nil {
			return fail(err)
		}
		v, err := optString("var")
		if err != nil {
			return fail(err)
		}
		order, err := optInt("order")
		if err != nil {
			return fail(err)
		}
		xMin, _, err := optNumber("x_min")
		if err != nil {
			return fail(err)
		}
		xMax, _, err := optNumber("x_max")
		if err != nil {
			return fail(err)
		}
		out, err := t.Plot(ctx, PlotRequest{Expression: e, Variable: v, Order: order, XMin: xMin, XMax: xMax})
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: out.Figure, String: out.Derivative}

	case "chat":
		q, err := getString("question")
		if err != nil {
			return fail(err)
		}
		reply := t.Chat(ctx, q)
		return ToolResponse{Result: reply, String: reply.Text}

	case "history":
		recs := t.History(ctx)
		return ToolResponse{Result: recs, String: fmt.Sprintf("%d records", len(recs))}

	case "parse":
		n, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(n)

	case "to_latex":
		n, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{LaTeX: expr.LaTeX(n), String: expr.Format(n)}

	case "simplify":
		n, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		s, err := t.engine.Simplify(n)
		if err != nil {
			return fail(err)
		}
		return respond(s)

	case "tool_spec":
		return ToolResponse{String: ToolSpec()}
	}
	return fail(fmt.Errorf("%w: %s", ErrUnknownTool, req.Tool))
}

// ToolSpec returns the JSON schema of every tool HandleToolCall accepts.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("derive", "Step-by-step derivative of an expression. Optional: var (default x), order (1-10), steps", []string{"expr"},
			map[string]string{"expr": "string", "var": "string", "order": "integer", "steps": "boolean"}),
		ts("plot", "Sample f and its derivative and return a chart figure", []string{"expr"},
			map[string]string{"expr": "string", "var": "string", "order": "integer", "x_min": "number", "x_max": "number"}),
		ts("chat", "Ask the tutor a question", []string{"question"}, map[string]string{"question": "string"}),
		ts("history", "Saved derivations, most recent first", []string{}, map[string]string{}),
		ts("parse", "Parse expression text into a tree", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("to_latex", "Convert to LaTeX", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("simplify", "Simplify an expression exactly", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
