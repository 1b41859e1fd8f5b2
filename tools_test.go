package derivtutor_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/derivtutor"
	"github.com/njchilds90/derivtutor/chat"
	"github.com/njchilds90/derivtutor/history"
	"github.com/njchilds90/derivtutor/plot"
)

func call(t *testing.T, tu *derivtutor.Tutor, tool string, params map[string]interface{}) derivtutor.ToolResponse {
	t.Helper()
	return tu.HandleToolCall(context.Background(), derivtutor.ToolRequest{Tool: tool, Params: params})
}

func TestHandleToolCall_Derive(t *testing.T) {
	tu, _ := newTutor(t)
	resp := call(t, tu, "derive", map[string]interface{}{"expr": "x^3", "order": 2.0, "steps": true})
	require.Empty(t, resp.Error)
	assert.Equal(t, "6 * x", resp.String)
	assert.Equal(t, `6 \cdot x`, resp.LaTeX)
	out, ok := resp.Result.(*derivtutor.Outcome)
	require.True(t, ok)
	assert.NotEmpty(t, out.Steps)

	resp = call(t, tu, "derive", map[string]interface{}{"expr": "y^2", "var": "y"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "2 * y", resp.String)
}

func TestHandleToolCall_ParamErrors(t *testing.T) {
	tu := derivtutor.New()
	tests := []struct {
		tool   string
		params map[string]interface{}
		want   string
	}{
		{"derive", map[string]interface{}{}, "missing param: expr"},
		{"derive", map[string]interface{}{"expr": 3.0}, "param expr must be a string"},
		{"derive", map[string]interface{}{"expr": "x", "order": 1.5}, "param order must be an integer"},
		{"derive", map[string]interface{}{"expr": "x", "steps": "yes"}, "param steps must be a boolean"},
		{"plot", map[string]interface{}{"expr": "x", "x_min": "a"}, "param x_min must be a number"},
		{"chat", map[string]interface{}{}, "missing param: question"},
		{"parse", map[string]interface{}{"expr": 1.0}, "must be a string or expression object"},
		{"nope", nil, "unknown tool: nope"},
	}
	for _, tt := range tests {
		resp := call(t, tu, tt.tool, tt.params)
		assert.Contains(t, resp.Error, tt.want, tt.tool)
		assert.Nil(t, resp.Result, tt.tool)
	}
}

func TestHandleToolCall_ParseError(t *testing.T) {
	tu := derivtutor.New()
	resp := call(t, tu, "derive", map[string]interface{}{"expr": "sin(x^"})
	assert.NotEmpty(t, resp.Error)
	resp = call(t, tu, "derive", map[string]interface{}{"expr": ""})
	assert.Equal(t, derivtutor.ErrEmptyExpression.Error(), resp.Error)
}

func TestHandleToolCall_Plot(t *testing.T) {
	tu := derivtutor.New()
	resp := call(t, tu, "plot", map[string]interface{}{"expr": "sin(x)", "x_min": 0.0, "x_max": 1.0})
	require.Empty(t, resp.Error)
	assert.Equal(t, "cos(x)", resp.String)
	fig, ok := resp.Result.(*plot.Figure)
	require.True(t, ok)
	require.Len(t, fig.Data, 2)
	assert.Equal(t, 0.0, fig.Data[0].X[0])
}

func TestHandleToolCall_ChatAndHistory(t *testing.T) {
	tu, _ := newTutor(t)
	resp := call(t, tu, "chat", map[string]interface{}{"question": "what is the chain rule"})
	require.Empty(t, resp.Error)
	rep, ok := resp.Result.(chat.Reply)
	require.True(t, ok)
	assert.Equal(t, "chain_rule", rep.Rule)

	call(t, tu, "derive", map[string]interface{}{"expr": "x^2"})
	resp = call(t, tu, "history", nil)
	assert.Equal(t, "1 records", resp.String)
	recs, ok := resp.Result.([]history.Record)
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, "2 * x", recs[0].ResultText)
}

func TestHandleToolCall_TreeTools(t *testing.T) {
	tu := derivtutor.New()
	parsed := call(t, tu, "parse", map[string]interface{}{"expr": "x + x"})
	require.Empty(t, parsed.Error)
	assert.Equal(t, "x + x", parsed.String)

	// Round-trip the encoded tree through JSON the way a client would.
	raw, err := json.Marshal(parsed.Result)
	require.NoError(t, err)
	var tree map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &tree))

	resp := call(t, tu, "simplify", map[string]interface{}{"expr": tree})
	require.Empty(t, resp.Error)
	assert.Equal(t, "2 * x", resp.String)

	resp = call(t, tu, "to_latex", map[string]interface{}{"expr": "x^2/2"})
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.LaTeX, `\frac`)
}

func TestToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Required []string `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(derivtutor.ToolSpec()), &spec))
	var names []string
	for _, tool := range spec.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"derive", "plot", "chat", "history", "parse", "to_latex", "simplify", "tool_spec"}, names)
	assert.Equal(t, []string{"expr"}, spec.Tools[0].InputSchema.Required)

	resp := call(t, derivtutor.New(), "tool_spec", nil)
	assert.Equal(t, derivtutor.ToolSpec(), resp.String)
}
