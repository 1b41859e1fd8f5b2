package expr_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/derivtutor/expr"
)

func decode(t *testing.T, s string) (expr.Node, error) {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return expr.FromJSON(m)
}

func TestJSON_RoundTrip(t *testing.T) {
	for _, input := range []string{
		"x",
		"-2.5",
		"(x + 1)",
		"sin(x^2) * 3 - x / 2",
		"log(x, 2)",
	} {
		n := expr.MustParse(input)
		s, err := expr.ToJSON(n)
		require.NoError(t, err)

		back, err := decode(t, s)
		require.NoError(t, err, s)
		assert.True(t, expr.Equal(n, back), input)
	}
}

func TestJSON_Shape(t *testing.T) {
	s, err := expr.ToJSON(expr.MustParse("x + 1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"binary","op":"+","args":[{"type":"variable","name":"x"},{"type":"constant","value":1}]}`, s)
}

func TestFromJSON_Errors(t *testing.T) {
	for _, s := range []string{
		`{}`,
		`{"type":""}`,
		`{"type":"matrix"}`,
		`{"type":"constant","value":"one"}`,
		`{"type":"variable"}`,
		`{"type":"binary","op":"%","args":[]}`,
		`{"type":"binary","op":"+","args":[{"type":"variable","name":"x"}]}`,
		`{"type":"call","name":"sin","args":[42]}`,
		`{"type":"group","inner":null}`,
	} {
		_, err := decode(t, s)
		assert.Error(t, err, s)
	}
	_, err := expr.FromJSON(nil)
	assert.Error(t, err)
}
