package expr

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// JSON Serialization
// ============================================================

// Encode converts n into a JSON-ready map with a "type" discriminator.
func Encode(n Node) map[string]interface{} {
	switch v := n.(type) {
	case *Constant:
		return map[string]interface{}{"type": "constant", "value": v.value}
	case *Variable:
		return map[string]interface{}{"type": "variable", "name": v.name}
	case *Grouping:
		return map[string]interface{}{"type": "group", "inner": Encode(v.inner)}
	case *BinaryOp:
		return map[string]interface{}{"type": "binary", "op": v.op.String(), "args": encodeAll(v.args)}
	case *Call:
		return map[string]interface{}{"type": "call", "name": v.name, "args": encodeAll(v.args)}
	}
	return map[string]interface{}{"type": "unknown"}
}

func encodeAll(ns []Node) []map[string]interface{} {
	out := make([]map[string]interface{}, len(ns))
	for i, n := range ns {
		out[i] = Encode(n)
	}
	return out
}

func ToJSON(n Node) (string, error) {
	b, err := json.Marshal(Encode(n))
	return string(b), err
}

func parseOperator(s string) (Operator, bool) {
	for _, op := range []Operator{Add, Sub, Mul, Div, Pow} {
		if op.String() == s {
			return op, true
		}
	}
	return 0, false
}

// FromJSON decodes the map form produced by Encode after a round trip
// through encoding/json.
func FromJSON(data map[string]interface{}) (Node, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	subNodes := func(field string) ([]Node, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Node, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			n, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = n
		}
		return out, nil
	}

	switch typ {
	case "constant":
		v, ok := data["value"].(float64)
		if !ok {
			return nil, fmt.Errorf("constant: 'value' must be a number")
		}
		return Const(v), nil

	case "variable":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return Var(name), nil

	case "group":
		m, ok := data["inner"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("group: 'inner' must be an object")
		}
		inner, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("group: inner: %w", err)
		}
		return Group(inner), nil

	case "binary":
		opStr, err := subString("op")
		if err != nil {
			return nil, err
		}
		op, ok := parseOperator(opStr)
		if !ok {
			return nil, fmt.Errorf("binary: unknown operator %q", opStr)
		}
		args, err := subNodes("args")
		if err != nil {
			return nil, err
		}
		if len(args) < 2 {
			return nil, fmt.Errorf("binary: needs at least 2 args, got %d", len(args))
		}
		return Binary(op, args...), nil

	case "call":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		args, err := subNodes("args")
		if err != nil {
			return nil, err
		}
		return Apply(name, args...), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
