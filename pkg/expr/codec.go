package expr

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	typeNumber    = "number"
	typeOperation = "operation"
)

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Value float64 `json:"value"`
	}{typeNumber, n.Value})
}

func (o Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string   `json:"type"`
		Operator Operator `json:"operator"`
		Left     Node     `json:"left"`
		Right    Node     `json:"right"`
	}{typeOperation, o.Operator, o.Left, o.Right})
}

// Decoder decodes wire-encoded ASTs. Operations nested deeper than MaxDepth
// are rejected while decoding; zero means DefaultMaxDepth.
type Decoder struct {
	MaxDepth int
}

// DecodeNode decodes a wire-encoded operand with the default depth limit.
func DecodeNode(data []byte) (Node, error) {
	return Decoder{}.DecodeNode(data)
}

// DecodeOperation decodes the payload of an execute request with the default
// depth limit.
func DecodeOperation(data []byte) (*Operation, error) {
	return Decoder{}.DecodeOperation(data)
}

// DecodeNode decodes an operand. Besides the tagged object forms produced by
// MarshalJSON, a bare JSON number is accepted as a number leaf, and an object
// without a "type" tag is read as an operation.
func (d Decoder) DecodeNode(data []byte) (Node, error) {
	data = bytes.TrimSpace(data)
	if isMissing(data) {
		return nil, &NodeError{Reason: "missing operand"}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &NodeError{Reason: fmt.Sprintf("invalid operand format: %s", data)}
	}
	return d.node(v, 0)
}

// DecodeOperation decodes an operation. The "type" tag may be omitted; if
// present it must be "operation".
func (d Decoder) DecodeOperation(data []byte) (*Operation, error) {
	data = bytes.TrimSpace(data)
	var fields map[string]any
	if len(data) == 0 || data[0] != '{' || json.Unmarshal(data, &fields) != nil {
		return nil, &NodeError{Reason: "invalid operation format"}
	}
	if t, ok := tag(fields); !ok || (t != "" && t != typeOperation) {
		return nil, &NodeError{Reason: "invalid operation format"}
	}
	return d.operation(fields, 1)
}

func (d Decoder) limit() int {
	if d.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return d.MaxDepth
}

// node converts a generic JSON value into an operand. depth is the number of
// operations above v.
func (d Decoder) node(v any, depth int) (Node, error) {
	switch v := v.(type) {
	case nil:
		return nil, &NodeError{Reason: "missing operand"}
	case float64:
		return &Number{Value: v}, nil
	case map[string]any:
		t, ok := tag(v)
		if !ok {
			break
		}
		switch t {
		case typeNumber:
			raw, present := v["value"]
			if !present || raw == nil {
				return nil, &NodeError{Reason: "number node missing value"}
			}
			if f, ok := raw.(float64); ok {
				return &Number{Value: f}, nil
			}
		case typeOperation, "":
			return d.operation(v, depth+1)
		}
	}
	return nil, invalidOperand(v)
}

func (d Decoder) operation(fields map[string]any, depth int) (*Operation, error) {
	if lim := d.limit(); depth > lim {
		return nil, &NodeError{Reason: fmt.Sprintf("operation nesting exceeds maximum depth of %d", lim)}
	}
	if fields["left"] == nil || fields["right"] == nil {
		return nil, &NodeError{Reason: "missing left or right operand"}
	}
	var operator Operator
	if raw, present := fields["operator"]; present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return nil, invalidOperand(fields)
		}
		operator = Operator(s)
	}
	left, err := d.node(fields["left"], depth)
	if err != nil {
		return nil, err
	}
	right, err := d.node(fields["right"], depth)
	if err != nil {
		return nil, err
	}
	return &Operation{Operator: operator, Left: left, Right: right}, nil
}

// tag returns the "type" field of an object node. A missing or null tag is
// reported as "".
func tag(fields map[string]any) (string, bool) {
	raw, present := fields["type"]
	if !present || raw == nil {
		return "", true
	}
	s, ok := raw.(string)
	return s, ok
}

func invalidOperand(v any) error {
	data, _ := json.Marshal(v)
	return &NodeError{Reason: fmt.Sprintf("invalid operand format: %s", data)}
}

func isMissing(raw []byte) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
