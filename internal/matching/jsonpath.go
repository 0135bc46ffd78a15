package matching

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"
)

// JSONPath is a compiled JSONPath condition: the expression plus the value
// it must select. A nil expected value, {"exists": true} or
// {"exists": false} checks presence instead of equality.
type JSONPath struct {
	raw      string
	expr     jp.Expr
	expected any
}

// CompileJSONPath parses path and canonicalizes expected.
func CompileJSONPath(path string, expected any) (*JSONPath, error) {
	if path == "" {
		return nil, fmt.Errorf("empty JSONPath")
	}
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", path, err)
	}
	if expected == nil {
		return &JSONPath{raw: path, expr: expr, expected: map[string]any{"exists": true}}, nil
	}
	value, err := Canonical(expected)
	if err != nil {
		return nil, err
	}
	return &JSONPath{raw: path, expr: expr, expected: value}, nil
}

// String returns the path source.
func (p *JSONPath) String() string {
	return p.raw
}

// Expected returns the canonical expected value.
func (p *JSONPath) Expected() any {
	return p.expected
}

// Match evaluates the condition against a decoded document. It returns the
// first selected value, or nil when nothing was selected.
func (p *JSONPath) Match(data any) (bool, any) {
	results := p.expr.Get(data)

	if isExistenceCheck(p.expected) {
		exists := getExistsValue(p.expected)
		if len(results) == 0 {
			return !exists, nil
		}
		return exists, results[0]
	}
	if len(results) == 0 {
		return false, nil
	}

	// Wildcard paths select several values; any of them may satisfy.
	for _, result := range results {
		if valuesEqual(result, p.expected) {
			return true, result
		}
	}
	return false, results[0]
}

// isExistenceCheck determines if the expected value is an existence check object.
func isExistenceCheck(expected any) bool {
	m, ok := expected.(map[string]any)
	if !ok {
		return false
	}
	_, hasExists := m["exists"]
	return hasExists && len(m) == 1
}

func getExistsValue(expected any) bool {
	m, ok := expected.(map[string]any)
	if !ok {
		return false
	}
	b, ok := m["exists"].(bool)
	return ok && b
}

// valuesEqual compares two values for equality. Integers compare exactly;
// a float on either side compares numerically.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if reflect.DeepEqual(actual, expected) {
		return true
	}
	if isInteger(actual) && isInteger(expected) {
		return false
	}
	actualNum, actualIsNum := toFloat64(actual)
	expectedNum, expectedIsNum := toFloat64(expected)
	if actualIsNum && expectedIsNum {
		return actualNum == expectedNum
	}
	return false
}

func isInteger(v any) bool {
	switch v.(type) {
	case int64, json.Number:
		return true
	}
	return false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
