package matching

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// JSONDifference locates the first place where an actual JSON document
// disagrees with the expected one.
type JSONDifference struct {
	Path     string
	Expected any
	Actual   any
	Note     string
}

func (d *JSONDifference) String() string {
	if d.Note != "" {
		return fmt.Sprintf("at %s: %s", d.Path, d.Note)
	}
	return fmt.Sprintf("at %s: expected %s, got %s", d.Path, CompactJSON(d.Expected), CompactJSON(d.Actual))
}

// Canonical converts a Go value into the generic JSON model (maps, slices,
// numbers, string, bool, nil). Raw JSON given as []byte or json.RawMessage
// is parsed rather than encoded as a string.
func Canonical(v any) (any, error) {
	var raw []byte
	switch t := v.(type) {
	case json.RawMessage:
		raw = t
	case []byte:
		raw = t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding JSON: %w", err)
		}
		raw = b
	}
	return ParseJSON(raw)
}

// ParseJSON decodes a single JSON document into the generic model.
// Integral numbers become int64 (json.Number beyond the int64 range) and
// other numbers float64, so integers compare exactly at any size.
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid JSON: trailing data after document")
	}
	return normalizeNumbers(out), nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalizeNumbers(item)
		}
		return t
	case json.Number:
		return normalizeNumber(t)
	default:
		return v
	}
}

// maxExactExponent bounds the exponents expanded exactly; larger ones are
// compared as float64.
const maxExactExponent = 400

func normalizeNumber(n json.Number) any {
	s := n.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if exactExponent(s) {
		if r, ok := new(big.Rat).SetString(s); ok && r.IsInt() {
			if r.Num().IsInt64() {
				return r.Num().Int64()
			}
			return json.Number(r.Num().String())
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return n
	}
	return f
}

func exactExponent(s string) bool {
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		return true
	}
	exp, err := strconv.Atoi(strings.TrimPrefix(s[i+1:], "+"))
	return err == nil && exp <= maxExactExponent && exp >= -maxExactExponent
}

// EqualJSON reports whether two canonical documents are identical.
func EqualJSON(expected, actual any) bool {
	return cmp.Equal(expected, actual)
}

// ContainsJSON reports whether actual contains expected: objects may carry
// extra keys and each expected array element must appear somewhere in the
// corresponding actual array.
func ContainsJSON(expected, actual any) bool {
	return FirstJSONDifference(expected, actual, true) == nil
}

// FirstJSONDifference walks expected in sorted key order and returns the
// first disagreement with actual, or nil. With partial set, extra object
// keys are ignored and arrays use containment.
func FirstJSONDifference(expected, actual any, partial bool) *JSONDifference {
	if !partial && EqualJSON(expected, actual) {
		return nil
	}
	return jsonDiff("$", expected, actual, partial)
}

func jsonDiff(path string, expected, actual any, partial bool) *JSONDifference {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return &JSONDifference{Path: path, Expected: expected, Actual: actual, Note: "expected an object, got " + jsonKind(actual)}
		}
		for _, key := range sortedKeys(exp) {
			child := appendKey(path, key)
			v, found := act[key]
			if !found {
				return &JSONDifference{Path: child, Expected: exp[key], Note: "missing key"}
			}
			if d := jsonDiff(child, exp[key], v, partial); d != nil {
				return d
			}
		}
		if !partial {
			for _, key := range sortedKeys(act) {
				if _, found := exp[key]; !found {
					return &JSONDifference{Path: appendKey(path, key), Actual: act[key], Note: "unexpected key"}
				}
			}
		}
		return nil
	case []any:
		act, ok := actual.([]any)
		if !ok {
			return &JSONDifference{Path: path, Expected: expected, Actual: actual, Note: "expected an array, got " + jsonKind(actual)}
		}
		if partial {
			for i, item := range exp {
				if !slices.ContainsFunc(act, func(a any) bool { return jsonDiff(path, item, a, true) == nil }) {
					return &JSONDifference{Path: path + "[" + strconv.Itoa(i) + "]", Expected: item, Note: "no matching element"}
				}
			}
			return nil
		}
		if len(exp) != len(act) {
			return &JSONDifference{Path: path, Expected: expected, Actual: actual,
				Note: fmt.Sprintf("expected %d elements, got %d", len(exp), len(act))}
		}
		for i := range exp {
			if d := jsonDiff(path+"["+strconv.Itoa(i)+"]", exp[i], act[i], partial); d != nil {
				return d
			}
		}
		return nil
	default:
		if !cmp.Equal(expected, actual) {
			return &JSONDifference{Path: path, Expected: expected, Actual: actual}
		}
		return nil
	}
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func appendKey(path, key string) string {
	if identifier.MatchString(key) {
		return path + "." + key
	}
	return path + "[" + strconv.Quote(key) + "]"
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case int64, float64, json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// FormatJSON renders a canonical document indented by two spaces with
// sorted object keys.
func FormatJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// CompactJSON renders a canonical document on one line.
func CompactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
