package testing

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/getmockd/mockconnector/internal/matching"
)

// RequestLog is a request the connector received, for assertions.
type RequestLog struct {
	// Method is the HTTP method (GET, POST, etc.)
	Method string
	// URI is the full request URI
	URI string
	// Path is the request URL path
	Path string
	// Headers are the request headers (first value per name)
	Headers map[string]string
	// Body is the request body content
	Body string
	// QueryString is the raw query string
	QueryString string
	// MatchedCase is the index of the case that accepted the request, or -1
	MatchedCase int
	// MatchedLabel is the label of that case
	MatchedLabel string
}

// Matched reports whether a case accepted the request.
func (r *RequestLog) Matched() bool {
	return r.MatchedCase >= 0
}

// AssertJSONBody asserts that the request body matches the expected JSON.
// The expected value can be a string, []byte, or any value that encodes to
// JSON.
func (r *RequestLog) AssertJSONBody(t testing.TB, expected any) {
	t.Helper()

	if s, ok := expected.(string); ok {
		expected = []byte(s)
	}
	expectedJSON, err := matching.Canonical(expected)
	if err != nil {
		t.Errorf("failed to parse expected JSON: %v", err)
		return
	}
	actualJSON, err := matching.ParseJSON([]byte(r.Body))
	if err != nil {
		t.Errorf("request body is not valid JSON: %v\nbody: %s", err, r.Body)
		return
	}

	if diff := cmp.Diff(expectedJSON, actualJSON); diff != "" {
		t.Errorf("request body does not match expected JSON (-expected +actual):\n%s", diff)
	}
}

// AssertBody asserts that the request body exactly matches the expected string.
func (r *RequestLog) AssertBody(t testing.TB, expected string) {
	t.Helper()

	if r.Body != expected {
		t.Errorf("request body does not match\nexpected: %q\nactual: %q", expected, r.Body)
	}
}

// AssertBodyContains asserts that the request body contains the expected substring.
func (r *RequestLog) AssertBodyContains(t testing.TB, substr string) {
	t.Helper()

	if !strings.Contains(r.Body, substr) {
		t.Errorf("request body does not contain %q\nbody: %s", substr, r.Body)
	}
}

func (r *RequestLog) header(key string) (string, bool) {
	if v, ok := r.Headers[key]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if matching.SameName(k, key) {
			return v, true
		}
	}
	return "", false
}

// AssertHeader asserts that the request had the header with the expected
// value. Names compare case-insensitively.
func (r *RequestLog) AssertHeader(t testing.TB, key, expected string) {
	t.Helper()

	actual, ok := r.header(key)
	if !ok {
		t.Errorf("request does not have header %q", key)
		return
	}
	if actual != expected {
		t.Errorf("header %q value mismatch\nexpected: %q\nactual: %q", key, expected, actual)
	}
}

// AssertHeaderExists asserts that the request had the header (any value).
func (r *RequestLog) AssertHeaderExists(t testing.TB, key string) {
	t.Helper()

	if _, ok := r.header(key); !ok {
		t.Errorf("request does not have header %q", key)
	}
}

// AssertQueryParam asserts that the request had the query parameter with
// the expected first value.
func (r *RequestLog) AssertQueryParam(t testing.TB, key, expected string) {
	t.Helper()

	params, err := url.ParseQuery(r.QueryString)
	if err != nil {
		t.Errorf("request has a malformed query string %q: %v", r.QueryString, err)
		return
	}
	if !params.Has(key) {
		t.Errorf("request does not have query parameter %q", key)
		return
	}
	if actual := params.Get(key); actual != expected {
		t.Errorf("query parameter %q value mismatch\nexpected: %q\nactual: %q", key, expected, actual)
	}
}

// AssertMethod asserts that the request used the expected HTTP method.
func (r *RequestLog) AssertMethod(t testing.TB, expected string) {
	t.Helper()

	if r.Method != expected {
		t.Errorf("request method mismatch\nexpected: %q\nactual: %q", expected, r.Method)
	}
}

// AssertPath asserts that the request path matches.
func (r *RequestLog) AssertPath(t testing.TB, expected string) {
	t.Helper()

	if r.Path != expected {
		t.Errorf("request path mismatch\nexpected: %q\nactual: %q", expected, r.Path)
	}
}

// JSONField extracts a field from the request body JSON using dot
// notation. Returns nil if the body is not valid JSON or the field doesn't
// exist.
func (r *RequestLog) JSONField(field string) any {
	current, err := matching.ParseJSON([]byte(r.Body))
	if err != nil {
		return nil
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = obj[part]
	}
	return current
}

// AssertJSONField asserts that a JSON field in the request body has the
// expected value. Numbers compare by value regardless of Go type.
func (r *RequestLog) AssertJSONField(t testing.TB, field string, expected any) {
	t.Helper()

	actual := r.JSONField(field)
	if actual == nil {
		t.Errorf("JSON field %q not found in request body: %s", field, r.Body)
		return
	}
	want, err := matching.Canonical(expected)
	if err != nil {
		t.Errorf("failed to encode expected value: %v", err)
		return
	}
	if !matching.EqualJSON(want, actual) {
		t.Errorf("JSON field %q mismatch\nexpected: %v\nactual: %v", field, want, actual)
	}
}
