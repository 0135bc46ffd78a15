package mock

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newRequest(t *testing.T, method, uri, body string, header ...HeaderField) *Request {
	t.Helper()
	var b []byte
	if body != "" {
		b = []byte(body)
	}
	req, err := NewRequest(method, uri, b, header...)
	require.NoError(t, err)
	return req
}

func TestPredicate_Method(t *testing.T) {
	p := MethodEquals(http.MethodGet)
	require.NoError(t, p.Err())

	assert.True(t, p.Evaluate(newRequest(t, "GET", "https://example.com/", "")))

	f := p.Explain(newRequest(t, "POST", "https://example.com/", ""))
	assert.False(t, f.Matched)
	assert.Equal(t, ReasonMismatch, f.Reason)
	assert.Equal(t, "method", f.Attribute)
	assert.Equal(t, "GET", f.Expected)
	assert.Equal(t, "POST", f.Actual)
	assert.Equal(t, `got "POST"`, f.Message)

	// Methods are case-sensitive.
	assert.False(t, p.Evaluate(newRequest(t, "get", "https://example.com/", "")))
}

func TestPredicate_InvalidArguments(t *testing.T) {
	tests := []struct {
		name  string
		pred  Predicate
		field string
	}{
		{"method with space", MethodEquals("G ET"), "method"},
		{"empty method", MethodEquals(""), "method"},
		{"bad uri", URIEquals("http://[::1"), "uri"},
		{"bad glob", URIMatches("/a/["), "uri"},
		{"bad regex", URIRegex("("), "uri"},
		{"bad header name", HeaderEquals("X Bad", "v"), "header"},
		{"bad header value", HeaderEquals("X-Ok", "a\nb"), "header"},
		{"header all without values", HeaderAll("X-Tag"), "header"},
		{"bad json path", JSONPath("$[invalid", 1), "body"},
		{"unencodable schema", JSONSchema(make(chan int)), "body"},
		{"bad xpath", XPath("[[", "x"), "body"},
		{"empty xpath", XPath("", "x"), "body"},
		{"unencodable json", JSONEquals(make(chan int)), "body"},
		{"bad expr", Expr("method +"), "expr"},
		{"nil custom", Custom("x", nil), "custom"},
		{"nil proto", ProtoEquals(nil), "body"},
		{"empty graphql op", GraphQLOperation(""), "body"},
		{"no claims", BearerClaims(nil), "header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			require.True(t, errors.As(tt.pred.Err(), &verr), "expected a ValidationError, got %v", tt.pred.Err())
			assert.Equal(t, tt.field, verr.Field)

			req := newRequest(t, "POST", "https://example.com/", `{"a":1}`)
			f := tt.pred.Explain(req)
			assert.False(t, f.Matched)
			assert.Equal(t, ReasonInvalid, f.Reason)
			assert.Equal(t, "<invalid>", f.Expected)
			assert.False(t, tt.pred.Evaluate(req))
			assert.True(t, strings.HasSuffix(tt.pred.Describe(), ": <invalid>"), tt.pred.Describe())
		})
	}
}

func TestPredicate_ZeroValue(t *testing.T) {
	var p Predicate
	var verr *ValidationError
	require.True(t, errors.As(p.Err(), &verr), "zero predicate must report an error")

	f := p.Explain(newRequest(t, "GET", "https://example.com/", ""))
	assert.False(t, f.Matched)
	assert.Equal(t, ReasonInvalid, f.Reason)

	err := Validate([]Predicate{MethodEquals("GET"), {}})
	assert.True(t, errors.As(err, &verr), "err = %v", err)
}

func TestPredicate_URI(t *testing.T) {
	p := URIEquals("https://example.com/test")
	assert.True(t, p.Evaluate(newRequest(t, "GET", "https://example.com/test", "")))

	f := p.Explain(newRequest(t, "GET", "https://example.com/tent", ""))
	assert.False(t, f.Matched)
	assert.Equal(t, "uri", f.Attribute)
	assert.Equal(t, []Span{{Line: 0, Start: 22, Length: 1}}, f.Spans)

	assert.True(t, URIEquals("https://example.com").Evaluate(newRequest(t, "GET", "https://example.com/", "")))
	assert.True(t, URIMatches("/users/*").Evaluate(newRequest(t, "GET", "https://example.com/users/1", "")))
	assert.True(t, URIRegex(`\?page=\d+$`).Evaluate(newRequest(t, "GET", "https://example.com/users?page=2", "")))
}

func TestPredicate_URIPatternSubject(t *testing.T) {
	req := newRequest(t, "GET", "https://example.com/orders/1?x=1", "")

	f := URIMatches("/users/*").Explain(req)
	assert.False(t, f.Matched)
	assert.Equal(t, "path", f.Subject)
	assert.Equal(t, `path "/orders/1" does not match`, f.Message)

	f = URIMatches("https://example.com/users/*").Explain(req)
	assert.Equal(t, "full URI", f.Subject)
	assert.Equal(t, `full URI "https://example.com/orders/1?x=1" does not match`, f.Message)

	f = URIRegex(`/users/\d+`).Explain(req)
	assert.Equal(t, "full URI", f.Subject)
	assert.Equal(t, "uri", f.Attribute)
}

func TestPredicate_Query(t *testing.T) {
	req := newRequest(t, "GET", "https://example.com/search?q=go&tag=a&tag=b", "")

	assert.True(t, QueryEquals("q", "go").Evaluate(req))
	assert.True(t, QueryEquals("tag", "b").Evaluate(req))

	f := QueryEquals("page", "1").Explain(req)
	assert.Equal(t, ReasonMissing, f.Reason)
	assert.Equal(t, "query `page`", f.Attribute)

	f = QueryEquals("q", "rust").Explain(req)
	assert.Equal(t, ReasonMismatch, f.Reason)
	assert.Equal(t, `got "go"`, f.Message)
}

func TestPredicate_Headers(t *testing.T) {
	req := newRequest(t, "GET", "https://example.com/", "",
		HeaderField{Name: "Accept", Value: "application/json"},
		HeaderField{Name: "X-Tag", Value: "b"},
		HeaderField{Name: "x-tag", Value: "a"},
	)

	assert.True(t, HeaderEquals("accept", "application/json").Evaluate(req))
	assert.True(t, HeaderEquals("X-TAG", "a").Evaluate(req))
	assert.True(t, HeaderOnce("Accept", "application/json").Evaluate(req))
	assert.False(t, HeaderOnce("X-Tag", "a").Evaluate(req))
	assert.True(t, HeaderAll("X-Tag", "a", "b").Evaluate(req))
	assert.False(t, HeaderAll("X-Tag", "a").Evaluate(req))
	assert.True(t, HeaderPresent("x-tag").Evaluate(req))

	f := HeaderEquals("Accept", "text/html").Explain(req)
	assert.False(t, f.Matched)
	assert.Equal(t, "header `Accept`", f.Attribute)
	assert.Equal(t, "Accept: text/html", f.Expected)
	assert.Equal(t, []Span{{Line: 0, Start: 8, Length: 9}}, f.Spans)

	f = HeaderPresent("Authorization").Explain(req)
	assert.Equal(t, ReasonMissing, f.Reason)
	assert.Equal(t, "header not present", f.Message)

	f = HeaderOnce("X-Tag", "a").Explain(req)
	assert.Equal(t, `expected exactly one value, got 2: "b", "a"`, f.Message)
}

func TestPredicate_Body(t *testing.T) {
	p := BodyString("hello world")
	assert.True(t, p.Evaluate(newRequest(t, "POST", "https://example.com/", "hello world")))

	f := p.Explain(newRequest(t, "POST", "https://example.com/", "hello there"))
	assert.False(t, f.Matched)
	assert.Equal(t, "body", f.Attribute)
	assert.NotEmpty(t, f.Spans)
	assert.Equal(t, `got "hello there"`, f.Message)

	f = p.Explain(newRequest(t, "POST", "https://example.com/", ""))
	assert.Equal(t, ReasonMissing, f.Reason)

	bin := BodyEquals([]byte{0xff, 0x00})
	assert.Equal(t, "<2 bytes of binary data>", bin.Display())
}

func TestPredicate_JSON(t *testing.T) {
	p := JSONEquals(map[string]any{"name": "ada", "tags": []string{"x"}})

	assert.True(t, p.Evaluate(newRequest(t, "POST", "https://example.com/", `{"tags":["x"],"name":"ada"}`)))

	f := p.Explain(newRequest(t, "POST", "https://example.com/", `{"name":"bob","tags":["x"]}`))
	assert.False(t, f.Matched)
	assert.Equal(t, "$.name", f.Subject)
	assert.Equal(t, `at $.name: expected "ada", got "bob"`, f.Message)

	f = p.Explain(newRequest(t, "POST", "https://example.com/", `{"name":`))
	assert.Equal(t, ReasonMalformedBody, f.Reason)
	assert.True(t, strings.HasPrefix(f.Message, "body is not valid JSON"))

	partial := JSONPartial(map[string]any{"name": "ada"})
	assert.True(t, partial.Evaluate(newRequest(t, "POST", "https://example.com/", `{"name":"ada","id":1}`)))
	assert.False(t, p.Evaluate(newRequest(t, "POST", "https://example.com/", `{"name":"ada","id":1}`)))
}

func TestPredicate_JSONLargeIntegers(t *testing.T) {
	p := JSONEquals(map[string]any{"id": int64(9007199254740993)})
	assert.True(t, p.Evaluate(newRequest(t, "POST", "https://example.com/", `{"id":9007199254740993}`)))
	assert.False(t, p.Evaluate(newRequest(t, "POST", "https://example.com/", `{"id":9007199254740992}`)))

	huge := JSONEquals(json.RawMessage(`{"n":123456789012345678901234567890}`))
	assert.True(t, huge.Evaluate(newRequest(t, "POST", "https://example.com/", `{"n":123456789012345678901234567890}`)))
	assert.False(t, huge.Evaluate(newRequest(t, "POST", "https://example.com/", `{"n":123456789012345678901234567891}`)))

	path := JSONPath("$.id", int64(9007199254740993))
	assert.False(t, path.Evaluate(newRequest(t, "POST", "https://example.com/", `{"id":9007199254740992}`)))

	// Integral values compare equal however they are written.
	assert.True(t, JSONEquals(json.RawMessage(`{"n":1e2}`)).Evaluate(newRequest(t, "POST", "https://example.com/", `{"n":100.0}`)))
}

func TestPredicate_JSONPathAndSchema(t *testing.T) {
	req := newRequest(t, "POST", "https://example.com/", `{"user":{"id":7}}`)

	assert.True(t, JSONPath("$.user.id", 7).Evaluate(req))
	f := JSONPath("$.user.id", 8).Explain(req)
	assert.Equal(t, "$.user.id", f.Subject)
	assert.Equal(t, "got 7", f.Message)
	f = JSONPath("$.user.name", "ada").Explain(req)
	assert.Equal(t, ReasonMissing, f.Reason)

	assert.Equal(t, "$.user exists", JSONPath("$.user", map[string]any{"exists": true}).Display())

	// A nil expected value only checks that the path selects something.
	exists := JSONPath("$.user.id", nil)
	require.NoError(t, exists.Err())
	assert.Equal(t, "$.user.id exists", exists.Display())
	assert.True(t, exists.Evaluate(req))
	assert.True(t, exists.Evaluate(newRequest(t, "POST", "https://example.com/", `{"user":{"id":null}}`)))
	f = exists.Explain(newRequest(t, "POST", "https://example.com/", `{"user":{}}`))
	assert.False(t, f.Matched)
	assert.Equal(t, ReasonMissing, f.Reason)

	schema := JSONSchema(map[string]any{"type": "object", "required": []string{"user"}})
	assert.True(t, schema.Evaluate(req))
	assert.False(t, schema.Evaluate(newRequest(t, "POST", "https://example.com/", `{}`)))
}

func TestPredicate_XPathAndGraphQL(t *testing.T) {
	xml := newRequest(t, "POST", "https://example.com/", `<order><id>7</id></order>`)
	assert.True(t, XPath("/order/id", "7").Evaluate(xml))
	f := XPath("/order/id", "8").Explain(xml)
	assert.Equal(t, `got "7"`, f.Message)
	assert.Equal(t, "/order/id", f.Subject)

	gql := newRequest(t, "POST", "https://example.com/graphql", `{"query":"query GetUser { user { id } }"}`)
	assert.True(t, GraphQLOperation("GetUser").Evaluate(gql))
	f = GraphQLOperation("ListUsers").Explain(gql)
	assert.Equal(t, `got operation "GetUser"`, f.Message)
}

func TestPredicate_Proto(t *testing.T) {
	body, err := proto.Marshal(wrapperspb.Int64(42))
	require.NoError(t, err)
	req := newRequest(t, "POST", "https://example.com/", string(body))

	assert.True(t, ProtoEquals(wrapperspb.Int64(42)).Evaluate(req))
	f := ProtoEquals(wrapperspb.Int64(41)).Explain(req)
	assert.False(t, f.Matched)
	assert.Equal(t, "message differs", f.Message)
}

func TestPredicate_ExprAndCustom(t *testing.T) {
	req := newRequest(t, "POST", "https://example.com/orders?region=eu", `{"count":3}`,
		HeaderField{Name: "X-Tenant", Value: "acme"})

	assert.True(t, Expr(`method == "POST" && query.region == "eu" && header["x-tenant"] == "acme" && json.count == 3`).Evaluate(req))
	f := Expr(`path == "/other"`).Explain(req)
	assert.Equal(t, "evaluated to false", f.Message)
	assert.Equal(t, "expr", f.Attribute)

	hasBody := Custom("has body", func(r *Request) bool { return len(r.Body) > 0 })
	assert.True(t, hasBody.Evaluate(req))
	assert.Equal(t, "custom `has body`", hasBody.Attribute())

	check := Check("tenant", func(r *Request) error {
		if r.Header.Get("X-Tenant") != "globex" {
			return errors.New("wrong tenant")
		}
		return nil
	})
	f = check.Explain(req)
	assert.False(t, f.Matched)
	assert.Equal(t, "wrong tenant", f.Message)
}

func TestEvaluate_CollectsEveryFailure(t *testing.T) {
	preds := []Predicate{
		MethodEquals("GET"),
		URIEquals("https://example.com/a"),
		HeaderEquals("Accept", "text/plain"),
		HeaderPresent("Accept"),
	}
	req := newRequest(t, "POST", "https://example.com/b", "")

	result := Evaluate(preds, req)
	require.Len(t, result.Fragments, 4)
	assert.False(t, result.Full())
	assert.Len(t, result.Failed(), 4)
	assert.Equal(t, []string{"method", "uri", "header `Accept`"}, result.Attributes())

	assert.True(t, Evaluate(nil, req).Full())
}

func TestValidate_Conflicts(t *testing.T) {
	tests := []struct {
		name     string
		preds    []Predicate
		conflict bool
	}{
		{"two methods", []Predicate{MethodEquals("GET"), MethodEquals("POST")}, true},
		{"same method twice", []Predicate{MethodEquals("GET"), MethodEquals("GET")}, false},
		{"two uris", []Predicate{URIEquals("https://a.test/"), URIEquals("https://b.test/")}, true},
		{"uri and glob", []Predicate{URIEquals("https://a.test/x"), URIMatches("/x")}, false},
		{"body and json", []Predicate{BodyString("{}"), JSONEquals(map[string]any{})}, true},
		{"json and json path", []Predicate{JSONEquals(1), JSONPath("$", 1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.preds)
			assert.Equal(t, tt.conflict, errors.Is(err, ErrConflict), "err = %v", err)
		})
	}

	err := Validate([]Predicate{MethodEquals("GET"), MethodEquals("G ET")})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
