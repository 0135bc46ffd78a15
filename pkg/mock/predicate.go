package mock

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"google.golang.org/protobuf/proto"

	"github.com/getmockd/mockconnector/internal/matching"
)

// Kind identifies a predicate variant. The set is closed.
type Kind int

const (
	KindMethod Kind = iota + 1
	KindURI
	KindURIGlob
	KindURIRegex
	KindQuery
	KindHeader
	KindHeaderOnce
	KindHeaderAll
	KindHeaderPresent
	KindBody
	KindJSON
	KindJSONPartial
	KindJSONPath
	KindJSONSchema
	KindXPath
	KindGraphQLOperation
	KindBearerClaims
	KindProto
	KindOpenAPI
	KindExpr
	KindCustom
)

var kindNames = map[Kind]string{
	KindMethod:           "method",
	KindURI:              "uri",
	KindURIGlob:          "uri glob",
	KindURIRegex:         "uri regex",
	KindQuery:            "query",
	KindHeader:           "header",
	KindHeaderOnce:       "header once",
	KindHeaderAll:        "header all",
	KindHeaderPresent:    "header present",
	KindBody:             "body",
	KindJSON:             "json",
	KindJSONPartial:      "json partial",
	KindJSONPath:         "json path",
	KindJSONSchema:       "json schema",
	KindXPath:            "xpath",
	KindGraphQLOperation: "graphql",
	KindBearerClaims:     "bearer claims",
	KindProto:            "protobuf",
	KindOpenAPI:          "openapi",
	KindExpr:             "expr",
	KindCustom:           "custom",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// WholeBody reports whether the kind constrains the entire body, in which
// case a case may carry only one such predicate.
func (k Kind) WholeBody() bool {
	switch k {
	case KindBody, KindJSON, KindJSONPartial, KindProto:
		return true
	}
	return false
}

// Predicate is one condition on a request. The zero value is invalid; use
// the constructors.
type Predicate struct {
	kind   Kind
	name   string
	text   string
	values []string
	uri    *url.URL
	body   []byte
	value  any

	pattern *matching.URIPattern
	path    *matching.JSONPath
	schema  *matching.Schema
	xpath   *matching.XPath
	message proto.Message
	api     *matching.OpenAPIOperation
	program *matching.Expression
	check   func(*Request) error

	err error
}

func invalid(kind Kind, field, format string, args ...any) Predicate {
	return Predicate{kind: kind, err: &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}}
}

// MethodEquals matches the request method exactly (methods are case-sensitive).
func MethodEquals(method string) Predicate {
	if !matching.ValidMethod(method) {
		return invalid(KindMethod, "method", "invalid method %q", method)
	}
	return Predicate{kind: KindMethod, text: method}
}

// URIEquals matches the full request URI exactly.
func URIEquals(uri string) Predicate {
	u, err := matching.ParseURI(uri)
	if err != nil {
		return invalid(KindURI, "uri", "%v", err)
	}
	return Predicate{kind: KindURI, uri: u, text: matching.URIString(u)}
}

// URIMatches matches the URI against a doublestar glob. Patterns starting
// with "/" see only the path.
func URIMatches(pattern string) Predicate {
	p, err := matching.CompileURIGlob(pattern)
	if err != nil {
		return invalid(KindURIGlob, "uri", "%v", err)
	}
	return Predicate{kind: KindURIGlob, text: pattern, pattern: p}
}

// URIRegex matches the full URI string against an RE2 expression.
func URIRegex(pattern string) Predicate {
	p, err := matching.CompileURIRegex(pattern)
	if err != nil {
		return invalid(KindURIRegex, "uri", "%v", err)
	}
	return Predicate{kind: KindURIRegex, text: pattern, pattern: p}
}

// QueryEquals requires value among the values of query parameter name.
func QueryEquals(name, value string) Predicate {
	if name == "" {
		return invalid(KindQuery, "query", "empty parameter name")
	}
	return Predicate{kind: KindQuery, name: name, text: value}
}

// HeaderEquals requires value among the values of header name.
func HeaderEquals(name, value string) Predicate {
	return header(KindHeader, name, value)
}

// HeaderOnce requires header name to appear exactly once, with value.
func HeaderOnce(name, value string) Predicate {
	return header(KindHeaderOnce, name, value)
}

// HeaderAll requires the values of header name to be exactly values,
// in any order.
func HeaderAll(name string, values ...string) Predicate {
	if len(values) == 0 {
		return invalid(KindHeaderAll, "header", "no values for header %q", name)
	}
	p := header(KindHeaderAll, name, values...)
	p.text = strings.Join(values, ", ")
	return p
}

// HeaderPresent requires header name with any value.
func HeaderPresent(name string) Predicate {
	if !matching.ValidHeaderName(name) {
		return invalid(KindHeaderPresent, "header", "invalid header name %q", name)
	}
	return Predicate{kind: KindHeaderPresent, name: name}
}

func header(kind Kind, name string, values ...string) Predicate {
	if !matching.ValidHeaderName(name) {
		return invalid(kind, "header", "invalid header name %q", name)
	}
	for _, v := range values {
		if !matching.ValidHeaderValue(v) {
			return invalid(kind, "header", "invalid value %q for header %q", v, name)
		}
	}
	return Predicate{kind: kind, name: name, text: values[0], values: values}
}

// BodyEquals matches the body bytes exactly.
func BodyEquals(body []byte) Predicate {
	return Predicate{kind: KindBody, body: append([]byte{}, body...)}
}

// BodyString matches the body text exactly.
func BodyString(body string) Predicate {
	return BodyEquals([]byte(body))
}

// JSONEquals parses the body as JSON and compares it structurally with v.
// Raw JSON may be given as []byte or json.RawMessage.
func JSONEquals(v any) Predicate {
	return jsonPredicate(KindJSON, v)
}

// JSONPartial requires the body JSON to contain v: extra object keys are
// ignored and each array element of v must appear in the actual array.
func JSONPartial(v any) Predicate {
	return jsonPredicate(KindJSONPartial, v)
}

func jsonPredicate(kind Kind, v any) Predicate {
	c, err := matching.Canonical(v)
	if err != nil {
		return invalid(kind, "body", "%v", err)
	}
	return Predicate{kind: kind, value: c}
}

// JSONPath requires the JSONPath expression to select expected. A nil
// expected value or {"exists": bool} checks presence instead.
func JSONPath(path string, expected any) Predicate {
	p, err := matching.CompileJSONPath(path, expected)
	if err != nil {
		return invalid(KindJSONPath, "body", "%v", err)
	}
	return Predicate{kind: KindJSONPath, path: p}
}

// JSONSchema validates the body JSON against a schema document.
func JSONSchema(schema any) Predicate {
	s, err := matching.CompileSchema(schema)
	if err != nil {
		return invalid(KindJSONSchema, "body", "%v", err)
	}
	return Predicate{kind: KindJSONSchema, schema: s}
}

// XPath requires the XML body to hold expected at xpath.
func XPath(xpath, expected string) Predicate {
	x, err := matching.CompileXPath(xpath)
	if err != nil {
		return invalid(KindXPath, "body", "%v", err)
	}
	return Predicate{kind: KindXPath, xpath: x, text: expected}
}

// GraphQLOperation requires a GraphQL request selecting operation name.
func GraphQLOperation(name string) Predicate {
	if name == "" {
		return invalid(KindGraphQLOperation, "body", "empty GraphQL operation name")
	}
	return Predicate{kind: KindGraphQLOperation, text: name}
}

// BearerClaims requires an Authorization bearer JWT whose claims contain
// claims. The token signature is not verified.
func BearerClaims(claims map[string]any) Predicate {
	if len(claims) == 0 {
		return invalid(KindBearerClaims, "header", "no claims given")
	}
	c, err := matching.Canonical(claims)
	if err != nil {
		return invalid(KindBearerClaims, "header", "%v", err)
	}
	return Predicate{kind: KindBearerClaims, value: c}
}

// ProtoEquals decodes the body as a message of msg's type and compares.
func ProtoEquals(msg proto.Message) Predicate {
	if msg == nil {
		return invalid(KindProto, "body", "nil protobuf message")
	}
	return Predicate{kind: KindProto, message: proto.Clone(msg)}
}

// OpenAPIOperation requires the request to route to operationID in doc and
// satisfy its parameter and body definitions.
func OpenAPIOperation(doc *openapi3.T, operationID string) Predicate {
	op, err := matching.NewOpenAPIOperation(doc, operationID)
	if err != nil {
		return invalid(KindOpenAPI, "openapi", "%v", err)
	}
	return Predicate{kind: KindOpenAPI, api: op, text: operationID}
}

// Expr evaluates a boolean expr-lang expression. The environment exposes
// method, uri, scheme, host, path, query, header (lower-cased names), body
// and json.
func Expr(src string) Predicate {
	e, err := matching.CompileExpression(src)
	if err != nil {
		return invalid(KindExpr, "expr", "%v", err)
	}
	return Predicate{kind: KindExpr, program: e, text: src}
}

// Custom matches when fn returns true. fn must be pure: it may be called
// for requests that end up matching a different case.
func Custom(label string, fn func(*Request) bool) Predicate {
	if fn == nil {
		return invalid(KindCustom, "custom", "nil predicate function")
	}
	return Check(label, func(r *Request) error {
		if fn(r) {
			return nil
		}
		return errFalse
	})
}

// Check matches when fn returns nil; the error text explains a mismatch.
func Check(label string, fn func(*Request) error) Predicate {
	if fn == nil {
		return invalid(KindCustom, "custom", "nil predicate function")
	}
	return Predicate{kind: KindCustom, name: label, check: fn}
}

// Kind returns the variant.
func (p Predicate) Kind() Kind { return p.kind }

// Err returns the construction error, if any. The zero Predicate is
// invalid.
func (p Predicate) Err() error {
	if p.err == nil && p.kind == 0 {
		return &ValidationError{Field: "predicate", Message: "zero Predicate; use a constructor"}
	}
	return p.err
}

// Key is the label the predicate is listed under in reports.
func (p Predicate) Key() string { return p.kind.String() }

// Attribute names the request attribute the predicate constrains.
func (p Predicate) Attribute() string {
	switch p.kind {
	case KindMethod:
		return "method"
	case KindURI, KindURIGlob, KindURIRegex:
		return "uri"
	case KindQuery:
		return "query `" + p.name + "`"
	case KindHeader, KindHeaderOnce, KindHeaderAll, KindHeaderPresent:
		return "header `" + p.name + "`"
	case KindBearerClaims:
		return "header `Authorization`"
	case KindOpenAPI:
		return "openapi `" + p.text + "`"
	case KindExpr:
		return "expr"
	case KindCustom:
		if p.name != "" {
			return "custom `" + p.name + "`"
		}
		return "custom"
	default:
		return "body"
	}
}

// Display renders the expected value. Multi-line for body documents.
// Invalid predicates render as "<invalid>".
func (p Predicate) Display() string {
	if p.Err() != nil {
		return "<invalid>"
	}
	switch p.kind {
	case KindMethod, KindURI, KindURIGlob, KindURIRegex, KindGraphQLOperation, KindOpenAPI, KindExpr:
		return p.text
	case KindQuery, KindHeader, KindHeaderOnce, KindHeaderAll:
		return p.name + ": " + p.text
	case KindHeaderPresent:
		return p.name
	case KindBody:
		return matching.DisplayBody(p.body)
	case KindJSON, KindJSONPartial:
		return matching.FormatJSON(p.value)
	case KindJSONPath:
		return jsonPathDisplay(p.path)
	case KindJSONSchema:
		return matching.FormatJSON(p.schema.Source())
	case KindXPath:
		return p.xpath.String() + " == " + p.text
	case KindBearerClaims:
		return matching.CompactJSON(p.value)
	case KindProto:
		return matching.FormatProto(p.message)
	case KindCustom:
		if p.name != "" {
			return p.name
		}
		return "<func>"
	}
	return ""
}

// Describe renders the predicate as "key: expected".
func (p Predicate) Describe() string {
	return p.Key() + ": " + p.Display()
}

func (p Predicate) String() string {
	return strings.Join(strings.Fields(p.Describe()), " ")
}

// ConflictsWith reports whether no request can satisfy both p and q.
func (p Predicate) ConflictsWith(q Predicate) bool {
	switch {
	case p.kind == KindMethod && q.kind == KindMethod:
		return p.text != q.text
	case p.kind == KindURI && q.kind == KindURI:
		return p.text != q.text
	case p.kind.WholeBody() && q.kind.WholeBody():
		return true
	}
	return false
}

// Evaluate reports whether req satisfies p.
func (p Predicate) Evaluate(req *Request) bool {
	return p.Explain(req).Matched
}

func jsonPathDisplay(p *matching.JSONPath) string {
	if m, ok := p.Expected().(map[string]any); ok && len(m) == 1 {
		if exists, ok := m["exists"].(bool); ok {
			if exists {
				return p.String() + " exists"
			}
			return p.String() + " does not exist"
		}
	}
	return p.String() + " == " + matching.CompactJSON(p.Expected())
}
