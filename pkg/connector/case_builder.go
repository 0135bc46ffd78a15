package connector

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"google.golang.org/protobuf/proto"

	"github.com/getmockd/mockconnector/pkg/mock"
)

// CaseBuilder configures one case using a fluent API. Argument errors are
// recorded rather than returned; the first one is reported by Register and
// Err.
type CaseBuilder struct {
	builder    *Builder
	seq        int
	label      string
	predicates []mock.Predicate
	count      mock.CountSpec
	responder  mock.Responder
	registered bool
	late       bool
	handle     CaseHandle
	err        error
}

// setError records the first error encountered during building.
// Subsequent errors are ignored (first error wins pattern).
func (cb *CaseBuilder) setError(err error) {
	if cb.err == nil {
		cb.err = err
	}
}

// sealed reports whether the case was already registered. The first change
// attempted after Register is recorded as ErrAlreadyRegistered on the case
// and on the builder, so Build reports it.
func (cb *CaseBuilder) sealed() bool {
	b := cb.builder
	b.mu.Lock()
	defer b.mu.Unlock()

	if !cb.registered {
		return false
	}
	if !cb.late {
		cb.late = true
		err := fmt.Errorf("%s: modified after Register: %w", cb.name(), ErrAlreadyRegistered)
		cb.err = err
		b.errs = append(b.errs, err)
	}
	return true
}

// Err returns the first error recorded on the case.
func (cb *CaseBuilder) Err() error {
	return cb.err
}

func (cb *CaseBuilder) name() string {
	if cb.label != "" {
		return fmt.Sprintf("expectation %d (%s)", cb.seq, cb.label)
	}
	return fmt.Sprintf("expectation %d", cb.seq)
}

// With adds predicates. Invalid predicates and predicates that conflict with
// ones already on the case are recorded as errors.
func (cb *CaseBuilder) With(predicates ...mock.Predicate) *CaseBuilder {
	if cb.sealed() {
		return cb
	}
	cb.predicates = append(cb.predicates, predicates...)
	cb.setError(mock.Validate(cb.predicates))
	return cb
}

// WithMethod matches the request method exactly.
func (cb *CaseBuilder) WithMethod(method string) *CaseBuilder {
	return cb.With(mock.MethodEquals(method))
}

// WithURI matches the full request URI exactly.
func (cb *CaseBuilder) WithURI(uri string) *CaseBuilder {
	return cb.With(mock.URIEquals(uri))
}

// WithURIGlob matches the URI against a doublestar glob. Patterns starting
// with "/" match the path only.
func (cb *CaseBuilder) WithURIGlob(pattern string) *CaseBuilder {
	return cb.With(mock.URIMatches(pattern))
}

// WithURIRegex matches the URI against an RE2 expression.
func (cb *CaseBuilder) WithURIRegex(pattern string) *CaseBuilder {
	return cb.With(mock.URIRegex(pattern))
}

// WithQuery matches one query parameter.
func (cb *CaseBuilder) WithQuery(name, value string) *CaseBuilder {
	return cb.With(mock.QueryEquals(name, value))
}

// WithHeader requires at least one value of the header to equal value.
func (cb *CaseBuilder) WithHeader(name, value string) *CaseBuilder {
	return cb.With(mock.HeaderEquals(name, value))
}

// WithHeaderOnce requires the header to appear exactly once, with value.
func (cb *CaseBuilder) WithHeaderOnce(name, value string) *CaseBuilder {
	return cb.With(mock.HeaderOnce(name, value))
}

// WithHeaderAll requires the header's values to be exactly values, in any
// order.
func (cb *CaseBuilder) WithHeaderAll(name string, values ...string) *CaseBuilder {
	return cb.With(mock.HeaderAll(name, values...))
}

// WithHeaderPresent requires the header to be present.
func (cb *CaseBuilder) WithHeaderPresent(name string) *CaseBuilder {
	return cb.With(mock.HeaderPresent(name))
}

// WithBody matches the body byte for byte.
func (cb *CaseBuilder) WithBody(body string) *CaseBuilder {
	return cb.With(mock.BodyString(body))
}

// WithBodyBytes matches the body byte for byte.
func (cb *CaseBuilder) WithBodyBytes(body []byte) *CaseBuilder {
	return cb.With(mock.BodyEquals(body))
}

// WithJSON matches a JSON body structurally. v may be raw JSON ([]byte or
// json.RawMessage) or any value that marshals to JSON.
func (cb *CaseBuilder) WithJSON(v any) *CaseBuilder {
	return cb.With(mock.JSONEquals(v))
}

// WithJSONPartial matches a JSON body containing at least v.
func (cb *CaseBuilder) WithJSONPartial(v any) *CaseBuilder {
	return cb.With(mock.JSONPartial(v))
}

// WithJSONPath matches the value at a JSONPath in a JSON body. A nil
// expected value only checks that the path exists.
func (cb *CaseBuilder) WithJSONPath(path string, expected any) *CaseBuilder {
	return cb.With(mock.JSONPath(path, expected))
}

// WithJSONSchema validates a JSON body against a JSON Schema.
func (cb *CaseBuilder) WithJSONSchema(schema any) *CaseBuilder {
	return cb.With(mock.JSONSchema(schema))
}

// WithXPath matches the text (or attribute) selected by an XPath in an XML
// body.
func (cb *CaseBuilder) WithXPath(xpath, expected string) *CaseBuilder {
	return cb.With(mock.XPath(xpath, expected))
}

// WithGraphQLOperation matches the operation a GraphQL request executes.
func (cb *CaseBuilder) WithGraphQLOperation(name string) *CaseBuilder {
	return cb.With(mock.GraphQLOperation(name))
}

// WithBearerClaims matches claims of the bearer JWT in the Authorization
// header. Signatures are not verified.
func (cb *CaseBuilder) WithBearerClaims(claims map[string]any) *CaseBuilder {
	return cb.With(mock.BearerClaims(claims))
}

// WithProtoBody matches a binary protobuf body against msg.
func (cb *CaseBuilder) WithProtoBody(msg proto.Message) *CaseBuilder {
	return cb.With(mock.ProtoEquals(msg))
}

// WithOpenAPIOperation requires the request to route to operationID in doc
// and to be valid for it.
func (cb *CaseBuilder) WithOpenAPIOperation(doc *openapi3.T, operationID string) *CaseBuilder {
	return cb.With(mock.OpenAPIOperation(doc, operationID))
}

// WithExpr matches requests for which the expression evaluates to true.
func (cb *CaseBuilder) WithExpr(expression string) *CaseBuilder {
	return cb.With(mock.Expr(expression))
}

// WithFunc matches requests for which fn returns true. fn must not modify
// the request.
func (cb *CaseBuilder) WithFunc(label string, fn func(*mock.Request) bool) *CaseBuilder {
	return cb.With(mock.Custom(label, fn))
}

// WithCheck matches requests for which fn returns nil; the error text is
// shown in reports.
func (cb *CaseBuilder) WithCheck(label string, fn func(*mock.Request) error) *CaseBuilder {
	return cb.With(mock.Check(label, fn))
}

// Named sets the label shown in reports.
func (cb *CaseBuilder) Named(label string) *CaseBuilder {
	if cb.sealed() {
		return cb
	}
	cb.label = label
	return cb
}

// Times requires exactly n calls. The case refuses requests once it has
// been called n times.
func (cb *CaseBuilder) Times(n int) *CaseBuilder {
	if cb.sealed() {
		return cb
	}
	if n < 0 {
		cb.setError(&mock.ValidationError{Field: "count", Message: fmt.Sprintf("negative count %d", n)})
		return cb
	}
	cb.count = mock.Times(n)
	return cb
}

// Once is a convenience method for Times(1).
func (cb *CaseBuilder) Once() *CaseBuilder {
	return cb.Times(1)
}

// Twice is a convenience method for Times(2).
func (cb *CaseBuilder) Twice() *CaseBuilder {
	return cb.Times(2)
}

// AtLeast requires n or more calls.
func (cb *CaseBuilder) AtLeast(n int) *CaseBuilder {
	if cb.sealed() {
		return cb
	}
	if n < 0 {
		cb.setError(&mock.ValidationError{Field: "count", Message: fmt.Sprintf("negative count %d", n)})
		return cb
	}
	cb.count = mock.AtLeast(n)
	return cb
}

// AnyTimes removes the call-count constraint. This is the default.
func (cb *CaseBuilder) AnyTimes() *CaseBuilder {
	if cb.sealed() {
		return cb
	}
	cb.count = mock.AnyTimes()
	return cb
}

// Returning sets the responder. A *mock.Response is returned as a copy on
// every call.
func (cb *CaseBuilder) Returning(r mock.Responder) *CaseBuilder {
	if cb.sealed() {
		return cb
	}
	if resp, ok := r.(*mock.Response); r == nil || (ok && resp == nil) {
		cb.setError(fmt.Errorf("Returning: %w", ErrNoResponse))
		return cb
	} else if ok {
		cb.checkStatus(resp.StatusCode())
	}
	cb.responder = r
	return cb
}

// ReturningFunc generates the response from the matched request. fn runs
// outside the connector lock and may be called concurrently.
func (cb *CaseBuilder) ReturningFunc(fn func(*mock.Request) (*mock.Response, error)) *CaseBuilder {
	if cb.sealed() {
		return cb
	}
	if fn == nil {
		cb.setError(fmt.Errorf("ReturningFunc: %w", ErrNoResponse))
		return cb
	}
	cb.responder = mock.ResponderFunc(fn)
	return cb
}

// ReturningText responds 200 with a plain text body.
func (cb *CaseBuilder) ReturningText(body string) *CaseBuilder {
	return cb.Returning(mock.Text(body))
}

// ReturningStatus responds with an empty body.
func (cb *CaseBuilder) ReturningStatus(code int) *CaseBuilder {
	return cb.Returning(mock.Status(code))
}

// ReturningStatusText responds with a status and plain text body.
func (cb *CaseBuilder) ReturningStatusText(code int, body string) *CaseBuilder {
	return cb.Returning(mock.StatusText(code, body))
}

// ReturningJSON responds 200 with v encoded as JSON.
func (cb *CaseBuilder) ReturningJSON(v any) *CaseBuilder {
	return cb.ReturningStatusJSON(http.StatusOK, v)
}

// ReturningStatusJSON responds with a status and v encoded as JSON.
func (cb *CaseBuilder) ReturningStatusJSON(code int, v any) *CaseBuilder {
	if cb.sealed() {
		return cb
	}
	resp, err := mock.JSON(code, v)
	if err != nil {
		cb.setError(fmt.Errorf("ReturningJSON: %w", err))
		return cb
	}
	return cb.Returning(resp)
}

func (cb *CaseBuilder) checkStatus(code int) {
	if code < 100 || code > 599 {
		cb.setError(&mock.ValidationError{Field: "status", Message: fmt.Sprintf("invalid status code %d", code)})
	}
}

// Register adds the case to the builder and returns its handle. It returns
// the first error recorded on the case, ErrNoResponse when no responder was
// set, ErrAlreadyRegistered on a second call and ErrFrozen after Build.
// Errors are also reported by Build.
func (cb *CaseBuilder) Register() (CaseHandle, error) {
	return cb.builder.register(cb)
}
