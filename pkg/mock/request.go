package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/getmockd/mockconnector/internal/matching"
)

// Request is an immutable snapshot of an outgoing request: method, URI,
// ordered headers and the fully buffered body. Callers must not modify a
// Request after handing it to a connector.
type Request struct {
	Method string
	URI    *url.URL
	Header Headers
	Body   []byte
}

// NewRequest builds a Request. An empty method means GET.
func NewRequest(method, uri string, body []byte, header ...HeaderField) (*Request, error) {
	if method == "" {
		method = http.MethodGet
	}
	if !matching.ValidMethod(method) {
		return nil, &ValidationError{Field: "method", Message: fmt.Sprintf("invalid method %q", method)}
	}
	u, err := matching.ParseURI(uri)
	if err != nil {
		return nil, &ValidationError{Field: "uri", Message: err.Error()}
	}
	return &Request{
		Method: method,
		URI:    u,
		Header: Headers(header).Clone(),
		Body:   bytes.Clone(body),
	}, nil
}

// FromHTTP captures r. The body is read to the end and closed.
func FromHTTP(r *http.Request) (*Request, error) {
	if r == nil || r.URL == nil {
		return nil, fmt.Errorf("nil request")
	}
	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		body = b
	}

	u := *r.URL
	if u.Host == "" && r.Host != "" {
		u.Host = r.Host
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	return &Request{
		Method: method,
		URI:    &u,
		Header: HeadersFromHTTP(r.Header),
		Body:   body,
	}, nil
}

// URIString renders the URI the way predicates compare it.
func (r *Request) URIString() string {
	return matching.URIString(r.URI)
}

// HTTPRequest rebuilds an *http.Request carrying the same data.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URIString(), bytes.NewReader(r.Body))
	if err != nil {
		return nil, err
	}
	req.Header = r.Header.HTTP()
	return req, nil
}

func (r *Request) exprEnv() matching.ExprEnv {
	env := matching.ExprEnv{
		Method: r.Method,
		URI:    r.URIString(),
		Body:   string(r.Body),
		Query:  map[string]string{},
		Header: map[string]string{},
	}
	if r.URI != nil {
		env.Scheme = r.URI.Scheme
		env.Host = r.URI.Host
		env.Path = r.URI.Path
		for k, v := range r.URI.Query() {
			if len(v) > 0 {
				env.Query[k] = v[0]
			}
		}
	}
	for _, f := range r.Header {
		key := strings.ToLower(f.Name)
		if _, ok := env.Header[key]; !ok {
			env.Header[key] = f.Value
		}
	}
	if v, err := matching.ParseJSON(r.Body); err == nil {
		env.JSON = v
	}
	return env
}
