package mock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is what a connector hands back for a matched request. A zero
// Status is sent as 200.
type Response struct {
	Status int
	Header Headers
	Body   []byte
}

// Responder produces the response for a matched request. Implementations
// are called outside the connector lock and must be safe for concurrent use.
type Responder interface {
	Respond(req *Request) (*Response, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(req *Request) (*Response, error)

// Respond calls f.
func (f ResponderFunc) Respond(req *Request) (*Response, error) {
	return f(req)
}

// Respond returns a copy of the template, so a static Response is itself a
// Responder.
func (r *Response) Respond(*Request) (*Response, error) {
	return r.Clone(), nil
}

// Clone returns a deep copy.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	return &Response{
		Status: r.Status,
		Header: r.Header.Clone(),
		Body:   bytes.Clone(r.Body),
	}
}

// StatusCode returns Status, defaulting to 200.
func (r *Response) StatusCode() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

// WithHeader appends a header and returns r.
func (r *Response) WithHeader(name, value string) *Response {
	r.Header.Add(name, value)
	return r
}

// Status returns an empty response with the given code.
func Status(code int) *Response {
	return &Response{Status: code}
}

// Text returns a 200 response with a plain text body.
func Text(body string) *Response {
	return StatusText(http.StatusOK, body)
}

// StatusText returns a response with the given code and plain text body.
func StatusText(code int, body string) *Response {
	return &Response{
		Status: code,
		Header: Headers{{Name: "Content-Type", Value: "text/plain; charset=utf-8"}},
		Body:   []byte(body),
	}
}

// JSON returns a response with v encoded as the body.
func JSON(code int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding response body: %w", err)
	}
	return &Response{
		Status: code,
		Header: Headers{{Name: "Content-Type", Value: "application/json"}},
		Body:   body,
	}, nil
}
