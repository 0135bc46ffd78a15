package connector

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/getmockd/mockconnector/pkg/mock"
)

var _ http.RoundTripper = (*Connector)(nil)

// RoundTrip implements http.RoundTripper. The request body is read and
// closed; a no-match is returned as the transport error, so http.Client
// callers see a *url.Error wrapping *NoMatchError.
func (c *Connector) RoundTrip(r *http.Request) (*http.Response, error) {
	if err := r.Context().Err(); err != nil {
		if r.Body != nil {
			_ = r.Body.Close()
		}
		return nil, err
	}
	req, err := mock.FromHTTP(r)
	if err != nil {
		if r.Body != nil {
			_ = r.Body.Close()
		}
		return nil, err
	}
	resp, err := c.Dispatch(req)
	if err != nil {
		return nil, err
	}
	return toHTTPResponse(resp, r), nil
}

// Client returns an *http.Client whose transport is the connector.
func (c *Connector) Client() *http.Client {
	return &http.Client{Transport: c}
}

func toHTTPResponse(resp *mock.Response, r *http.Request) *http.Response {
	code := resp.StatusCode()
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		StatusCode:    code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        resp.Header.HTTP(),
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       r,
	}
}
