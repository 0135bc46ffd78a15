package requestlog

import (
	"strings"
	"time"
)

// MaxBodySize bounds the body text stored on an entry.
const MaxBodySize = 10 << 10

// Header is one request header line.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Entry captures one dispatched request and what the connector did with it.
type Entry struct {
	// ID is a unique identifier for the entry.
	ID string `json:"id"`

	// Seq is the 1-based position of the entry in its store.
	Seq int64 `json:"seq"`

	// Timestamp is when the request was dispatched.
	Timestamp time.Time `json:"timestamp"`

	// ConnectorID identifies the connector that handled the request.
	ConnectorID string `json:"connectorId,omitempty"`

	Method      string   `json:"method"`
	URI         string   `json:"uri"`
	Path        string   `json:"path"`
	QueryString string   `json:"queryString,omitempty"`
	Headers     []Header `json:"headers,omitempty"`

	// Body is the request body (truncated to MaxBodySize).
	Body string `json:"body,omitempty"`

	// BodySize is the original body size in bytes.
	BodySize int `json:"bodySize"`

	// MatchedCase is the index of the case that accepted the request, or -1.
	MatchedCase  int    `json:"matchedCase"`
	MatchedLabel string `json:"matchedLabel,omitempty"`

	// ResponseStatus is the status code returned, 0 when none was.
	ResponseStatus int `json:"responseStatus,omitempty"`

	// DurationMs is the dispatch time in milliseconds.
	DurationMs int `json:"durationMs"`

	// Error contains the error message if the dispatch failed.
	Error string `json:"error,omitempty"`

	// NearMisses explains, per case, why an unmatched request was refused.
	NearMisses []NearMissInfo `json:"nearMisses,omitempty"`
}

// Matched reports whether a case accepted the request.
func (e *Entry) Matched() bool {
	return e.MatchedCase >= 0
}

// HeaderValue returns the first value of the named header, ignoring case.
func (e *Entry) HeaderValue(name string) string {
	for _, h := range e.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// TruncateBody renders body for storage.
func TruncateBody(body []byte) string {
	if len(body) > MaxBodySize {
		return string(body[:MaxBodySize]) + "...(truncated)"
	}
	return string(body)
}
