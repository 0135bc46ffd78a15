package mock

import (
	"net/http"
	"slices"

	"github.com/getmockd/mockconnector/internal/matching"
)

// HeaderField is a single header line.
type HeaderField struct {
	Name  string
	Value string
}

// Headers is an ordered header list. Names compare case-insensitively and
// may repeat; values keep the order they were added in.
type Headers []HeaderField

// Add appends a field.
func (h *Headers) Add(name, value string) {
	*h = append(*h, HeaderField{Name: name, Value: value})
}

// Values returns every value of name in order.
func (h Headers) Values(name string) []string {
	var out []string
	for _, f := range h {
		if matching.SameName(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Get returns the first value of name, or "".
func (h Headers) Get(name string) string {
	for _, f := range h {
		if matching.SameName(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Has reports whether name is present.
func (h Headers) Has(name string) bool {
	return slices.ContainsFunc(h, func(f HeaderField) bool { return matching.SameName(f.Name, name) })
}

// Names returns the distinct names in first-seen order, spelled as first seen.
func (h Headers) Names() []string {
	var out []string
	for _, f := range h {
		if !slices.ContainsFunc(out, func(n string) bool { return matching.SameName(n, f.Name) }) {
			out = append(out, f.Name)
		}
	}
	return out
}

// Clone returns an independent copy.
func (h Headers) Clone() Headers {
	return slices.Clone(h)
}

// HTTP converts the list to an http.Header.
func (h Headers) HTTP() http.Header {
	out := make(http.Header, len(h))
	for _, f := range h {
		out.Add(f.Name, f.Value)
	}
	return out
}

// HeadersFromHTTP converts an http.Header, ordering fields by canonical
// name so the result is deterministic.
func HeadersFromHTTP(hdr http.Header) Headers {
	names := make([]string, 0, len(hdr))
	for name := range hdr {
		names = append(names, name)
	}
	slices.Sort(names)

	var out Headers
	for _, name := range names {
		for _, v := range hdr[name] {
			out.Add(http.CanonicalHeaderKey(name), v)
		}
	}
	return out
}
