// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"fmt"
	"strings"

	"github.com/getmockd/mockconnector/pkg/mock"
)

// KeyValue parses a "key:value" or "key=value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to ':'.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{':'}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Headers parses "Name: value" flags in order. Repeated names are kept as
// separate fields. Values are trimmed of surrounding whitespace.
func Headers(headers []string) (mock.Headers, error) {
	var out mock.Headers
	for _, h := range headers {
		name, value, ok := KeyValue(h, ':')
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: expected Name: value", h)
		}
		out.Add(name, strings.TrimSpace(value))
	}
	return out, nil
}
