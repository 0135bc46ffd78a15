package matching

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// URIPattern is a compiled URI glob or regular expression.
type URIPattern struct {
	raw  string
	glob bool
	re   *regexp.Regexp
}

// CompileURIGlob compiles a doublestar glob. Patterns starting with "/" are
// matched against the URI path only; anything else is matched against the
// full URI string.
func CompileURIGlob(pattern string) (*URIPattern, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty URI glob")
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid URI glob %q", pattern)
	}
	return &URIPattern{raw: pattern, glob: true}, nil
}

// CompileURIRegex compiles an RE2 expression matched against the full URI
// string. The expression is not anchored unless it says so.
func CompileURIRegex(pattern string) (*URIPattern, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty URI regex")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid URI regex %q: %w", pattern, err)
	}
	return &URIPattern{raw: pattern, re: re}, nil
}

// String returns the pattern source.
func (p *URIPattern) String() string {
	return p.raw
}

// Subject returns which part of u the pattern is compared with, "path" or
// "full URI", and its value.
func (p *URIPattern) Subject(u *url.URL) (name, value string) {
	if p.glob && strings.HasPrefix(p.raw, "/") {
		value = u.EscapedPath()
		if value == "" {
			value = "/"
		}
		return "path", value
	}
	return "full URI", URIString(u)
}

// Match reports whether u satisfies the pattern.
func (p *URIPattern) Match(u *url.URL) bool {
	if u == nil {
		return false
	}
	_, subject := p.Subject(u)
	if !p.glob {
		return p.re.MatchString(subject)
	}
	ok, err := doublestar.Match(p.raw, subject)
	return err == nil && ok
}

// ParseURI parses an absolute or origin-form URI.
func ParseURI(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty URI")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URI %q: %w", raw, err)
	}
	return u, nil
}

// URIString renders u the way it is compared. A URI with an authority but
// no path is given the root path, so "https://example.com" and
// "https://example.com/" compare equal.
func URIString(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.Host != "" && u.Path == "" && u.RawPath == "" && u.Opaque == "" {
		c := *u
		c.Path = "/"
		return c.String()
	}
	return u.String()
}

// URIEqual reports whether two URIs render identically.
func URIEqual(expected, actual *url.URL) bool {
	return URIString(expected) == URIString(actual)
}

// QueryValues returns the decoded query parameters of u.
func QueryValues(u *url.URL) url.Values {
	if u == nil {
		return url.Values{}
	}
	return u.Query()
}
