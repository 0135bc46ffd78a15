package matching

import (
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
	"golang.org/x/text/cases"
)

// HeaderMode selects how expected header values are compared with the
// values present on a request.
type HeaderMode int

const (
	// HeaderAtLeastOnce requires the value among the header's values.
	HeaderAtLeastOnce HeaderMode = iota
	// HeaderExactlyOnce requires a single value equal to the expected one.
	HeaderExactlyOnce
	// HeaderAll requires the same values as a multiset, order ignored.
	HeaderAll
)

// FoldName returns the case-folded form of a header name. A fresh Caser is
// used per call since cases.Caser keeps state.
func FoldName(name string) string {
	return cases.Fold().String(name)
}

// SameName reports whether two header names are equal ignoring case.
func SameName(a, b string) bool {
	if a == b {
		return true
	}
	return FoldName(a) == FoldName(b)
}

// MatchHeaderValues compares expected values with the actual values of one
// header according to mode.
func MatchHeaderValues(mode HeaderMode, expected, actual []string) bool {
	switch mode {
	case HeaderExactlyOnce:
		return len(expected) == 1 && len(actual) == 1 && actual[0] == expected[0]
	case HeaderAll:
		if len(expected) != len(actual) {
			return false
		}
		e := slices.Clone(expected)
		a := slices.Clone(actual)
		slices.Sort(e)
		slices.Sort(a)
		return slices.Equal(e, a)
	default:
		for _, want := range expected {
			if !slices.Contains(actual, want) {
				return false
			}
		}
		return len(expected) > 0
	}
}

// ValidHeaderName reports whether name is a valid header field name.
func ValidHeaderName(name string) bool {
	return httpguts.ValidHeaderFieldName(name)
}

// ValidHeaderValue reports whether value is a valid header field value.
func ValidHeaderValue(value string) bool {
	return httpguts.ValidHeaderFieldValue(value)
}

// ValidMethod reports whether method is a non-empty HTTP token.
func ValidMethod(method string) bool {
	if method == "" {
		return false
	}
	return strings.IndexFunc(method, func(r rune) bool { return !httpguts.IsTokenRune(r) }) < 0
}
