package report

import (
	"fmt"
	"strings"

	"github.com/getmockd/mockconnector/pkg/mock"
)

// Summary explains in one line why a case did not accept a request, e.g.
// "uri and header `Accept` matched, but method: got "POST"".
func Summary(o mock.Outcome) string {
	fragments := o.Result.Fragments
	var matched []string
	var firstMismatch *mock.Fragment
	for i := range fragments {
		if fragments[i].Matched {
			matched = append(matched, fragments[i].Attribute)
		} else if firstMismatch == nil {
			firstMismatch = &fragments[i]
		}
	}

	if firstMismatch == nil {
		if o.Exhausted {
			return fmt.Sprintf("matched, but exhausted: expected %s, got %d", o.Count.Expected(), o.Calls)
		}
		if len(fragments) == 0 {
			return "matches any request"
		}
		return "all predicates matched"
	}

	reason := formatMismatch(firstMismatch)
	if len(matched) > 0 {
		reason = joinFields(dedupe(matched)) + " matched, but " + reason
	}
	if o.Exhausted {
		reason += " (exhausted)"
	}
	return reason
}

func formatMismatch(f *mock.Fragment) string {
	if f.Message == "" {
		return f.Attribute + " did not match"
	}
	return f.Attribute + ": " + f.Message
}

// joinFields joins field names with commas and "and".
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
