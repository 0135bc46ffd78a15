package mock

// MatchResult holds one fragment per predicate of a case, in predicate
// order. Every predicate is evaluated; nothing short-circuits.
type MatchResult struct {
	Fragments []Fragment
}

// Evaluate explains every predicate against req.
func Evaluate(predicates []Predicate, req *Request) MatchResult {
	result := MatchResult{Fragments: make([]Fragment, 0, len(predicates))}
	for _, p := range predicates {
		result.Fragments = append(result.Fragments, p.Explain(req))
	}
	return result
}

// Full reports whether every predicate matched. A case without predicates
// matches everything.
func (m MatchResult) Full() bool {
	for _, f := range m.Fragments {
		if !f.Matched {
			return false
		}
	}
	return true
}

// Failed returns the fragments that did not match.
func (m MatchResult) Failed() []Fragment {
	var out []Fragment
	for _, f := range m.Fragments {
		if !f.Matched {
			out = append(out, f)
		}
	}
	return out
}

// Attributes lists the disagreeing attributes once each, in predicate order.
func (m MatchResult) Attributes() []string {
	var out []string
	seen := map[string]bool{}
	for _, f := range m.Fragments {
		if f.Matched || seen[f.Attribute] {
			continue
		}
		seen[f.Attribute] = true
		out = append(out, f.Attribute)
	}
	return out
}

// Outcome records how one case fared against a request that matched no
// case.
type Outcome struct {
	Index     int
	Label     string
	Count     CountSpec
	Calls     int
	Exhausted bool
	Result    MatchResult
}

// Violation records a case whose call count is unsatisfied at checkpoint.
type Violation struct {
	Index      int
	Label      string
	Count      CountSpec
	Calls      int
	Predicates []Predicate
}
