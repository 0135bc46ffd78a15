package mock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/getmockd/mockconnector/internal/matching"
)

var errFalse = errors.New("predicate returned false")

// Reason classifies a predicate failure.
type Reason int

const (
	ReasonMatched Reason = iota
	// ReasonMismatch means the attribute is present with another value.
	ReasonMismatch
	// ReasonMissing means the attribute is absent from the request.
	ReasonMissing
	// ReasonMalformedBody means the body could not be decoded.
	ReasonMalformedBody
	// ReasonInvalid means evaluation itself failed.
	ReasonInvalid
)

func (r Reason) String() string {
	switch r {
	case ReasonMatched:
		return "matched"
	case ReasonMismatch:
		return "mismatch"
	case ReasonMissing:
		return "missing"
	case ReasonMalformedBody:
		return "malformed body"
	case ReasonInvalid:
		return "invalid"
	}
	return "Reason(" + strconv.Itoa(int(r)) + ")"
}

// Span marks a run of runes in Fragment.Expected, by line, that disagrees
// with the request.
type Span struct {
	Line   int
	Start  int
	Length int
}

// Fragment is the explanation of one predicate against one request.
type Fragment struct {
	Kind      Kind
	Key       string
	Attribute string
	// Subject names the exact sub-value compared: a JSON path, an XPath,
	// or "path" versus "full URI" for URI patterns.
	Subject  string
	Matched  bool
	Reason   Reason
	Expected string
	Actual   string
	Message  string
	// Spans underline the disagreeing parts of Expected. Empty for a
	// failed fragment means the whole value.
	Spans []Span
}

// Explain evaluates p against req and describes the result.
func (p Predicate) Explain(req *Request) Fragment {
	f := Fragment{
		Kind:      p.kind,
		Key:       p.Key(),
		Attribute: p.Attribute(),
		Expected:  p.Display(),
		Matched:   true,
	}
	if err := p.Err(); err != nil {
		return f.fail(ReasonInvalid, err.Error())
	}
	if req == nil {
		return f.fail(ReasonInvalid, "nil request")
	}

	switch p.kind {
	case KindMethod:
		f.Actual = req.Method
		if req.Method != p.text {
			return f.fail(ReasonMismatch, "got "+strconv.Quote(req.Method))
		}
	case KindURI:
		f.Actual = req.URIString()
		if f.Actual != p.text {
			f.Spans = toSpans(matching.DiffSpans(p.text, f.Actual))
			return f.fail(ReasonMismatch, "got "+strconv.Quote(f.Actual))
		}
	case KindURIGlob, KindURIRegex:
		f.Actual = req.URIString()
		if req.URI == nil {
			return f.fail(ReasonInvalid, "request has no URI")
		}
		if !p.pattern.Match(req.URI) {
			subject, value := p.pattern.Subject(req.URI)
			f.Subject = subject
			return f.fail(ReasonMismatch, subject+" "+strconv.Quote(value)+" does not match")
		}
	case KindQuery:
		values := matching.QueryValues(req.URI)[p.name]
		f.Actual = quoteJoin(values)
		if len(values) == 0 {
			return f.fail(ReasonMissing, "query parameter not present")
		}
		if !matching.MatchHeaderValues(matching.HeaderAtLeastOnce, []string{p.text}, values) {
			f.Spans = valueSpan(p.name, f.Expected)
			return f.fail(ReasonMismatch, "got "+f.Actual)
		}
	case KindHeader, KindHeaderOnce, KindHeaderAll:
		return p.explainHeader(f, req)
	case KindHeaderPresent:
		if !req.Header.Has(p.name) {
			return f.fail(ReasonMissing, "header not present")
		}
	case KindBody:
		return p.explainBody(f, req)
	case KindJSON, KindJSONPartial:
		return p.explainJSON(f, req)
	case KindJSONPath:
		doc, err := matching.ParseJSON(req.Body)
		if err != nil {
			return f.fail(ReasonMalformedBody, "body is not valid JSON")
		}
		f.Subject = p.path.String()
		ok, actual := p.path.Match(doc)
		if actual != nil {
			f.Actual = matching.CompactJSON(actual)
		}
		if !ok {
			if actual == nil {
				return f.fail(ReasonMissing, "no value at "+f.Subject)
			}
			return f.fail(ReasonMismatch, "got "+f.Actual)
		}
	case KindJSONSchema:
		doc, err := matching.ParseJSON(req.Body)
		if err != nil {
			return f.fail(ReasonMalformedBody, "body is not valid JSON")
		}
		if msgs := p.schema.Validate(doc); len(msgs) > 0 {
			if len(msgs) > 3 {
				msgs = append(msgs[:3], fmt.Sprintf("and %d more", len(msgs)-3))
			}
			return f.fail(ReasonMismatch, strings.Join(msgs, "; "))
		}
	case KindXPath:
		doc, err := matching.ParseXML(req.Body)
		if err != nil {
			return f.fail(ReasonMalformedBody, "body is not valid XML")
		}
		f.Subject = p.xpath.String()
		actual, found := p.xpath.Extract(doc)
		if !found {
			return f.fail(ReasonMissing, "nothing at "+f.Subject)
		}
		f.Actual = actual
		if actual != p.text {
			return f.fail(ReasonMismatch, "got "+strconv.Quote(actual))
		}
	case KindGraphQLOperation:
		doc, err := matching.ParseGraphQL(req.Body)
		if err != nil {
			return f.fail(ReasonMalformedBody, err.Error())
		}
		f.Actual = doc.Selected
		if doc.Selected != p.text {
			if doc.Selected == "" {
				return f.fail(ReasonMismatch, "request selects no single operation, found "+quoteJoin(doc.Operations))
			}
			return f.fail(ReasonMismatch, "got operation "+strconv.Quote(doc.Selected))
		}
	case KindBearerClaims:
		return p.explainBearer(f, req)
	case KindProto:
		msg, err := matching.DecodeProto(p.message, req.Body)
		if err != nil {
			return f.fail(ReasonMalformedBody, err.Error())
		}
		f.Actual = matching.FormatProto(msg)
		if !matching.EqualProto(p.message, msg) {
			f.Spans = toSpans(matching.DiffSpans(f.Expected, f.Actual))
			return f.fail(ReasonMismatch, "message differs")
		}
	case KindOpenAPI:
		hreq, err := req.HTTPRequest(context.Background())
		if err != nil {
			return f.fail(ReasonInvalid, err.Error())
		}
		if err := p.api.Check(hreq); err != nil {
			return f.fail(ReasonMismatch, firstLine(err.Error()))
		}
	case KindExpr:
		ok, err := p.program.Eval(req.exprEnv())
		if err != nil {
			return f.fail(ReasonInvalid, err.Error())
		}
		if !ok {
			return f.fail(ReasonMismatch, "evaluated to false")
		}
	case KindCustom:
		if err := p.check(req); err != nil {
			return f.fail(ReasonMismatch, err.Error())
		}
	default:
		return f.fail(ReasonInvalid, "unknown predicate kind "+p.kind.String())
	}
	return f
}

func (f Fragment) fail(reason Reason, message string) Fragment {
	f.Matched = false
	f.Reason = reason
	f.Message = message
	return f
}

func (p Predicate) explainHeader(f Fragment, req *Request) Fragment {
	values := req.Header.Values(p.name)
	f.Actual = quoteJoin(values)
	if len(values) == 0 {
		return f.fail(ReasonMissing, "header not present")
	}

	mode := matching.HeaderAtLeastOnce
	switch p.kind {
	case KindHeaderOnce:
		mode = matching.HeaderExactlyOnce
		if len(values) != 1 {
			return f.fail(ReasonMismatch, fmt.Sprintf("expected exactly one value, got %d: %s", len(values), f.Actual))
		}
	case KindHeaderAll:
		mode = matching.HeaderAll
	}
	if !matching.MatchHeaderValues(mode, p.values, values) {
		f.Spans = valueSpan(p.name, f.Expected)
		return f.fail(ReasonMismatch, "got "+f.Actual)
	}
	return f
}

func (p Predicate) explainBody(f Fragment, req *Request) Fragment {
	f.Actual = matching.DisplayBody(req.Body)
	if matching.BodyEqual(p.body, req.Body) {
		return f
	}
	if len(req.Body) == 0 {
		return f.fail(ReasonMissing, "request has no body")
	}
	if matching.IsText(p.body) && matching.IsText(req.Body) {
		f.Spans = toSpans(matching.DiffSpans(f.Expected, f.Actual))
	}
	return f.fail(ReasonMismatch, describeActual(f.Actual))
}

func (p Predicate) explainJSON(f Fragment, req *Request) Fragment {
	doc, err := matching.ParseJSON(req.Body)
	if err != nil {
		if len(req.Body) == 0 {
			return f.fail(ReasonMissing, "request has no body")
		}
		return f.fail(ReasonMalformedBody, "body is not valid JSON: "+strings.TrimPrefix(err.Error(), "invalid JSON: "))
	}
	f.Actual = matching.FormatJSON(doc)
	if d := matching.FirstJSONDifference(p.value, doc, p.kind == KindJSONPartial); d != nil {
		f.Subject = d.Path
		return f.fail(ReasonMismatch, d.String())
	}
	return f
}

func (p Predicate) explainBearer(f Fragment, req *Request) Fragment {
	var token string
	for _, v := range req.Header.Values("Authorization") {
		if t, ok := matching.BearerToken(v); ok {
			token = t
			break
		}
	}
	if token == "" {
		return f.fail(ReasonMissing, "no bearer token")
	}
	claims, err := matching.TokenClaims(token)
	if err != nil {
		return f.fail(ReasonInvalid, err.Error())
	}
	actual, err := matching.Canonical(claims)
	if err != nil {
		return f.fail(ReasonInvalid, err.Error())
	}
	f.Actual = matching.CompactJSON(actual)
	if d := matching.FirstJSONDifference(p.value, actual, true); d != nil {
		f.Subject = d.Path
		return f.fail(ReasonMismatch, "claim "+d.String())
	}
	return f
}

func toSpans(in []matching.Span) []Span {
	if len(in) == 0 {
		return nil
	}
	out := make([]Span, len(in))
	for i, s := range in {
		out[i] = Span{Line: s.Line, Start: s.Start, Length: s.Length}
	}
	return out
}

// valueSpan underlines the value part of a "name: value" display.
func valueSpan(name, display string) []Span {
	start := utf8.RuneCountInString(name) + 2
	length := utf8.RuneCountInString(display) - start
	return []Span{{Line: 0, Start: start, Length: max(1, length)}}
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, ", ")
}

func describeActual(actual string) string {
	if strings.Contains(actual, "\n") {
		return fmt.Sprintf("got %d lines", len(matching.Lines(actual)))
	}
	if utf8.RuneCountInString(actual) > 60 {
		r := []rune(actual)
		return "got " + strconv.Quote(string(r[:57])+"...")
	}
	return "got " + strconv.Quote(actual)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
