package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/getmockd/mockconnector/internal/matching"
	"github.com/getmockd/mockconnector/pkg/mock"
)

const (
	minKeyWidth  = 10
	maxUnderline = 74
)

// writer accumulates report lines.
type writer struct {
	b strings.Builder
}

func (w *writer) header(format string, args ...any) {
	w.line("--> " + fmt.Sprintf(format, args...))
}

func (w *writer) gutter(text string) {
	w.line(" | " + text)
}

func (w *writer) note(format string, args ...any) {
	w.line(" = " + fmt.Sprintf(format, args...))
}

func (w *writer) line(text string) {
	w.b.WriteString(strings.TrimRight(text, " "))
	w.b.WriteByte('\n')
}

func (w *writer) blank() {
	w.b.WriteByte('\n')
}

func (w *writer) String() string {
	return w.b.String()
}

// NoMatch renders the report for a request no case accepted. outcomes
// carries one entry per case in registration order.
func NoMatch(req *mock.Request, outcomes []mock.Outcome) string {
	w := &writer{}
	w.header("no case matched the request")
	w.gutter("")
	writeRequest(w, req)
	w.gutter("")
	switch len(outcomes) {
	case 0:
		w.note("the connector has no cases")
	case 1:
		w.note("the request did not match the only case")
	default:
		w.note("the request did not match any of %d cases", len(outcomes))
	}

	for _, o := range outcomes {
		w.blank()
		writeOutcome(w, o)
	}
	return w.String()
}

// WriteNoMatch writes the NoMatch report to out.
func WriteNoMatch(out io.Writer, req *mock.Request, outcomes []mock.Outcome) error {
	_, err := io.WriteString(out, NoMatch(req, outcomes))
	return err
}

// Checkpoint renders the report for cases whose call counts are
// unsatisfied.
func Checkpoint(violations []mock.Violation) string {
	w := &writer{}
	if len(violations) == 1 {
		w.header("checkpoint failed: 1 case was not called the expected number of times")
	} else {
		w.header("checkpoint failed: %d cases were not called the expected number of times", len(violations))
	}

	for _, v := range violations {
		w.blank()
		w.header("%s", caseTitle(v.Index, v.Label))
		w.gutter("")
		fragments := make([]mock.Fragment, len(v.Predicates))
		for i, p := range v.Predicates {
			fragments[i] = mock.Fragment{Key: p.Key(), Expected: p.Display(), Matched: true}
		}
		writeFragments(w, fragments)
		w.gutter("")
		w.note("expected %s, got %d", v.Count.Expected(), v.Calls)
	}
	return w.String()
}

// WriteCheckpoint writes the Checkpoint report to out.
func WriteCheckpoint(out io.Writer, violations []mock.Violation) error {
	_, err := io.WriteString(out, Checkpoint(violations))
	return err
}

func caseTitle(index int, label string) string {
	if label == "" {
		return "case " + strconv.Itoa(index)
	}
	return "case " + strconv.Itoa(index) + " `" + label + "`"
}

func writeRequest(w *writer, req *mock.Request) {
	if req == nil {
		w.gutter("<nil request>")
		return
	}
	w.gutter(pad("method:", minKeyWidth) + req.Method)
	w.gutter(pad("uri:", minKeyWidth) + req.URIString())

	if len(req.Header) > 0 {
		w.gutter("headers:")
		width := 0
		for _, f := range req.Header {
			width = max(width, utf8.RuneCountInString(f.Name)+2)
		}
		for _, f := range req.Header {
			w.gutter("  " + pad(f.Name+":", width) + f.Value)
		}
	}

	if len(req.Body) > 0 {
		w.gutter("body:")
		for _, line := range matching.Lines(matching.DisplayBody(req.Body)) {
			w.gutter("> " + line)
		}
	}
}

func writeOutcome(w *writer, o mock.Outcome) {
	title := caseTitle(o.Index, o.Label)
	if o.Exhausted {
		title += " (exhausted)"
	}
	w.header("%s", title)
	w.gutter("")
	writeFragments(w, o.Result.Fragments)
	w.gutter("")

	full := o.Result.Full()
	if o.Exhausted {
		if full {
			w.note("matches the request but is exhausted: expected %s, got %d", o.Count.Expected(), o.Calls)
		} else {
			w.note("exhausted: expected %s, got %d", o.Count.Expected(), o.Calls)
		}
	}
	if !full {
		w.note("case %d does not match on:", o.Index)
		for _, attr := range o.Result.Attributes() {
			w.gutter("  - " + attr)
		}
	}
}

func writeFragments(w *writer, fragments []mock.Fragment) {
	if len(fragments) == 0 {
		w.gutter("(matches any request)")
		return
	}
	width := minKeyWidth
	for _, f := range fragments {
		width = max(width, utf8.RuneCountInString(f.Key)+2)
	}
	for _, f := range fragments {
		if strings.Contains(f.Expected, "\n") {
			writeBlock(w, f)
		} else {
			writeInline(w, f, width)
		}
	}
}

func writeInline(w *writer, f mock.Fragment, width int) {
	w.gutter(pad(f.Key+":", width) + f.Expected)
	if f.Matched {
		return
	}
	marks := underline(f.Spans, 0, utf8.RuneCountInString(f.Expected))
	w.gutter(strings.Repeat(" ", width) + withMessage(marks, f.Message))
}

func writeBlock(w *writer, f mock.Fragment) {
	w.gutter(f.Key + ":")
	lines := strings.Split(f.Expected, "\n")
	lastMarked := -1
	for _, s := range f.Spans {
		lastMarked = max(lastMarked, s.Line)
	}
	for i, line := range lines {
		w.gutter("> " + line)
		if f.Matched {
			continue
		}
		if m := underline(f.Spans, i, -1); m != "" {
			if i == lastMarked {
				m = withMessage(m, f.Message)
			}
			w.gutter("  " + m)
		}
	}
	if !f.Matched && len(f.Spans) == 0 {
		width := 0
		for _, line := range lines {
			width = max(width, utf8.RuneCountInString(line))
		}
		w.gutter("  " + withMessage(carets(width), f.Message))
	}
}

// underline renders the carets for one line. Without spans the whole
// value (of width runes) is underlined; width < 0 means spans are
// required.
func underline(spans []mock.Span, line, width int) string {
	if len(spans) == 0 {
		if width < 0 {
			return ""
		}
		return carets(width)
	}
	var b strings.Builder
	col := 0
	for _, s := range spans {
		if s.Line != line || s.Start < col {
			continue
		}
		b.WriteString(strings.Repeat(" ", s.Start-col))
		b.WriteString(strings.Repeat("^", s.Length))
		col = s.Start + s.Length
	}
	return b.String()
}

func carets(width int) string {
	return strings.Repeat("^", min(maxUnderline, max(1, width)))
}

func withMessage(marks, message string) string {
	if message == "" {
		return marks
	}
	return marks + " " + message
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-n)
}
