package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// Span marks a run of runes on one line of an expected text that disagrees
// with the actual text.
type Span struct {
	Line   int
	Start  int
	Length int
}

// DiffSpans compares expected with actual line by line, then character by
// character within replaced lines, and returns the spans of expected that
// differ. Insertions are marked with a single-rune span at the insertion
// point, which may sit one rune past the end of a line.
func DiffSpans(expected, actual string) []Span {
	if expected == actual {
		return nil
	}
	exp := strings.Split(expected, "\n")
	act := strings.Split(actual, "\n")

	var spans []Span
	m := difflib.NewMatcher(exp, act)
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			continue
		case 'd':
			for i := op.I1; i < op.I2; i++ {
				spans = append(spans, wholeLine(i, exp[i]))
			}
		case 'i':
			spans = append(spans, insertionPoint(op.I1, exp))
		case 'r':
			for k := 0; k < op.I2-op.I1; k++ {
				i := op.I1 + k
				if j := op.J1 + k; j < op.J2 {
					spans = append(spans, lineSpans(i, exp[i], act[j])...)
				} else {
					spans = append(spans, wholeLine(i, exp[i]))
				}
			}
		}
	}
	return mergeSpans(spans)
}

func lineSpans(line int, expected, actual string) []Span {
	a := strings.Split(expected, "")
	b := strings.Split(actual, "")
	var spans []Span
	m := difflib.NewMatcher(a, b)
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'r', 'd':
			spans = append(spans, Span{Line: line, Start: op.I1, Length: op.I2 - op.I1})
		case 'i':
			spans = append(spans, Span{Line: line, Start: op.I1, Length: 1})
		}
	}
	return spans
}

func wholeLine(line int, text string) Span {
	return Span{Line: line, Start: 0, Length: max(1, utf8.RuneCountInString(text))}
}

func insertionPoint(line int, lines []string) Span {
	if line < len(lines) {
		return Span{Line: line, Start: 0, Length: 1}
	}
	last := len(lines) - 1
	return Span{Line: last, Start: utf8.RuneCountInString(lines[last]), Length: 1}
}

// mergeSpans joins overlapping or touching spans on the same line. Input
// spans arrive in line order from the opcode walk.
func mergeSpans(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Line == last.Line && s.Start <= last.Start+last.Length {
			end := max(last.Start+last.Length, s.Start+s.Length)
			last.Length = end - last.Start
			continue
		}
		out = append(out, s)
	}
	return out
}
