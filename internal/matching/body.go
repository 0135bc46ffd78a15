package matching

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// BodyEqual reports whether the body bytes are identical.
func BodyEqual(expected, actual []byte) bool {
	return bytes.Equal(expected, actual)
}

// IsText reports whether body can be rendered verbatim.
func IsText(body []byte) bool {
	return utf8.Valid(body)
}

// DisplayBody renders a body for humans. Binary bodies are summarized.
func DisplayBody(body []byte) string {
	if IsText(body) {
		return string(body)
	}
	return fmt.Sprintf("<%d bytes of binary data>", len(body))
}

// Lines splits text on newlines, keeping a trailing empty line out.
func Lines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
