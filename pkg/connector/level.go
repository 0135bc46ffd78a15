package connector

import (
	"fmt"
	"strings"
)

// Level controls which diagnostics the connector logs. Levels are ordered;
// each level includes everything below it.
type Level int

const (
	// LevelNone logs nothing.
	LevelNone Level = iota
	// LevelError logs responder failures and checkpoint failures.
	LevelError
	// LevelMissing additionally logs every mismatch report.
	LevelMissing
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = LevelMissing

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelError:
		return "error"
	case LevelMissing:
		return "missing"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel parses "none", "error" or "missing", ignoring case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "none":
		return LevelNone, nil
	case "error":
		return LevelError, nil
	case "missing", "":
		return LevelMissing, nil
	default:
		return DefaultLevel, fmt.Errorf("unknown diagnostic level %q", s)
	}
}
