package mock

import "fmt"

// CountMode is the kind of call-count constraint on a case.
type CountMode int

const (
	// CountAny places no constraint on the number of calls.
	CountAny CountMode = iota
	// CountExactly requires exactly N calls and refuses further ones.
	CountExactly
	// CountAtLeast requires N or more calls.
	CountAtLeast
)

// CountSpec constrains how often a case may and must be called.
type CountSpec struct {
	Mode CountMode
	N    int
}

// Times requires exactly n calls.
func Times(n int) CountSpec { return CountSpec{Mode: CountExactly, N: n} }

// AtLeast requires n or more calls.
func AtLeast(n int) CountSpec { return CountSpec{Mode: CountAtLeast, N: n} }

// AnyTimes places no constraint.
func AnyTimes() CountSpec { return CountSpec{Mode: CountAny} }

// Satisfied reports whether calls meets the constraint at checkpoint time.
func (c CountSpec) Satisfied(calls int) bool {
	switch c.Mode {
	case CountExactly:
		return calls == c.N
	case CountAtLeast:
		return calls >= c.N
	default:
		return true
	}
}

// Exhausted reports whether a case with this constraint must refuse
// another call.
func (c CountSpec) Exhausted(calls int) bool {
	return c.Mode == CountExactly && calls >= c.N
}

// Expected renders the required count as used in "expected 2, got 1".
func (c CountSpec) Expected() string {
	switch c.Mode {
	case CountExactly:
		return fmt.Sprintf("%d", c.N)
	case CountAtLeast:
		return fmt.Sprintf("at least %d", c.N)
	default:
		return "any number"
	}
}

func (c CountSpec) String() string {
	switch c.Mode {
	case CountExactly:
		return fmt.Sprintf("times(%d)", c.N)
	case CountAtLeast:
		return fmt.Sprintf("atLeast(%d)", c.N)
	default:
		return "any"
	}
}
