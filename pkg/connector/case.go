package connector

import (
	"fmt"
	"sync/atomic"

	"github.com/getmockd/mockconnector/pkg/mock"
)

// Case is one registered expectation: a conjunction of predicates, a
// responder and a call-count constraint. Everything but the call counter is
// fixed at registration.
type Case struct {
	index      int
	label      string
	predicates []mock.Predicate
	responder  mock.Responder
	count      mock.CountSpec
	calls      atomic.Int64
}

// Index returns the 0-based registration index.
func (c *Case) Index() int { return c.index }

// Label returns the label set with Named, if any.
func (c *Case) Label() string { return c.label }

// Count returns the call-count constraint.
func (c *Case) Count() mock.CountSpec { return c.count }

// Predicates returns a copy of the case's predicates in registration order.
func (c *Case) Predicates() []mock.Predicate {
	return append([]mock.Predicate(nil), c.predicates...)
}

// Match evaluates every predicate against req.
func (c *Case) Match(req *mock.Request) mock.MatchResult {
	return mock.Evaluate(c.predicates, req)
}

// Calls returns how many requests the case has accepted.
func (c *Case) Calls() int {
	return int(c.calls.Load())
}

func (c *Case) name() string {
	if c.label != "" {
		return fmt.Sprintf("case %d (%s)", c.index, c.label)
	}
	return fmt.Sprintf("case %d", c.index)
}

// CaseHandle refers to a registered case. It stays valid after Build and
// reflects the live call count of the built connector.
type CaseHandle struct {
	Index int
	Label string

	c *Case
}

// Calls returns how many requests the case has accepted so far. The zero
// handle reports 0.
func (h CaseHandle) Calls() int {
	if h.c == nil {
		return 0
	}
	return h.c.Calls()
}

// CaseState is a point-in-time view of a case.
type CaseState struct {
	Index     int
	Label     string
	Count     mock.CountSpec
	Calls     int
	Satisfied bool
	Exhausted bool

	// Predicates renders each predicate with Describe.
	Predicates []string
}
