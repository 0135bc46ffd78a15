package connector

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/mockconnector/pkg/mock"
	"github.com/getmockd/mockconnector/pkg/report"
	"github.com/getmockd/mockconnector/pkg/requestlog"
)

// Connector answers requests from a fixed list of cases. Copies of the
// pointer share cases and counters.
type Connector struct {
	id      string
	mu      sync.Mutex
	cases   []*Case
	logger  *slog.Logger
	level   Level
	journal requestlog.Logger
}

// ID returns the connector's unique identifier.
func (c *Connector) ID() string {
	return c.id
}

// Dispatch selects the first eligible case that fully matches req,
// increments its counter and renders its response. Cases with an exact
// count that has been reached are not eligible. When no case is selected no
// counter changes and the error is a *NoMatchError. Responder errors are
// wrapped in ErrResponder; the case still counts as called.
func (c *Connector) Dispatch(req *mock.Request) (*mock.Response, error) {
	if req == nil || req.URI == nil {
		return nil, &mock.ValidationError{Field: "request", Message: "request and URI are required"}
	}
	start := time.Now()

	selected, calls, outcomes := c.selectCase(req)
	if selected == nil {
		err := &NoMatchError{Request: req, Outcomes: outcomes}
		if c.level >= LevelMissing {
			c.logger.Warn("no case matched the request",
				"method", req.Method,
				"uri", req.URIString(),
				"report", err.Error())
		}
		c.record(req, nil, nil, err, outcomes, start)
		return nil, err
	}

	c.logger.Debug("request dispatched",
		"case", selected.index,
		"label", selected.label,
		"calls", calls)

	resp, err := selected.responder.Respond(req)
	if err == nil && resp == nil {
		err = errors.New("responder returned no response")
	}
	if err != nil {
		err = fmt.Errorf("%s: %w: %w", selected.name(), ErrResponder, err)
		if c.level >= LevelError {
			c.logger.Error("responder failed",
				"case", selected.index,
				"method", req.Method,
				"uri", req.URIString(),
				"error", err)
		}
		c.record(req, selected, nil, err, nil, start)
		return nil, err
	}

	c.record(req, selected, resp, nil, nil, start)
	return resp, nil
}

// selectCase is the critical section of Dispatch: evaluation, eligibility
// and the counter increment happen under one lock. Outcomes are only
// returned when nothing was selected.
func (c *Connector) selectCase(req *mock.Request) (*Case, int, []mock.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcomes := make([]mock.Outcome, 0, len(c.cases))
	for _, cs := range c.cases {
		calls := cs.Calls()
		result := cs.Match(req)
		exhausted := cs.count.Exhausted(calls)
		if !exhausted && result.Full() {
			return cs, int(cs.calls.Add(1)), nil
		}
		outcomes = append(outcomes, mock.Outcome{
			Index:     cs.index,
			Label:     cs.label,
			Count:     cs.count,
			Calls:     calls,
			Exhausted: exhausted,
			Result:    result,
		})
	}
	return nil, 0, outcomes
}

// Checkpoint verifies every case's call count and reports all violations in
// one *CheckpointError. It only reads counters, so calling it repeatedly
// gives the same answer until more requests are dispatched.
func (c *Connector) Checkpoint() error {
	c.mu.Lock()
	var violations []mock.Violation
	for _, cs := range c.cases {
		calls := cs.Calls()
		if cs.count.Satisfied(calls) {
			continue
		}
		violations = append(violations, mock.Violation{
			Index:      cs.index,
			Label:      cs.label,
			Count:      cs.count,
			Calls:      calls,
			Predicates: cs.predicates,
		})
	}
	c.mu.Unlock()

	if len(violations) == 0 {
		return nil
	}
	err := &CheckpointError{Violations: violations}
	if c.level >= LevelError {
		c.logger.Error("checkpoint failed", "violations", len(violations), "report", err.Error())
	}
	return err
}

// Cases returns a consistent snapshot of every case in registration order.
func (c *Connector) Cases() []CaseState {
	c.mu.Lock()
	defer c.mu.Unlock()

	states := make([]CaseState, 0, len(c.cases))
	for _, cs := range c.cases {
		calls := cs.Calls()
		preds := make([]string, 0, len(cs.predicates))
		for _, p := range cs.predicates {
			preds = append(preds, p.Describe())
		}
		states = append(states, CaseState{
			Index:      cs.index,
			Label:      cs.label,
			Count:      cs.count,
			Calls:      calls,
			Satisfied:  cs.count.Satisfied(calls),
			Exhausted:  cs.count.Exhausted(calls),
			Predicates: preds,
		})
	}
	return states
}

// Calls returns the call count of the case at index, or 0 when there is no
// such case.
func (c *Connector) Calls(index int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.cases) {
		return 0
	}
	return c.cases[index].Calls()
}

// Requests lists journal entries, oldest first. It returns nil when the
// journal does not support reading.
func (c *Connector) Requests(filter *requestlog.Filter) []*requestlog.Entry {
	store, ok := c.journal.(requestlog.Store)
	if !ok {
		return nil
	}
	return store.List(filter)
}

func (c *Connector) record(req *mock.Request, selected *Case, resp *mock.Response, err error, outcomes []mock.Outcome, start time.Time) {
	if c.journal == nil {
		return
	}

	entry := &requestlog.Entry{
		ConnectorID: c.id,
		Method:      req.Method,
		URI:         req.URIString(),
		Path:        req.URI.EscapedPath(),
		QueryString: req.URI.RawQuery,
		Body:        requestlog.TruncateBody(req.Body),
		BodySize:    len(req.Body),
		MatchedCase: -1,
		DurationMs:  int(time.Since(start).Milliseconds()),
	}
	for _, h := range req.Header {
		entry.Headers = append(entry.Headers, requestlog.Header{Name: h.Name, Value: h.Value})
	}
	if selected != nil {
		entry.MatchedCase = selected.index
		entry.MatchedLabel = selected.label
	}
	if resp != nil {
		entry.ResponseStatus = resp.StatusCode()
	}
	if err != nil {
		entry.Error, _, _ = strings.Cut(err.Error(), "\n")
	}
	for _, o := range outcomes {
		entry.NearMisses = append(entry.NearMisses, requestlog.NearMissInfo{
			CaseIndex:  o.Index,
			CaseLabel:  o.Label,
			Exhausted:  o.Exhausted,
			Attributes: o.Result.Attributes(),
			Reason:     report.Summary(o),
		})
	}
	c.journal.Log(entry)
}
