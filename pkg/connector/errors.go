package connector

import (
	"errors"

	"github.com/getmockd/mockconnector/pkg/mock"
	"github.com/getmockd/mockconnector/pkg/report"
)

// Sentinel errors for connector operations.
var (
	// ErrNoMatch is matched by *NoMatchError.
	ErrNoMatch = errors.New("no case matched the request")

	// ErrCheckpoint is matched by *CheckpointError.
	ErrCheckpoint = errors.New("checkpoint failed")

	// ErrFrozen is returned when a builder is used after Build.
	ErrFrozen = errors.New("builder already built")

	// ErrNoCases is returned by Build when nothing was registered.
	ErrNoCases = errors.New("no cases registered")

	// ErrNoResponse is returned by Register when no response was configured.
	ErrNoResponse = errors.New("no response configured")

	// ErrAlreadyRegistered is returned when Register is called twice on the
	// same case builder, and recorded when a registered case is modified.
	ErrAlreadyRegistered = errors.New("case already registered")

	// ErrNotRegistered is reported by Build for case builders that were
	// started with Expect but never registered.
	ErrNotRegistered = errors.New("case was never registered")

	// ErrResponder wraps errors returned by response generators.
	ErrResponder = errors.New("responder failed")
)

// NoMatchError is returned by Dispatch when no case accepted the request.
// Its message is the full mismatch report.
type NoMatchError struct {
	Request  *mock.Request
	Outcomes []mock.Outcome
}

func (e *NoMatchError) Error() string {
	return report.NoMatch(e.Request, e.Outcomes)
}

// Is makes errors.Is(err, ErrNoMatch) hold.
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// CheckpointError lists every case whose call count is unsatisfied.
type CheckpointError struct {
	Violations []mock.Violation
}

func (e *CheckpointError) Error() string {
	return report.Checkpoint(e.Violations)
}

// Is makes errors.Is(err, ErrCheckpoint) hold.
func (e *CheckpointError) Is(target error) bool {
	return target == ErrCheckpoint
}
