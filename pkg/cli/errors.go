package cli

import "errors"

// Common CLI errors
var (
	ErrNoFixtures = errors.New("no fixture files given")
	ErrNoMatch    = errors.New("request did not match any case")
	ErrUnverified = errors.New("expectations were not met")
)

// exitError carries a process exit code for a failure that has already
// been reported to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func reported(err error) error {
	return &exitError{code: 1, err: err}
}
