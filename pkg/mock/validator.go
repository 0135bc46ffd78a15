package mock

import (
	"errors"
	"fmt"
)

// ValidationError represents an invalid predicate or request argument.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// ErrConflict is matched by errors describing predicates no request can
// satisfy together.
var ErrConflict = errors.New("conflicting predicates")

// ConflictError names the two predicates that cannot hold together.
type ConflictError struct {
	First  Predicate
	Second Predicate
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting predicates: %s and %s", e.First, e.Second)
}

// Is makes errors.Is(err, ErrConflict) hold.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Validate returns the first construction error among predicates, then the
// first conflicting pair.
func Validate(predicates []Predicate) error {
	for _, p := range predicates {
		if err := p.Err(); err != nil {
			return err
		}
	}
	for i, p := range predicates {
		for _, q := range predicates[i+1:] {
			if p.ConflictsWith(q) {
				return &ConflictError{First: p, Second: q}
			}
		}
	}
	return nil
}
