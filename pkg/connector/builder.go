package connector

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Builder collects cases in registration order. It is safe for concurrent
// use, but registration order then follows the order Register calls
// complete. A Builder cannot be reused after Build.
type Builder struct {
	mu      sync.Mutex
	opts    options
	cases   []*Case
	pending []*CaseBuilder
	errs    []error
	started int
	built   bool
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Builder{opts: o}
}

// Expect starts a new case. The case takes effect when Register is called.
func (b *Builder) Expect() *CaseBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()

	cb := &CaseBuilder{builder: b, seq: b.started}
	b.started++
	if b.built {
		cb.setError(ErrFrozen)
		return cb
	}
	b.pending = append(b.pending, cb)
	return cb
}

// Len returns the number of registered cases.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.cases)
}

// Started returns the number of cases started with Expect, registered or
// not.
func (b *Builder) Started() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// Build freezes the builder and returns the connector. It reports every
// error recorded while registering, plus cases that were started but never
// registered, joined into one error. The builder is frozen even when Build
// fails.
func (b *Builder) Build() (*Connector, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return nil, ErrFrozen
	}
	b.built = true

	errs := append([]error(nil), b.errs...)
	for _, cb := range b.pending {
		if !cb.registered {
			errs = append(errs, fmt.Errorf("%s: %w", cb.name(), ErrNotRegistered))
		}
	}
	b.pending = nil
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(b.cases) == 0 {
		return nil, ErrNoCases
	}

	conn := &Connector{
		id:      uuid.NewString(),
		cases:   b.cases,
		logger:  b.opts.logger,
		level:   b.opts.level,
		journal: b.opts.journal,
	}
	conn.logger = conn.logger.With("connector", conn.id)
	conn.logger.Debug("connector built", "cases", len(conn.cases))
	return conn, nil
}

// register appends a case under the builder lock.
func (b *Builder) register(cb *CaseBuilder) (CaseHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return CaseHandle{}, ErrFrozen
	}
	if cb.registered {
		return cb.handle, ErrAlreadyRegistered
	}
	cb.registered = true

	err := cb.err
	if err == nil && cb.responder == nil {
		err = ErrNoResponse
	}
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("%s: %w", cb.name(), err))
		return CaseHandle{}, err
	}

	c := &Case{
		index:      len(b.cases),
		label:      cb.label,
		predicates: cb.predicates,
		responder:  cb.responder,
		count:      cb.count,
	}
	b.cases = append(b.cases, c)
	cb.handle = CaseHandle{Index: c.index, Label: c.label, c: c}
	return cb.handle, nil
}
