package connector

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockconnector/pkg/mock"
)

func TestBuilder_RegisterAssignsSequentialIndexes(t *testing.T) {
	b := NewBuilder()
	a := mustRegister(t, b.Expect().Named("a").ReturningText("a"))
	c := mustRegister(t, b.Expect().ReturningText("c"))

	assert.Equal(t, 0, a.Index)
	assert.Equal(t, "a", a.Label)
	assert.Equal(t, 1, c.Index)
	assert.Equal(t, 2, b.Len())
}

func TestBuilder_NoCases(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.ErrorIs(t, err, ErrNoCases)
}

func TestBuilder_FrozenAfterBuild(t *testing.T) {
	b := NewBuilder()
	mustRegister(t, b.Expect().ReturningText("OK"))
	mustBuild(t, b)

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrFrozen)

	cb := b.Expect().ReturningText("late")
	assert.ErrorIs(t, cb.Err(), ErrFrozen)
	_, err = cb.Register()
	assert.ErrorIs(t, err, ErrFrozen)
}

func TestBuilder_RegisterAfterBuildFromEarlierExpect(t *testing.T) {
	b := NewBuilder()
	mustRegister(t, b.Expect().ReturningText("OK"))
	early := b.Expect().ReturningText("early")

	_, err := b.Build()
	require.ErrorIs(t, err, ErrNotRegistered)

	_, err = early.Register()
	assert.ErrorIs(t, err, ErrFrozen)
}

func TestBuilder_MissingResponse(t *testing.T) {
	b := NewBuilder()
	_, err := b.Expect().WithMethod("GET").Register()
	assert.ErrorIs(t, err, ErrNoResponse)

	_, err = b.Build()
	assert.ErrorIs(t, err, ErrNoResponse)
	assert.Contains(t, err.Error(), "expectation 0")
}

func TestBuilder_RegisterTwice(t *testing.T) {
	b := NewBuilder()
	cb := b.Expect().ReturningText("OK")
	first := mustRegister(t, cb)

	again, err := cb.Register()
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, first.Index, again.Index)
	assert.Equal(t, 1, b.Len())
}

func TestBuilder_ModifiedAfterRegister(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cb *CaseBuilder)
	}{
		{"with", func(cb *CaseBuilder) { cb.WithMethod("POST").WithHeader("X-A", "1") }},
		{"named", func(cb *CaseBuilder) { cb.Named("renamed") }},
		{"times", func(cb *CaseBuilder) { cb.Times(3) }},
		{"at least", func(cb *CaseBuilder) { cb.AtLeast(1) }},
		{"any times", func(cb *CaseBuilder) { cb.AnyTimes() }},
		{"returning", func(cb *CaseBuilder) { cb.ReturningText("other") }},
		{"returning func", func(cb *CaseBuilder) {
			cb.ReturningFunc(func(*mock.Request) (*mock.Response, error) { return mock.Text("x"), nil })
		}},
		{"returning json", func(cb *CaseBuilder) { cb.ReturningJSON(make(chan int)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			cb := b.Expect().WithMethod("GET").ReturningText("OK")
			h := mustRegister(t, cb)

			tt.modify(cb)
			assert.ErrorIs(t, cb.Err(), ErrAlreadyRegistered)
			assert.Equal(t, []mock.Predicate{mock.MethodEquals("GET")}, h.c.Predicates())
			assert.Empty(t, h.c.Label())

			_, err := b.Build()
			require.ErrorIs(t, err, ErrAlreadyRegistered)
			assert.Contains(t, err.Error(), "expectation 0: modified after Register")
			assert.Equal(t, 1, strings.Count(err.Error(), "modified after Register"))
		})
	}
}

func TestBuilder_ZeroPredicate(t *testing.T) {
	b := NewBuilder()
	_, err := b.Expect().With(mock.Predicate{}).ReturningText("x").Register()

	var ve *mock.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "predicate", ve.Field)

	_, err = b.Build()
	assert.ErrorAs(t, err, &ve)
}

func TestBuilder_InvalidArguments(t *testing.T) {
	tests := []struct {
		name  string
		build func(cb *CaseBuilder) *CaseBuilder
		field string
	}{
		{"bad method token", func(cb *CaseBuilder) *CaseBuilder { return cb.WithMethod("GE T") }, "method"},
		{"bad uri regex", func(cb *CaseBuilder) *CaseBuilder { return cb.WithURIRegex("(") }, "uri"},
		{"bad glob", func(cb *CaseBuilder) *CaseBuilder { return cb.WithURIGlob("/a/[") }, "uri"},
		{"bad header name", func(cb *CaseBuilder) *CaseBuilder { return cb.WithHeader("bad name", "v") }, "header"},
		{"bad json path", func(cb *CaseBuilder) *CaseBuilder { return cb.WithJSONPath("$[invalid", 1) }, "body"},
		{"bad expression", func(cb *CaseBuilder) *CaseBuilder { return cb.WithExpr("method ==") }, "expr"},
		{"negative times", func(cb *CaseBuilder) *CaseBuilder { return cb.Times(-1) }, "count"},
		{"negative at least", func(cb *CaseBuilder) *CaseBuilder { return cb.AtLeast(-2) }, "count"},
		{"bad status", func(cb *CaseBuilder) *CaseBuilder { return cb.ReturningStatus(42) }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			cb := tt.build(b.Expect()).ReturningText("OK")
			_, err := cb.Register()

			var ve *mock.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, err, cb.Err())
		})
	}
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	b := NewBuilder()
	cb := b.Expect().WithURIRegex("(").WithMethod("GE T").ReturningText("OK")

	var ve *mock.ValidationError
	require.ErrorAs(t, cb.Err(), &ve)
	assert.Equal(t, "uri", ve.Field)
}

func TestBuilder_Conflicts(t *testing.T) {
	tests := []struct {
		name  string
		build func(cb *CaseBuilder) *CaseBuilder
	}{
		{"two methods", func(cb *CaseBuilder) *CaseBuilder { return cb.WithMethod("GET").WithMethod("POST") }},
		{"two uris", func(cb *CaseBuilder) *CaseBuilder {
			return cb.WithURI("https://example.com/a").WithURI("https://example.com/b")
		}},
		{"two whole bodies", func(cb *CaseBuilder) *CaseBuilder {
			return cb.WithBody("a").WithJSON(map[string]any{"a": 1})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			_, err := tt.build(b.Expect()).ReturningText("OK").Register()
			assert.ErrorIs(t, err, mock.ErrConflict)
		})
	}
}

func TestBuilder_SamePredicateTwiceIsNotAConflict(t *testing.T) {
	b := NewBuilder()
	_, err := b.Expect().WithMethod("GET").WithMethod("GET").ReturningText("OK").Register()
	assert.NoError(t, err)
}

func TestBuilder_BuildJoinsEveryError(t *testing.T) {
	b := NewBuilder()
	mustRegister(t, b.Expect().ReturningText("good"))
	_, err1 := b.Expect().Named("bad-regex").WithURIRegex("(").ReturningText("x").Register()
	_, err2 := b.Expect().Named("no-response").WithMethod("GET").Register()
	b.Expect().Named("forgotten").ReturningText("x")
	require.Error(t, err1)
	require.Error(t, err2)

	conn, err := b.Build()
	require.Error(t, err)
	assert.Nil(t, conn)

	var ve *mock.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, ErrNoResponse)
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Contains(t, err.Error(), "expectation 1 (bad-regex)")
	assert.Contains(t, err.Error(), "expectation 2 (no-response)")
	assert.Contains(t, err.Error(), "expectation 3 (forgotten)")
	assert.False(t, errors.Is(err, ErrNoCases))
}

func TestBuilder_ReturningNil(t *testing.T) {
	b := NewBuilder()
	var resp *mock.Response
	_, err := b.Expect().Returning(resp).Register()
	assert.ErrorIs(t, err, ErrNoResponse)

	_, err = b.Expect().ReturningFunc(nil).Register()
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestBuilder_ReturningJSON(t *testing.T) {
	b := NewBuilder()
	mustRegister(t, b.Expect().ReturningJSON(map[string]string{"id": "7"}))
	_, err := b.Expect().ReturningJSON(make(chan int)).Register()
	assert.Error(t, err)

	b = NewBuilder()
	mustRegister(t, b.Expect().ReturningStatusJSON(201, []int{1, 2}))
	conn := mustBuild(t, b)

	resp, err := conn.Dispatch(request(t, "GET", "https://example.com/", ""))
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status)
	assert.Equal(t, "application/json", resp.Header.Get("content-type"))
	assert.JSONEq(t, "[1,2]", string(resp.Body))
}

func TestBuilder_CountShorthands(t *testing.T) {
	b := NewBuilder()
	once := b.Expect().Once()
	twice := b.Expect().Twice()
	atLeast := b.Expect().AtLeast(3)
	anyTimes := b.Expect().Times(4).AnyTimes()

	assert.Equal(t, mock.Times(1), once.count)
	assert.Equal(t, mock.Times(2), twice.count)
	assert.Equal(t, mock.AtLeast(3), atLeast.count)
	assert.Equal(t, mock.AnyTimes(), anyTimes.count)
	assert.Equal(t, mock.AnyTimes(), b.Expect().count, "unbounded by default")
}
