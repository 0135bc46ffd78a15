package testing

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/getmockd/mockconnector/pkg/connector"
	"github.com/getmockd/mockconnector/pkg/mock"
)

// Mock starts a case matching method and target. A target starting with
// "/" is a doublestar pattern over the path; anything else must equal the
// full URI.
//
//	m.Register(m.Mock("GET", "/users/*").ReturningJSON(user))
func (m *Mock) Mock(method, target string) *connector.CaseBuilder {
	m.t.Helper()
	cb := m.Expect().WithMethod(method)
	if strings.HasPrefix(target, "/") {
		return cb.WithURIGlob(target)
	}
	return cb.WithURI(target)
}

// Response helpers for ReturningFunc-free setups:
//
//	m.Register(m.Mock("GET", "/missing").Returning(mtesting.NotFound()))

// NotFound is a 404 response with a JSON error body.
func NotFound() *mock.Response {
	return errorResponse(http.StatusNotFound, "not_found")
}

// BadRequest is a 400 response with a JSON error body.
func BadRequest(message string) *mock.Response {
	return errorResponse(http.StatusBadRequest, message)
}

// ServerError is a 500 response with a JSON error body.
func ServerError(message string) *mock.Response {
	return errorResponse(http.StatusInternalServerError, message)
}

// Unauthorized is a 401 response with a JSON error body.
func Unauthorized() *mock.Response {
	return errorResponse(http.StatusUnauthorized, "unauthorized")
}

// Forbidden is a 403 response with a JSON error body.
func Forbidden() *mock.Response {
	return errorResponse(http.StatusForbidden, "forbidden")
}

// Created is a 201 response with body encoded as JSON. It returns nil when
// body cannot be encoded, which Returning reports as a missing response.
func Created(body any) *mock.Response {
	resp, err := mock.JSON(http.StatusCreated, body)
	if err != nil {
		return nil
	}
	return resp
}

// NoContent is an empty 204 response.
func NoContent() *mock.Response {
	return mock.Status(http.StatusNoContent)
}

// Accepted is an empty 202 response.
func Accepted() *mock.Response {
	return mock.Status(http.StatusAccepted)
}

func errorResponse(code int, message string) *mock.Response {
	// Marshaling a map of strings cannot fail.
	body, _ := json.Marshal(map[string]string{"error": message})
	return &mock.Response{
		Status: code,
		Header: mock.Headers{{Name: "Content-Type", Value: "application/json"}},
		Body:   body,
	}
}
