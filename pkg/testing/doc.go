// Package testing provides helpers for using mockconnector in Go tests.
//
// New wraps a connector builder around a testing.TB: cases are registered
// with the connector's fluent API, the connector is built on first use, and
// call counts are verified automatically when the test finishes.
//
// # Basic Usage
//
//	func TestFetchUser(t *testing.T) {
//	    m := mtesting.New(t)
//	    m.Register(m.Mock("GET", "/users/123").
//	        Once().
//	        ReturningJSON(map[string]string{"id": "123"}))
//
//	    api := NewAPIClient("https://api.example.com", m.Client())
//	    user, err := api.FetchUser("123")
//	    // ...
//	}
//
// A request that matches no case fails at the transport with a report
// naming, case by case, the attributes that disagreed. The same report is
// written to the test log.
//
// # Assertions
//
// Every request is journaled, matched or not:
//
//	m.AssertCalledTimes(t, "GET", "/users/{id}", 1)
//	req := m.Requests()[0]
//	req.AssertHeader(t, "Accept", "application/json")
//
// # Response Helpers
//
// NotFound, BadRequest, ServerError, Unauthorized, Forbidden, Created,
// NoContent and Accepted build common responses for Returning.
package testing
