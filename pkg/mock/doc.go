// Package mock defines the values a connector works with: the captured
// Request, the Response handed back to the client, the closed set of
// Predicate kinds used to recognize requests, and the outcome records that
// reports are rendered from.
//
// Predicates are constructed with the functions in this package
// (Method, URI, Header, JSON, ...). A constructor never panics; an invalid
// argument yields a Predicate whose Err method returns a *ValidationError,
// which the connector builder surfaces at registration time.
package mock
