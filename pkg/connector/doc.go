// Package connector provides an http.RoundTripper that answers requests from
// a list of registered expectations instead of the network.
//
// A test registers ordered cases on a Builder, builds a Connector, hands
// Connector.Client (or the Connector itself as a transport) to the code
// under test, and finally calls Checkpoint to verify that every case was
// called the expected number of times.
//
// # Usage
//
//	b := connector.NewBuilder()
//	b.Expect().
//	    WithMethod("GET").
//	    WithURI("https://example.com/test").
//	    Once().
//	    ReturningText("OK").
//	    Register()
//
//	conn, err := b.Build()
//	if err != nil {
//	    t.Fatal(err)
//	}
//	client := conn.Client()
//	// ... exercise the client ...
//	if err := conn.Checkpoint(); err != nil {
//	    t.Error(err)
//	}
//
// # Matching
//
// Cases are evaluated in registration order and the first case whose
// predicates all hold wins. A case registered with Times(n) stops accepting
// requests after n calls. When nothing matches, Dispatch returns a
// *NoMatchError whose message explains, case by case, which attributes of
// the request disagreed.
//
// # Concurrency
//
// A Connector is safe for concurrent use. Case selection and the call
// counter update happen under one lock; responders run outside it.
package connector
