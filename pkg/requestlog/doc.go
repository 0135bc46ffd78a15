// Package requestlog captures the requests a connector has seen so tests
// can inspect them after the fact.
//
// It is distinct from operational logging (which uses log/slog). Every
// dispatch, matched or not, becomes an Entry recording the request, the
// case that accepted it (or -1) and, for unmatched requests, a one-line
// near-miss summary per case.
//
//	store := requestlog.NewMemoryStore(1000)
//	conn, _ := b.Build() // built with connector.WithRequestLog(store)
//	...
//	for _, e := range store.List(&requestlog.Filter{Method: "POST"}) {
//	    fmt.Println(e.URI, e.MatchedCase)
//	}
//
// This is a leaf package with no internal dependencies.
package requestlog
