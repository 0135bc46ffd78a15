package requestlog

// Logger is the minimal interface for recording entries. The connector
// accepts it so any sink can receive its journal.
type Logger interface {
	Log(entry *Entry)
}

// Store defines the interface for request history storage.
type Store interface {
	Logger

	// Get retrieves an entry by ID.
	Get(id string) *Entry

	// List returns entries oldest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries.
	Count() int
}

// Filter defines criteria for listing entries. Zero fields match anything.
type Filter struct {
	// Method filters by exact request method.
	Method string

	// Path filters by path prefix.
	Path string

	// MatchedCase filters by accepting case index; -1 selects unmatched
	// requests.
	MatchedCase *int

	// StatusCode filters by response status code.
	StatusCode int

	// HasError filters by error presence.
	HasError *bool

	// Limit is the maximum number of entries to return.
	Limit int

	// Offset is the number of entries to skip.
	Offset int
}

// CaseIndex returns a pointer for Filter.MatchedCase.
func CaseIndex(i int) *int {
	return &i
}
