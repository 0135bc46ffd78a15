package testing

import (
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/getmockd/mockconnector/pkg/connector"
	"github.com/getmockd/mockconnector/pkg/logging"
)

// Mock wraps a connector for use in a single test. Cases are registered
// with Expect or Mock; the connector is built the first time Connector,
// Transport or Client is called. When the test finishes, Mock verifies every
// case's call count and reports violations with t.Error.
type Mock struct {
	t       testing.TB
	builder *connector.Builder

	mu     sync.Mutex
	conn   *connector.Connector
	failed bool
}

// New creates a Mock for t. Diagnostics are written to the test log at WARN
// level unless opts configure another logger.
func New(t testing.TB, opts ...connector.Option) *Mock {
	t.Helper()

	logger := logging.New(logging.Config{
		Level:  logging.LevelWarn,
		Output: logging.LineWriter(func(line string) { t.Log(line) }),
	})
	opts = append([]connector.Option{connector.WithLogger(logger)}, opts...)

	m := &Mock{
		t:       t,
		builder: connector.NewBuilder(opts...),
	}
	t.Cleanup(m.verifyOnCleanup)
	return m
}

// Expect starts a case. Pass it to Register once it is configured, or call
// its Register method directly.
func (m *Mock) Expect() *connector.CaseBuilder {
	m.t.Helper()
	if m.isBuilt() {
		m.t.Fatalf("Expect called after the connector was built")
	}
	return m.builder.Expect()
}

// Register registers cb and fails the test if the case is invalid.
func (m *Mock) Register(cb *connector.CaseBuilder) connector.CaseHandle {
	m.t.Helper()
	h, err := cb.Register()
	if err != nil {
		m.mu.Lock()
		m.failed = true
		m.mu.Unlock()
		m.t.Fatalf("registering case: %v", err)
	}
	return h
}

// Connector builds the connector on first use and returns it. Building
// fails the test when a case is invalid or none was registered.
func (m *Mock) Connector() *connector.Connector {
	m.t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		return m.conn
	}
	conn, err := m.builder.Build()
	if err != nil {
		m.failed = true
		m.t.Fatalf("building connector: %v", err)
	}
	m.conn = conn
	return conn
}

// Transport returns the connector as an http.RoundTripper.
func (m *Mock) Transport() http.RoundTripper {
	m.t.Helper()
	return m.Connector()
}

// Client returns an *http.Client that sends every request to the connector.
func (m *Mock) Client() *http.Client {
	m.t.Helper()
	return m.Connector().Client()
}

// Verify checks call counts now instead of waiting for cleanup.
func (m *Mock) Verify() {
	m.t.Helper()
	if err := m.Connector().Checkpoint(); err != nil {
		m.t.Error(err)
	}
}

func (m *Mock) isBuilt() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

func (m *Mock) verifyOnCleanup() {
	m.mu.Lock()
	conn, failed := m.conn, m.failed
	m.mu.Unlock()

	// Registration or build failures were already reported.
	if failed {
		return
	}
	if conn == nil {
		// Cases started but never exercised still have to be verified.
		if m.builder.Started() == 0 {
			return
		}
		var err error
		if conn, err = m.builder.Build(); err != nil {
			m.t.Errorf("building connector: %v", err)
			return
		}
	}
	if err := conn.Checkpoint(); err != nil {
		m.t.Error(err)
	}
}

// Requests returns every request the connector received, oldest first.
func (m *Mock) Requests() []RequestLog {
	m.t.Helper()

	entries := m.Connector().Requests(nil)
	result := make([]RequestLog, len(entries))
	for i, e := range entries {
		headers := make(map[string]string)
		for _, h := range e.Headers {
			if _, ok := headers[h.Name]; !ok {
				headers[h.Name] = h.Value
			}
		}
		result[i] = RequestLog{
			Method:       e.Method,
			URI:          e.URI,
			Path:         e.Path,
			Headers:      headers,
			Body:         e.Body,
			QueryString:  e.QueryString,
			MatchedCase:  e.MatchedCase,
			MatchedLabel: e.MatchedLabel,
		}
	}
	return result
}

// AssertCalled asserts that method and path were requested at least once.
func (m *Mock) AssertCalled(t testing.TB, method, path string) {
	t.Helper()

	count := m.countCalls(method, path)
	if count == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
	}
}

// AssertCalledTimes asserts that method and path were requested exactly n
// times.
func (m *Mock) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()

	count := m.countCalls(method, path)
	if count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that method and path were never requested.
func (m *Mock) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()

	count := m.countCalls(method, path)
	if count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}

// countCalls counts requests, matched or not, for a method and path.
func (m *Mock) countCalls(method, path string) int {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return 0
	}

	count := 0
	for _, e := range conn.Requests(nil) {
		if strings.EqualFold(e.Method, method) && matchesPath(e.Path, path) {
			count++
		}
	}
	return count
}

// matchesPath checks if a request path matches the expected path pattern.
// Segments written as {name} match any value.
func matchesPath(actual, expected string) bool {
	if actual == expected {
		return true
	}

	actualParts := strings.Split(actual, "/")
	expectedParts := strings.Split(expected, "/")
	if len(actualParts) != len(expectedParts) {
		return false
	}

	for i, exp := range expectedParts {
		if strings.HasPrefix(exp, "{") && strings.HasSuffix(exp, "}") {
			continue
		}
		if exp != actualParts[i] {
			return false
		}
	}
	return true
}
