package connector

import (
	"log/slog"

	"github.com/getmockd/mockconnector/pkg/logging"
	"github.com/getmockd/mockconnector/pkg/requestlog"
)

// DefaultMaxRequests bounds the default request journal.
const DefaultMaxRequests = 1000

type options struct {
	logger  *slog.Logger
	level   Level
	journal requestlog.Logger
}

func defaultOptions() options {
	return options{
		logger:  logging.Nop(),
		level:   DefaultLevel,
		journal: requestlog.NewMemoryStore(DefaultMaxRequests),
	}
}

// Option configures a Builder and the Connector it builds.
type Option func(*options)

// WithLogger sets the logger used for diagnostics. A nil logger disables
// logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = logging.Nop()
		}
		o.logger = logger
	}
}

// WithLevel sets which diagnostics are logged.
func WithLevel(level Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithRequestLog replaces the in-memory request journal. When the logger
// also implements requestlog.Store, Connector.Requests reads from it. A nil
// logger disables the journal.
func WithRequestLog(l requestlog.Logger) Option {
	return func(o *options) {
		o.journal = l
	}
}
