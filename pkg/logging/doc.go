// Package logging provides structured logging configuration for
// mockconnector.
//
// This package wraps log/slog so the connector, the test helpers and the
// CLI log the same way. It supports configurable log levels and output
// formats.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatText,
//	})
//	b := connector.NewBuilder(connector.WithLogger(logger))
//
// # Output Formats
//
//   - Text: Human-readable format for development
//   - JSON: Structured format for log aggregation systems
//
// # Integration
//
// Components accept a *slog.Logger through an option. If no logger is
// provided, they use logging.Nop().
package logging
