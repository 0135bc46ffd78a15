// Package cli provides the command-line interface for mockconnector.
//
// The commands work on expectation fixtures loaded by package config:
//   - validate: Check fixtures load and build into a connector
//   - list: Display the cases a set of fixtures registers
//   - match: Dispatch one request and print the response or mismatch report
//   - verify: Replay a request script, then check every call count
//   - version: Show mockconnector version
//
// Persistent flags select the log level and format, the connector's
// diagnostic level and JSON output.
package cli
