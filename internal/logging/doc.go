// Package logging assembles the structured slog loggers used across
// backlogtimer.
//
// It owns the console and JSON handlers, routes console output to stderr so
// command output on stdout stays machine-readable, optionally mirrors every
// record as JSON into a log file, and exposes context-aware helpers that tag
// lines with the scan run ID and the backlog item being enriched. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
