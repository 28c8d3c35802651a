// Package logging assembles structured slog loggers and formatting helpers used
// across mapassist.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes helpers so engines tag log lines with their component,
// the dialect and document being processed, and the run identifier carried on
// the context. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
package logging
