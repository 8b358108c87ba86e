// Package logging constructs the process-wide slog logger with a compact
// console handler or a JSON handler. Per-item progress lines are not log
// records; they are emitted by the progress reporter.
package logging
