// Package logging builds the structured slog loggers used across paralyze.
//
// It owns handler selection (text for terminals, JSON for servers), level
// parsing, the standard field keys, and a no-op logger for tests and wiring
// code that cannot fail.
package logging
