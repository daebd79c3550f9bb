// Package logging assembles the structured slog loggers used across crate.
//
// It owns the console and JSON handlers, centralizes level parsing, and
// exposes a no-op logger plus a component-tagging constructor so subsystems
// emit lines with the same shape. Prefer these constructors over hand-rolled
// slog setup.
package logging
