// Package logging provides slog helpers shared across the codebase.
//
// It defines the common attribute keys used in structured log output so that
// operations, tools and accounts are named consistently, and small utilities
// for logging credential material without leaking it (token sanitizing,
// email anonymization).
package logging
