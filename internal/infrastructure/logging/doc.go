// Package logging provides structured logging for the homegrid agent.
//
// It wraps the standard library's log/slog with configuration-driven level
// and format selection, plus default service/version attributes on every
// record. Components that need logging accept a small Logger interface of
// their own rather than importing this package directly.
package logging
