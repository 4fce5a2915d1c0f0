// Package logging is the structured logger used by the server and the CLI.
// Everything logs through the Logger interface; SlogLogger backs it with
// log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger. Args are key-value pairs:
//
//	log.Warn(ctx, "request rejected", "reason", "expired_token", "transport", "http")
//
// Pairs attached to ctx with ContextWith are included as well.
type Logger interface {
	// Debug is for verbose diagnostics such as client state transitions.
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn is for recoverable trouble: a rejected token, a degraded store.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}
