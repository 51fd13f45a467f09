package testutil

import "log/slog"

// DiscardLogger returns a logger that drops everything. Handlers require a
// non-nil logger; tests rarely want the output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
