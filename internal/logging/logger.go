// Package logging wires this service's slog sinks: JSON lines on stdout
// always, fanned out through MultiHandler to the async Postgres sink
// (PGHandler) when the SQL storage backend is active. PGHandler batches
// ERROR records into the system_logs table; StartCleanup trims that table
// on a 30-day retention.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs the stdout JSON handler as the process default. main
// swaps in the multi-handler fan-out once the database is up.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
