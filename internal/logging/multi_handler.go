package logging

import (
	"context"
	"log/slog"
)

// MultiHandler duplicates each record to every configured sink. The
// stdout sink sees everything at INFO+; the Postgres sink filters down to
// ERROR via its own Enabled.
type MultiHandler struct {
	sinks []slog.Handler
}

func NewMultiHandler(sinks ...slog.Handler) *MultiHandler {
	return &MultiHandler{sinks: sinks}
}

// Enabled reports true when any sink wants the level, so a record is
// never dropped before each sink gets its own say in Handle.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range m.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, s := range m.sinks {
		if s.Enabled(ctx, record.Level) {
			if err := s.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sinks := make([]slog.Handler, len(m.sinks))
	for i, s := range m.sinks {
		sinks[i] = s.WithAttrs(attrs)
	}
	return &MultiHandler{sinks: sinks}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	sinks := make([]slog.Handler, len(m.sinks))
	for i, s := range m.sinks {
		sinks[i] = s.WithGroup(name)
	}
	return &MultiHandler{sinks: sinks}
}
