// Package mocklogger provides a slog.Logger that records everything it is
// given, so tests can assert on emitted log messages and levels.
package mocklogger

import (
	"context"
	"log/slog"
	"sync"
)

// Handler is an slog.Handler that stores records in memory.
type Handler struct {
	mu      sync.Mutex
	records []slog.Record
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(_ string) slog.Handler {
	return h
}

// Messages returns the messages of all recorded log entries in order.
func (h *Handler) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.records))
	for i, r := range h.records {
		out[i] = r.Message
	}
	return out
}

// Levels returns the levels of all recorded log entries in order.
func (h *Handler) Levels() []slog.Level {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]slog.Level, len(h.records))
	for i, r := range h.records {
		out[i] = r.Level
	}
	return out
}

// New returns a logger backed by a recording handler, plus the handler for
// inspection.
func New() (*slog.Logger, *Handler) {
	h := &Handler{}
	return slog.New(h), h
}

// NewLogger returns just the logger for callers that do not need to inspect
// the records.
func NewLogger() *slog.Logger {
	l, _ := New()
	return l
}
