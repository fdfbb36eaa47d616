package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log entry with its attributes flattened,
// including those bound through Logger.With
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is a slog handler that keeps every record for assertions
type LogCapture struct {
	mu      *sync.Mutex
	records *[]LogRecord
	bound   []slog.Attr
	group   string
}

// NewLogCapture returns a logger writing into a fresh capture
func NewLogCapture() (*slog.Logger, *LogCapture) {
	h := &LogCapture{mu: &sync.Mutex{}, records: &[]LogRecord{}}
	return slog.New(h), h
}

// Enabled implements slog.Handler
func (h *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (h *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.bound)+r.NumAttrs())
	for _, a := range h.bound {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.key(a.Key)] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler
func (h *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.bound = append([]slog.Attr{}, h.bound...)
	for _, a := range attrs {
		next.bound = append(next.bound, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	return &next
}

// WithGroup implements slog.Handler
func (h *LogCapture) WithGroup(name string) slog.Handler {
	next := *h
	next.group = h.key(name)
	return &next
}

func (h *LogCapture) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// Records returns a copy of everything captured so far
func (h *LogCapture) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LogRecord(nil), *h.records...)
}

// Find returns the records at level whose message contains message
func (h *LogCapture) Find(level slog.Level, message string) []LogRecord {
	var found []LogRecord
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			found = append(found, r)
		}
	}
	return found
}

// AssertLogged fails t unless a record at level contains message and
// carries every attribute in attrs
func AssertLogged(t *testing.T, h *LogCapture, level slog.Level, message string, attrs map[string]any) {
	t.Helper()

	for _, r := range h.Find(level, message) {
		if hasAttrs(r, attrs) {
			return
		}
	}
	t.Errorf("no %s record %q with %v", level, message, attrs)
	for _, r := range h.Records() {
		t.Logf("  [%s] %s %v", r.Level, r.Message, r.Attrs)
	}
}

// AssertNotLogged fails t if any record at level or above was captured
func AssertNotLogged(t *testing.T, h *LogCapture, level slog.Level) {
	t.Helper()

	for _, r := range h.Records() {
		if r.Level >= level {
			t.Errorf("unexpected [%s] %s %v", r.Level, r.Message, r.Attrs)
		}
	}
}

func hasAttrs(r LogRecord, attrs map[string]any) bool {
	for k, v := range attrs {
		if got, ok := r.Attrs[k]; !ok || got != v {
			return false
		}
	}
	return true
}
