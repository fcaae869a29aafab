package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// LogEntry is one captured log record, reduced to what the TTY pane shows.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Source  string
}

// LogBuffer is a fixed-capacity ring of log entries, safe for concurrent
// use: the slog handler appends from wherever logging happens while the
// render loop reads the newest entries each frame.
type LogBuffer struct {
	entries []LogEntry
	size    int
	index   int // next write position
	count   int
	mutex   sync.RWMutex
}

// NewLogBuffer creates a ring holding up to size entries.
func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{
		entries: make([]LogEntry, size),
		size:    size,
	}
}

// Add inserts entry, evicting the oldest once the ring is full.
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	lb.entries[lb.index] = entry
	lb.index = (lb.index + 1) % lb.size
	if lb.count < lb.size {
		lb.count++
	}
}

// GetRecent returns up to maxCount entries, newest first. maxCount <= 0
// returns everything buffered.
func (lb *LogBuffer) GetRecent(maxCount int) []LogEntry {
	lb.mutex.RLock()
	defer lb.mutex.RUnlock()

	if lb.count == 0 {
		return nil
	}

	count := lb.count
	if maxCount > 0 && maxCount < count {
		count = maxCount
	}

	result := make([]LogEntry, count)
	for i := 0; i < count; i++ {
		result[i] = lb.entries[(lb.index-1-i+lb.size)%lb.size]
	}

	return result
}

// Clear empties the ring.
func (lb *LogBuffer) Clear() {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	lb.count = 0
	lb.index = 0
}

// LogBufferHandler is a slog.Handler that routes records into a LogBuffer,
// so log output can be shown inside the same TTY session that is rendering
// the framebuffer (writing to stderr would corrupt the screen).
type LogBufferHandler struct {
	buffer *LogBuffer
	level  slog.Level
}

func NewLogBufferHandler(buffer *LogBuffer, level slog.Level) *LogBufferHandler {
	return &LogBufferHandler{
		buffer: buffer,
		level:  level,
	}
}

func (h *LogBufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle flattens the record's attributes into the message text; the pane
// renders plain lines, not structured fields.
func (h *LogBufferHandler) Handle(_ context.Context, record slog.Record) error {
	source := ""
	if record.PC != 0 {
		source = "app"
	}

	message := record.Message
	record.Attrs(func(a slog.Attr) bool {
		message += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	h.buffer.Add(LogEntry{
		Time:    record.Time,
		Level:   record.Level,
		Message: message,
		Source:  source,
	})
	return nil
}

// WithAttrs is a no-op: attributes are flattened per record in Handle.
func (h *LogBufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

// WithGroup is a no-op for the same reason.
func (h *LogBufferHandler) WithGroup(name string) slog.Handler {
	return h
}

// FormatLogEntry renders one entry as the single line the log pane draws.
func FormatLogEntry(entry LogEntry) string {
	var level string
	switch entry.Level {
	case slog.LevelDebug:
		level = "DBG"
	case slog.LevelInfo:
		level = "INF"
	case slog.LevelWarn:
		level = "WRN"
	case slog.LevelError:
		level = "ERR"
	default:
		level = "???"
	}

	return fmt.Sprintf("%s [%s] %s", entry.Time.Format("15:04:05"), level, entry.Message)
}
