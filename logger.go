package arena

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with arena-specific fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithArena adds the arena ID field to the logger.
func (l *Logger) WithArena(id ID) *Logger {
	return &Logger{
		Logger: l.Logger.With("arena", id.String()),
	}
}

// LogChunk logs a chunk added to an arena.
func (l *Logger) LogChunk(size int, offHeap bool) {
	l.Debug("arena chunk added",
		"size", size,
		"off_heap", offHeap,
	)
}

// LogLifecycle logs a pool lifecycle event.
func (l *Logger) LogLifecycle(event string, m ArenaMetrics) {
	l.Debug("arena "+event,
		"in_use", m.SizeInUse,
		"capacity", m.Capacity,
		"chunks", m.NumChunks,
		"typed_in_use", m.TypedInUse,
	)
}

// LogGuardOrder logs a guard released out of stack order.
func (l *Logger) LogGuardOrder(id ID, depth, scopeDepth int) {
	l.Warn("guard released out of order",
		"arena", id.String(),
		"guard_depth", depth,
		"scope_depth", scopeDepth,
	)
}
