package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

var (
	outMu sync.RWMutex
	out   io.Writer
)

// SetOutput redirects log lines to w. A nil writer restores stdout.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	out = w
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(slog.LevelInfo, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(slog.LevelWarn, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(slog.LevelError, msg, fields)
}

func writer() io.Writer {
	outMu.RLock()
	defer outMu.RUnlock()
	if out != nil {
		return out
	}
	return os.Stdout
}

func write(level slog.Level, msg string, fields map[string]any) {
	handler := slog.NewJSONHandler(writer(), &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	})
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		attrs = append(attrs, slog.Any(k, v))
	}
	slog.New(handler).LogAttrs(context.Background(), level, msg, attrs...)
}

// replaceAttr keeps the historical ts/level/msg keys and lowercases levels.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339))
	case slog.LevelKey:
		level, _ := a.Value.Any().(slog.Level)
		switch {
		case level >= slog.LevelError:
			return slog.String("level", "error")
		case level >= slog.LevelWarn:
			return slog.String("level", "warn")
		default:
			return slog.String("level", "info")
		}
	}
	return a
}
