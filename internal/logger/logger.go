package logger

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes one JSON object per line.
// Every entry carries "ts" (RFC3339Nano in the configured location) and "level".
// It is safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	loc *time.Location
}

// New returns a Logger writing to w. A nil loc means UTC.
func New(w io.Writer, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{w: w, loc: loc}
}

var std = New(os.Stdout, time.UTC)

// Default returns the process-wide logger writing to stdout.
func Default() *Logger { return std }

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	if l != nil {
		std = l
	}
}

// Location reports the time zone used for timestamps.
func (l *Logger) Location() *time.Location {
	if l == nil {
		return time.UTC
	}
	return l.loc
}

// Log writes data as-is, adding ts and deriving level from "status" when absent.
func (l *Logger) Log(data map[string]any) {
	if l == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		b, _ = json.Marshal(map[string]any{
			"ts":    data["ts"],
			"level": "error",
			"msg":   "log_marshal_failed",
			"error": err.Error(),
		})
	}
	b = append(b, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(b)
}

// Info logs msg at info level with the given fields.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.Log(entry("info", msg, fields))
}

// Error logs msg at error level; err, if any, is recorded under "error".
func (l *Logger) Error(msg string, err error, fields map[string]any) {
	e := entry("error", msg, fields)
	if err != nil {
		e["error"] = err.Error()
	}
	l.Log(e)
}

func entry(level, msg string, fields map[string]any) map[string]any {
	e := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		e[k] = v
	}
	e["level"] = level
	e["msg"] = msg
	return e
}
