// Package runtime holds the process-level plumbing shared by the CLI and the
// MCP server: logging, configuration resolution and tool invocation.
package runtime

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"
)

// Logger defines the structured logging interface.
type Logger interface {
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

// JSONLogger writes structured JSON log entries to an io.Writer. Fields whose
// key looks like a credential are masked.
type JSONLogger struct {
	mu      *sync.Mutex
	w       io.Writer
	verbose bool
	base    map[string]any
}

// NewJSONLogger creates a JSONLogger writing to w. Debug entries are only
// emitted when verbose is true.
func NewJSONLogger(w io.Writer, verbose bool) *JSONLogger {
	return &JSONLogger{mu: &sync.Mutex{}, w: w, verbose: verbose}
}

// With returns a logger that adds fields to every entry. The child shares
// the parent's writer and lock.
func (l *JSONLogger) With(fields map[string]any) *JSONLogger {
	base := make(map[string]any, len(l.base)+len(fields))
	for k, v := range l.base {
		base[k] = v
	}
	for k, v := range fields {
		base[k] = v
	}
	return &JSONLogger{mu: l.mu, w: l.w, verbose: l.verbose, base: base}
}

func (l *JSONLogger) Info(msg string, fields map[string]any)  { l.log("info", msg, fields) }
func (l *JSONLogger) Warn(msg string, fields map[string]any)  { l.log("warn", msg, fields) }
func (l *JSONLogger) Error(msg string, fields map[string]any) { l.log("error", msg, fields) }

func (l *JSONLogger) Debug(msg string, fields map[string]any) {
	if !l.verbose {
		return
	}
	l.log("debug", msg, fields)
}

func (l *JSONLogger) log(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(l.base)+len(fields)+3)
	for k, v := range l.base {
		entry[k] = redact(k, v)
	}
	for k, v := range fields {
		entry[k] = redact(k, v)
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = level
	entry["msg"] = msg

	l.mu.Lock()
	defer l.mu.Unlock()
	data, _ := json.Marshal(entry)
	data = append(data, '\n')
	l.w.Write(data) //nolint:errcheck
}

func redact(key string, v any) any {
	k := strings.ToLower(key)
	if strings.Contains(k, "token") || strings.Contains(k, "authorization") || strings.Contains(k, "secret") {
		return "[REDACTED]"
	}
	return v
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Info(string, map[string]any)  {}
func (NopLogger) Warn(string, map[string]any)  {}
func (NopLogger) Error(string, map[string]any) {}
func (NopLogger) Debug(string, map[string]any) {}
