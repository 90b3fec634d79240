// Package logging provides leveled structured logging with correlation IDs
// carried through context, so that every log line of one lookup can be tied
// back to the request that started it.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// Logger is a leveled logger with optional JSON output.
type Logger struct {
	mu     sync.Mutex
	output io.Writer
	level  Level
	json   bool
	fields map[string]any
}

// Entry is the JSON form of a single log line.
type Entry struct {
	Timestamp     string         `json:"ts"`
	Level         string         `json:"level"`
	Message       string         `json:"msg"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Fields        map[string]any `json:"fields,omitempty"`
}

var defaultLogger = New()

// New creates a logger configured from LOG_LEVEL and LOG_FORMAT.
func New() *Logger {
	return &Logger{
		output: os.Stderr,
		level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		json:   os.Getenv("LOG_FORMAT") == "json",
		fields: make(map[string]any),
	}
}

// SetOutput sets the output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetLevel sets the minimum level that will be written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetJSON toggles JSON output.
func (l *Logger) SetJSON(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.json = enabled
}

// WithFields returns a new logger that includes fields on every entry.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &Logger{
		output: l.output,
		level:  l.level,
		json:   l.json,
		fields: merged,
	}
}

func (l *Logger) log(ctx context.Context, level Level, format string, args ...any) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	var correlationID string
	if ctx != nil {
		if id, ok := ctx.Value(correlationIDKey).(string); ok {
			correlationID = id
		}
	}

	if l.json {
		entry := Entry{
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			Level:         level.String(),
			Message:       msg,
			CorrelationID: correlationID,
		}
		if len(l.fields) > 0 {
			entry.Fields = l.fields
		}
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.output, "ERROR: failed to marshal log entry: %v\n", err)
			return
		}
		fmt.Fprintln(l.output, string(data))
		return
	}

	parts := make([]string, 0, 4)
	if correlationID != "" {
		short := correlationID
		if len(short) > 8 {
			short = short[:8]
		}
		parts = append(parts, fmt.Sprintf("[%s]", short))
	}
	parts = append(parts, fmt.Sprintf("[%s]", level.String()), msg)
	if len(l.fields) > 0 {
		fieldParts := make([]string, 0, len(l.fields))
		for k, v := range l.fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("{%s}", strings.Join(fieldParts, ", ")))
	}

	timestamp := time.Now().Format("2006/01/02 15:04:05")
	fmt.Fprintf(l.output, "%s %s\n", timestamp, strings.Join(parts, " "))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) { l.log(nil, LevelDebug, format, args...) }

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) { l.log(nil, LevelInfo, format, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) { l.log(nil, LevelWarn, format, args...) }

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) { l.log(nil, LevelError, format, args...) }

// DebugContext logs a debug message with the context's correlation ID.
func (l *Logger) DebugContext(ctx context.Context, format string, args ...any) {
	l.log(ctx, LevelDebug, format, args...)
}

// InfoContext logs an info message with the context's correlation ID.
func (l *Logger) InfoContext(ctx context.Context, format string, args ...any) {
	l.log(ctx, LevelInfo, format, args...)
}

// WarnContext logs a warning message with the context's correlation ID.
func (l *Logger) WarnContext(ctx context.Context, format string, args ...any) {
	l.log(ctx, LevelWarn, format, args...)
}

// ErrorContext logs an error message with the context's correlation ID.
func (l *Logger) ErrorContext(ctx context.Context, format string, args ...any) {
	l.log(ctx, LevelError, format, args...)
}

// WithCorrelationID returns a context carrying the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID retrieves the correlation ID from a context, or "".
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// Default returns the process-wide default logger.
func Default() *Logger {
	return defaultLogger
}

// Debug logs a debug message using the default logger.
func Debug(format string, args ...any) { defaultLogger.log(nil, LevelDebug, format, args...) }

// Info logs an info message using the default logger.
func Info(format string, args ...any) { defaultLogger.log(nil, LevelInfo, format, args...) }

// Warn logs a warning message using the default logger.
func Warn(format string, args ...any) { defaultLogger.log(nil, LevelWarn, format, args...) }

// Error logs an error message using the default logger.
func Error(format string, args ...any) { defaultLogger.log(nil, LevelError, format, args...) }

// DebugContext logs a debug message with the context's correlation ID.
func DebugContext(ctx context.Context, format string, args ...any) {
	defaultLogger.log(ctx, LevelDebug, format, args...)
}

// InfoContext logs an info message with the context's correlation ID.
func InfoContext(ctx context.Context, format string, args ...any) {
	defaultLogger.log(ctx, LevelInfo, format, args...)
}

// WarnContext logs a warning message with the context's correlation ID.
func WarnContext(ctx context.Context, format string, args ...any) {
	defaultLogger.log(ctx, LevelWarn, format, args...)
}

// ErrorContext logs an error message with the context's correlation ID.
func ErrorContext(ctx context.Context, format string, args ...any) {
	defaultLogger.log(ctx, LevelError, format, args...)
}
