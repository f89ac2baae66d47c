package internal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// ParseLogLevel maps ERROR|WARN|INFO|DEBUG|TRACE to a level, defaulting to INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// Logger provides leveled, attribute-carrying logging
type Logger struct {
	level LogLevel
	sl    *slog.Logger
}

// NewLogger creates a new logger with the specified level writing to stderr
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a logger writing text records to w
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug - 4})
	return &Logger{level: level, sl: slog.New(h)}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")))
}

// With returns a logger that adds attrs to every record
func (l *Logger) With(args ...any) *Logger {
	return &Logger{level: l.level, sl: l.sl.With(args...)}
}

// Error logs error messages
func (l *Logger) Error(msg string, args ...any) {
	if l.level >= LogLevelError {
		l.sl.Error(msg, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, args ...any) {
	if l.level >= LogLevelWarn {
		l.sl.Warn(msg, args...)
	}
}

// Info logs info messages
func (l *Logger) Info(msg string, args ...any) {
	if l.level >= LogLevelInfo {
		l.sl.Info(msg, args...)
	}
}

// Debug logs debug messages
func (l *Logger) Debug(msg string, args ...any) {
	if l.level >= LogLevelDebug {
		l.sl.Debug(msg, args...)
	}
}

// Trace logs per-row and per-entity detail
func (l *Logger) Trace(msg string, args ...any) {
	if l.level >= LogLevelTrace {
		l.sl.Log(context.Background(), slog.LevelDebug-4, msg, args...)
	}
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
