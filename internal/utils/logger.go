package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel represents different logging levels
type LogLevel int32

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	DISABLED
)

// String returns the string representation of log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case DISABLED:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a level name to a LogLevel, falling back to INFO
func ParseLogLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "DISABLED", "OFF":
		return DISABLED
	default:
		return INFO
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger is a levelled, named logger. Output goes through a shared slog
// handler so every line carries the component name.
type Logger struct {
	level int32 // atomic access
	name  string
}

var (
	handler      slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	globalLogger *Logger
)

func init() {
	globalLogger = NewLogger("GLOBAL")
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		globalLogger.SetLevel(ParseLogLevel(envLevel))
	}
}

// SetHandler replaces the slog handler used by all loggers and returns the
// previous one
func SetHandler(h slog.Handler) slog.Handler {
	prev := handler
	if h != nil {
		handler = h
	}
	return prev
}

// NewLogger creates a new logger with the given name
func NewLogger(name string) *Logger {
	return &Logger{
		level: int32(INFO),
		name:  name,
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	atomic.StoreInt32(&l.level, int32(level))
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return LogLevel(atomic.LoadInt32(&l.level)) <= level
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.shouldLog(DEBUG) {
		l.logf(DEBUG, format, args...)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.shouldLog(INFO) {
		l.logf(INFO, format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.shouldLog(WARN) {
		l.logf(WARN, format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.shouldLog(ERROR) {
		l.logf(ERROR, format, args...)
	}
}

// With logs a message with structured fields attached
func (l *Logger) With(level LogLevel, msg string, fields map[string]interface{}) {
	if !l.shouldLog(level) || level == DISABLED {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+1)
	attrs = append(attrs, slog.String("component", l.name))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	slog.New(handler).LogAttrs(context.Background(), level.slogLevel(), msg, attrs...)
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	slog.New(handler).LogAttrs(context.Background(), level.slogLevel(), msg, slog.String("component", l.name))
}

// Global logging functions for convenience
func Debug(format string, args ...interface{}) {
	globalLogger.Debug(format, args...)
}

func Info(format string, args ...interface{}) {
	globalLogger.Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	globalLogger.Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	globalLogger.Error(format, args...)
}

// SetGlobalLevel sets the global logger level
func SetGlobalLevel(level LogLevel) {
	globalLogger.SetLevel(level)
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return globalLogger.shouldLog(DEBUG)
}

// Component-specific loggers for different parts of the system
var (
	FetcherLogger  = NewLogger("FETCHER")
	AnalysisLogger = NewLogger("ANALYSIS")
	TrackerLogger  = NewLogger("TRACKER")
	ServerLogger   = NewLogger("SERVER")
	CacheLogger    = NewLogger("CACHE")
)

// InitializeComponentLoggers sets component levels from the configured base level.
// ENABLE_DEBUG_LOGS=true forces every component to DEBUG.
func InitializeComponentLoggers(base LogLevel) {
	SetGlobalLevel(base)
	if os.Getenv("ENABLE_DEBUG_LOGS") == "true" {
		base = DEBUG
	}

	FetcherLogger.SetLevel(base)
	TrackerLogger.SetLevel(base)
	ServerLogger.SetLevel(base)
	CacheLogger.SetLevel(base)

	// the analysis core is hot and chatty; keep it one level quieter
	if base < WARN {
		AnalysisLogger.SetLevel(base + 1)
	} else {
		AnalysisLogger.SetLevel(base)
	}
}
