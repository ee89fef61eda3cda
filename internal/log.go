package internal

import (
	"fmt"
	"log"
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
)

var levelNames = map[string]LogLevel{
	"ERROR": LogLevelError,
	"WARN":  LogLevelWarn,
	"INFO":  LogLevelInfo,
	"DEBUG": LogLevelDebug,
}

// ParseLogLevel maps a LOG_LEVEL value to a level; matching ignores case
func ParseLogLevel(s string) (LogLevel, error) {
	if l, ok := levelNames[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// Logger gates log.Printf output by level and tags lines with a component
type Logger struct {
	level     LogLevel
	component string
}

// NewLogger creates a logger at the given level
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level}
}

// NewDefaultLogger reads LOG_LEVEL; unset or unknown values mean INFO
func NewDefaultLogger() *Logger {
	level, err := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil && os.Getenv("LOG_LEVEL") != "" {
		log.Printf("[Logger] %v, using INFO", err)
	}
	return NewLogger(level)
}

// For returns a logger at the same level that prefixes lines with [component]
func (l *Logger) For(component string) *Logger {
	return &Logger{level: l.level, component: component}
}

func (l *Logger) printf(at LogLevel, tag, format string, args ...interface{}) {
	if l.level < at {
		return
	}
	prefix := ""
	if l.component != "" {
		prefix = "[" + l.component + "] "
	}
	if tag != "" {
		prefix += tag + " "
	}
	log.Printf(prefix+format, args...)
}

// Error logs failures
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LogLevelError, "ERROR", format, args...)
}

// Warn logs recoverable problems
func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(LogLevelWarn, "Warning:", format, args...)
}

// Info logs lifecycle events
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LogLevelInfo, "", format, args...)
}

// Debug logs per-call detail such as individual predictions
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LogLevelDebug, "DEBUG", format, args...)
}

// Enabled reports whether messages at level would be written
func (l *Logger) Enabled(level LogLevel) bool {
	return l.level >= level
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// DefaultLogger is configured from the environment at startup
var DefaultLogger = NewDefaultLogger()
