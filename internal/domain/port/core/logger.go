package core

import (
	"errors"
	"strings"
)

// LogLevel represents logging severity levels
type LogLevel int

const (
	// LogLevelDebug for detailed debug information
	LogLevelDebug LogLevel = iota
	// LogLevelInfo for general operational information
	LogLevelInfo
	// LogLevelWarn for warnings
	LogLevelWarn
	// LogLevelError for errors information
	LogLevelError
)

// ParseLogLevel maps a config value onto a LogLevel, defaulting to info
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines logging operations
type Logger interface {
	// SetLevel sets the minimum log level to output
	SetLevel(level LogLevel)
	// GetLevel gets the current log level
	GetLevel() LogLevel
	Debug(message string, fields map[string]any)
	Info(message string, fields map[string]any)
	Warn(message string, fields map[string]any)
	Error(message string, fields map[string]any)
	// Flush ensures all buffered logs are written to their destination
	Flush() error
}

// Fielder is implemented by errors that carry their own structured log fields
type Fielder interface {
	LogFields() map[string]any
}

// ErrorFields merges an error's own log fields into extra, when it has any
func ErrorFields(err error, extra map[string]any) map[string]any {
	fields := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		fields[k] = v
	}
	if err == nil {
		return fields
	}
	fields["error"] = err.Error()
	var f Fielder
	if errors.As(err, &f) {
		for k, v := range f.LogFields() {
			if _, taken := fields[k]; !taken {
				fields[k] = v
			}
		}
	}
	return fields
}
