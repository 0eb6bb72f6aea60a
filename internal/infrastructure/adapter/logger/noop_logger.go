package logger

import (
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
)

// NoopLogger discards everything. Used by tests and by paymentctl --quiet.
type NoopLogger struct {
	level core.LogLevel
}

// NewNoopLogger creates a new no-op logger
func NewNoopLogger() core.Logger {
	return &NoopLogger{level: core.LogLevelInfo}
}

// SetLevel sets the minimum log level to output
func (l *NoopLogger) SetLevel(level core.LogLevel) { l.level = level }

// GetLevel gets the current log level
func (l *NoopLogger) GetLevel() core.LogLevel { return l.level }

// Debug does nothing
func (l *NoopLogger) Debug(string, map[string]any) {}

// Info does nothing
func (l *NoopLogger) Info(string, map[string]any) {}

// Warn does nothing
func (l *NoopLogger) Warn(string, map[string]any) {}

// Error does nothing
func (l *NoopLogger) Error(string, map[string]any) {}

// Flush has nothing to flush
func (l *NoopLogger) Flush() error { return nil }
