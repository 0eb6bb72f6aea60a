package database

import (
	"context"
	"strings"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseLogger is a GORM logger that writes through the core logger
type DatabaseLogger struct {
	coreLogger    coreport.Logger
	logLevel      logger.LogLevel
	slowThreshold time.Duration
	timeProvider  coreport.TimeProvider
}

// NewGormDatabaseLogger creates a GORM logger at the given level ("silent", "error", "warn", "info")
func NewGormDatabaseLogger(coreLogger coreport.Logger, timeProvider coreport.TimeProvider, level string) logger.Interface {
	return &DatabaseLogger{
		coreLogger:    coreLogger,
		logLevel:      parseGormLevel(level),
		slowThreshold: (200 * coreport.Millisecond).Std(),
		timeProvider:  timeProvider,
	}
}

func parseGormLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// LogMode sets the log level for the logger
func (l *DatabaseLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

// Info logs info messages
func (l *DatabaseLogger) Info(_ context.Context, msg string, _ ...interface{}) {
	if l.logLevel >= logger.Info {
		l.coreLogger.Info(msg, map[string]any{"source": "database"})
	}
}

// Warn logs warn messages
func (l *DatabaseLogger) Warn(_ context.Context, msg string, _ ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.coreLogger.Warn(msg, map[string]any{"source": "database"})
	}
}

// Error logs error messages
func (l *DatabaseLogger) Error(_ context.Context, msg string, _ ...interface{}) {
	if l.logLevel >= logger.Error {
		l.coreLogger.Error(msg, map[string]any{"source": "database"})
	}
}

// Trace logs SQL statements, errors and slow queries
func (l *DatabaseLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := l.timeProvider.Since(begin).Std()
	sql, rows := fc()

	fields := map[string]any{
		"elapsed": elapsed.String(),
		"rows":    rows,
		"sql":     sql,
		"source":  "database",
	}
	if queryType := extractQueryType(sql); queryType != "" {
		fields["type"] = queryType
	}
	if tableName := extractTableName(sql); tableName != "" {
		fields["table"] = tableName
	}

	switch {
	// not-found is an expected answer for correlation id lookups
	case err != nil && err != gorm.ErrRecordNotFound && l.logLevel >= logger.Error:
		fields["error"] = err.Error()
		l.coreLogger.Error("SQL Error", fields)
	case elapsed > l.slowThreshold && l.logLevel >= logger.Warn:
		l.coreLogger.Warn("Slow SQL Query", fields)
	case l.logLevel >= logger.Info:
		l.coreLogger.Debug("SQL Query", fields)
	}
}

// extractQueryType determines the type of SQL query (SELECT, INSERT, UPDATE, DELETE)
func extractQueryType(sql string) string {
	sqlUpper := strings.ToUpper(strings.TrimSpace(sql))
	for _, kind := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sqlUpper, kind) {
			return kind
		}
	}
	return ""
}

// extractTableName pulls the first table name after FROM, INTO or UPDATE
func extractTableName(sql string) string {
	sqlUpper := strings.ToUpper(strings.TrimSpace(sql))

	var start int
	switch {
	case strings.Contains(sqlUpper, " FROM "):
		start = strings.Index(sqlUpper, " FROM ") + 6
	case strings.Contains(sqlUpper, " INTO "):
		start = strings.Index(sqlUpper, " INTO ") + 6
	case strings.HasPrefix(sqlUpper, "UPDATE "):
		start = 7
	default:
		return ""
	}

	remainder := strings.TrimSpace(sql[start:])
	if end := strings.IndexAny(remainder, " (\n"); end != -1 {
		remainder = remainder[:end]
	}
	return strings.Trim(remainder, `"`+"`")
}
