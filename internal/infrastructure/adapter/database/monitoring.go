package database

import (
	"context"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
)

// slowUnitThreshold is the duration above which a unit of work is logged as slow
const slowUnitThreshold = 250 * time.Millisecond

// UnitMetrics holds timing for one unit of work
type UnitMetrics struct {
	Operation    string
	Duration     time.Duration
	Failed       bool
	ErrorMessage string
}

// MetricsCollector times units of work and reports slow ones
type MetricsCollector struct {
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	threshold    time.Duration
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger coreport.Logger, timeProvider coreport.TimeProvider) *MetricsCollector {
	return &MetricsCollector{
		logger:       logger,
		timeProvider: timeProvider,
		threshold:    slowUnitThreshold,
	}
}

// Measure runs fn and logs it when it is slower than the threshold
func (c *MetricsCollector) Measure(_ context.Context, operation string, fn func() error) (*UnitMetrics, error) {
	start := c.timeProvider.Now()
	err := fn()

	metrics := &UnitMetrics{
		Operation: operation,
		Duration:  c.timeProvider.Since(start).Std(),
		Failed:    err != nil,
	}
	if err != nil {
		metrics.ErrorMessage = err.Error()
	}

	if metrics.Duration > c.threshold {
		c.logger.Warn("Slow unit of work detected", map[string]any{
			"operation":     operation,
			"duration_ms":   metrics.Duration.Milliseconds(),
			"failed":        metrics.Failed,
			"error_message": metrics.ErrorMessage,
		})
	}

	return metrics, err
}
