package database

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/repository"
)

// RetryConfig holds configuration for retry operations
type RetryConfig struct {
	MaxRetries    int
	RetryInterval time.Duration
	MaxInterval   time.Duration
	JitterFactor  float64 // 0.0-1.0
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    5,
		RetryInterval: 50 * time.Millisecond,
		MaxInterval:   2 * time.Second,
		JitterFactor:  0.2,
	}
}

var classifier = repository.NewErrorClassifier()

// RetryOnTransientError runs operation until it succeeds, fails with a non-transient
// error, or MaxRetries is reached. The final error is passed through errorMapper.
func RetryOnTransientError(
	ctx context.Context,
	config RetryConfig,
	operation func() error,
	errorMapper *ErrorMapper,
	logger coreport.Logger,
	timeProvider coreport.TimeProvider,
) error {
	var err error
	attempt := 0

	for ; attempt < config.MaxRetries; attempt++ {
		err = operation()
		if err == nil {
			return nil
		}
		if !isTransientError(err) {
			return errorMapper.MapError(err, "unit of work")
		}
		if attempt == config.MaxRetries-1 {
			break
		}

		backoff := calculateBackoffWithJitter(attempt, config)
		logger.Warn("Transient database error, retrying operation", map[string]any{
			"attempt":     attempt + 1,
			"max_retries": config.MaxRetries,
			"error":       err.Error(),
			"retry_after": backoff.String(),
		})

		select {
		case <-timeProvider.After(coreport.Duration(backoff)):
		case <-ctx.Done():
			logger.Warn("Retry operation canceled by context", map[string]any{
				"attempts": attempt + 1,
				"error":    ctx.Err().Error(),
			})
			return ctx.Err()
		}
	}

	logger.Error("All retry attempts failed", map[string]any{
		"attempts":    attempt + 1,
		"max_retries": config.MaxRetries,
		"error":       err.Error(),
	})

	return errorMapper.MapError(err, "unit of work")
}

// calculateBackoffWithJitter computes the backoff duration with exponential increase and jitter
func calculateBackoffWithJitter(attempt int, config RetryConfig) time.Duration {
	backoff := config.RetryInterval * (1 << uint(attempt))
	if backoff > config.MaxInterval {
		backoff = config.MaxInterval
	}

	if config.JitterFactor > 0 {
		backoff += time.Duration(float64(backoff) * config.JitterFactor * rand.Float64())
	}

	return backoff
}

// isTransientError reports whether the whole unit can safely run again.
// Unique violations are never retried: they are answers, not failures.
func isTransientError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if classifier.IsDuplicateKeyError(err) {
		return false
	}
	return classifier.IsLockError(err) || classifier.IsTransientError(err)
}
