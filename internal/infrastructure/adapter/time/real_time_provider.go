package time

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
)

// RealTimeProvider implements the TimeProvider interface with the wall clock
type RealTimeProvider struct{}

// NewRealTimeProvider creates a new real time provider
func NewRealTimeProvider() core.TimeProvider {
	return &RealTimeProvider{}
}

// Now returns the current time
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t
func (p *RealTimeProvider) Since(t time.Time) core.Duration {
	return core.Duration(time.Since(t))
}

// After waits for the duration to elapse and then sends the current time
func (p *RealTimeProvider) After(d core.Duration) <-chan time.Time {
	return time.After(d.Std())
}

// WithTimeout returns a context that will be canceled after the specified timeout
func (p *RealTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}
