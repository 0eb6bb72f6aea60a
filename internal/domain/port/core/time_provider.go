package core

import (
	"context"
	"time"
)

// Duration is a domain-specific wrapper around time.Duration
type Duration time.Duration

// Common duration constants
const (
	Millisecond Duration = Duration(time.Millisecond)
	Second               = Duration(time.Second)
	Minute               = Duration(time.Minute)
	Hour                 = Duration(time.Hour)
)

// Std converts domain Duration to time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// TimeProvider abstracts time operations so cache expiry, simulated outcomes
// and ledger timestamps can be driven by tests
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) Duration
	After(d Duration) <-chan time.Time
	WithTimeout(ctx context.Context, timeout Duration) (context.Context, context.CancelFunc)
}
