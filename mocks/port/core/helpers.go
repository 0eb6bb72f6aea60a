package mcore

import (
	"context"
	"sync"
	"time"

	core "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	mock "github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// NewPermissiveMockLogger returns a MockLogger that accepts any log call
func NewPermissiveMockLogger(t testingT) *MockLogger {
	m := NewMockLogger(t)
	for _, level := range []string{"Debug", "Info", "Warn", "Error"} {
		m.On(level, mock.Anything, mock.Anything).Maybe()
	}
	return m
}

// FakeClock is a settable clock backed by a MockTimeProvider
type FakeClock struct {
	*MockTimeProvider
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a clock frozen at start. After and WithTimeout use real timers.
func NewFakeClock(t testingT, start time.Time) *FakeClock {
	clock := &FakeClock{MockTimeProvider: NewMockTimeProvider(t), now: start}
	clock.On("Now").Return(func() time.Time { return clock.current() }).Maybe()
	clock.On("Since", mock.Anything).Return(func(from time.Time) core.Duration {
		return core.Duration(clock.current().Sub(from))
	}).Maybe()
	clock.On("After", mock.Anything).Return(func(d core.Duration) <-chan time.Time {
		return time.After(d.Std())
	}).Maybe()
	clock.On("WithTimeout", mock.Anything, mock.Anything).Return(
		func(ctx context.Context, d core.Duration) (context.Context, context.CancelFunc) {
			return context.WithTimeout(ctx, d.Std())
		}).Maybe()
	return clock
}

// Advance moves the clock forward
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *FakeClock) current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
