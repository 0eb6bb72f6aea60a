package reconciliation

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/notifier"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/persistence"
	portuse "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/usecase"
)

// Config tunes the engine
type Config struct {
	// NotifyTimeout bounds each confirmation delivery
	NotifyTimeout time.Duration
	// SweepConcurrency caps parallel upstream queries during a sweep
	SweepConcurrency int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		NotifyTimeout:    10 * time.Second,
		SweepConcurrency: 4,
	}
}

// Engine is the payment state machine. Every signal, whatever its channel,
// ends up in ApplyResult.
type Engine struct {
	uow          persistence.UnitOfWork
	gateways     gateway.Registry
	notifier     notifier.Notifier
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	config       Config

	notifications sync.WaitGroup
}

var _ portuse.ReconciliationUseCase = (*Engine)(nil)

// NewEngine creates a reconciliation engine
func NewEngine(
	uow persistence.UnitOfWork,
	gateways gateway.Registry,
	notifier notifier.Notifier,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	config Config,
) *Engine {
	defaults := DefaultConfig()
	if config.NotifyTimeout <= 0 {
		config.NotifyTimeout = defaults.NotifyTimeout
	}
	if config.SweepConcurrency <= 0 {
		config.SweepConcurrency = defaults.SweepConcurrency
	}

	return &Engine{
		uow:          uow,
		gateways:     gateways,
		notifier:     notifier,
		timeProvider: timeProvider,
		logger:       logger,
		config:       config,
	}
}

// Shutdown waits for in-flight confirmation notifications
func (e *Engine) Shutdown() {
	e.notifications.Wait()
}

// dispatchConfirmation notifies in the background. The payment is already
// committed, so nothing here can change its outcome.
func (e *Engine) dispatchConfirmation(attempt *entity.PaymentAttempt, confirmedAt time.Time) {
	if e.notifier == nil {
		return
	}

	e.notifications.Add(1)
	go func() {
		defer e.notifications.Done()
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("Panic recovered in confirmation notifier", map[string]any{
					"correlation_id": attempt.CorrelationID,
					"panic":          r,
				})
			}
		}()

		ctx, cancel := e.timeProvider.WithTimeout(context.Background(), coreport.Duration(e.config.NotifyTimeout))
		defer cancel()

		order, err := e.uow.GetOrderRepository(ctx).GetByID(ctx, attempt.OrderID)
		if err != nil {
			e.logger.Warn("Skipping confirmation, order could not be loaded", coreport.ErrorFields(err, map[string]any{
				"correlation_id": attempt.CorrelationID,
				"order_id":       attempt.OrderID,
			}))
			return
		}

		confirmation := notifier.PaymentConfirmation{
			Order:         order,
			CorrelationID: attempt.CorrelationID,
			Method:        attempt.Method,
			ReceiptRef:    attempt.Receipt(),
			Amount:        attempt.Amount,
			Simulated:     attempt.IsSimulated(),
			ConfirmedAt:   confirmedAt,
		}
		if err := e.notifier.PaymentConfirmed(ctx, confirmation); err != nil {
			e.logger.Warn("Payment confirmation notification failed", coreport.ErrorFields(err, map[string]any{
				"correlation_id": attempt.CorrelationID,
				"order_id":       attempt.OrderID,
			}))
			return
		}

		e.logger.Info("Payment confirmation sent", map[string]any{
			"correlation_id": attempt.CorrelationID,
			"order_id":       attempt.OrderID,
		})
	}()
}
