package notifier

import (
	"context"
	"errors"
	"io"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/notifier"
)

// Multi fans a confirmation out to every channel. A failing channel doesn't stop the others.
type Multi struct {
	notifiers []notifier.Notifier
}

var _ notifier.Notifier = (*Multi)(nil)

// NewMulti combines notifiers
func NewMulti(notifiers ...notifier.Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// PaymentConfirmed delivers to every channel and joins their errors
func (m *Multi) PaymentConfirmed(ctx context.Context, confirmation notifier.PaymentConfirmation) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.PaymentConfirmed(ctx, confirmation); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every channel holding a connection
func (m *Multi) Close() error {
	var errs []error
	for _, n := range m.notifiers {
		if closer, ok := n.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Log records confirmations in the service log
type Log struct {
	logger coreport.Logger
}

var _ notifier.Notifier = (*Log)(nil)

// NewLog creates a notifier that only logs
func NewLog(logger coreport.Logger) *Log {
	return &Log{logger: logger}
}

// PaymentConfirmed logs the confirmation
func (l *Log) PaymentConfirmed(_ context.Context, confirmation notifier.PaymentConfirmation) error {
	fields := map[string]any{
		"correlation_id": confirmation.CorrelationID,
		"method":         confirmation.Method,
		"amount":         confirmation.Amount.String(),
		"receipt":        confirmation.ReceiptRef,
		"simulated":      confirmation.Simulated,
	}
	if confirmation.Order != nil {
		fields["order_id"] = confirmation.Order.ID
		fields["user_id"] = confirmation.Order.UserID
	}
	l.logger.Info("Payment confirmed", fields)
	return nil
}
