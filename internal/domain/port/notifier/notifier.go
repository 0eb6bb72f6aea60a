package notifier

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// PaymentConfirmation is sent once per completed order
type PaymentConfirmation struct {
	Order         *entity.Order
	CorrelationID string
	Method        entity.PaymentMethod
	ReceiptRef    string
	Amount        entity.Amount
	Simulated     bool
	ConfirmedAt   time.Time
}

// Notifier delivers confirmation messages. Delivery is best-effort;
// errors are reported but never affect the payment state.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, confirmation PaymentConfirmation) error
}
