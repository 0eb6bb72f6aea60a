package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// OrderRepository exposes the few order operations reconciliation and checkout need.
// Cart and catalog CRUD live elsewhere.
type OrderRepository interface {
	// GetByID retrieves an order with its line items
	//
	// Possible errors:
	// - ErrOrderNotFound: If the order doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.Order, error)

	// Create stores an order with its items
	Create(ctx context.Context, order *entity.Order) error

	// SaveBilling stores the checkout billing snapshot and chosen payment method
	SaveBilling(ctx context.Context, orderID uint64, method entity.PaymentMethod, billing entity.Billing) error

	// MarkCompleted sets payment status COMPLETED, the fulfillment flag and every item's
	// ordered flag. Returns false if the order was already completed.
	//
	// Possible errors:
	// - ErrOrderNotFound: If the order doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	MarkCompleted(ctx context.Context, orderID uint64, at time.Time) (bool, error)

	// MarkPaymentFailed records a failed or cancelled payment unless the order is already completed
	MarkPaymentFailed(ctx context.Context, orderID uint64, status entity.PaymentStatus) error
}
