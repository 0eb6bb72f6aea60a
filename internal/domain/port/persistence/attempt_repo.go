package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// PaymentAttemptRepository is the transaction ledger. Rows are append-only:
// there is no delete and the only mutation is the single PENDING -> terminal transition.
type PaymentAttemptRepository interface {
	// Create stores a new PENDING attempt
	//
	// Possible errors:
	// - ErrDuplicateAttempt: If an attempt with the same correlation id already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, attempt *entity.PaymentAttempt) error

	// GetByCorrelationID retrieves an attempt by its gateway-issued correlation id
	//
	// Possible errors:
	// - ErrAttemptNotFound: If no attempt carries the id
	// - ErrDatabaseConnection: If database connection fails
	GetByCorrelationID(ctx context.Context, correlationID string) (*entity.PaymentAttempt, error)

	// TransitionFromPending writes the outcome only if the attempt is still PENDING.
	// Exactly one of any number of concurrent callers gets true.
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	TransitionFromPending(ctx context.Context, correlationID string, outcome entity.Outcome, at time.Time) (bool, error)

	// ListPending returns attempts still PENDING that were created before olderThan, oldest first
	ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.PaymentAttempt, error)

	// ListByOrder returns every attempt made for an order, oldest first
	ListByOrder(ctx context.Context, orderID uint64) ([]*entity.PaymentAttempt, error)
}
