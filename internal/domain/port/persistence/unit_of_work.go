package persistence

import (
	"context"
)

// UnitOfWork coordinates repositories inside one database transaction
type UnitOfWork interface {
	// Do runs fn inside a transaction, committing on nil and rolling back otherwise.
	// The whole unit is retried on transient database errors, so fn must only touch
	// repositories obtained from the context it receives.
	Do(ctx context.Context, fn func(txCtx context.Context) error) error

	// GetAttemptRepository returns a ledger repository bound to the current transaction
	GetAttemptRepository(ctx context.Context) PaymentAttemptRepository

	// GetOrderRepository returns an order repository bound to the current transaction
	GetOrderRepository(ctx context.Context) OrderRepository

	// GetAnomalyRepository returns an anomaly repository bound to the current transaction
	GetAnomalyRepository(ctx context.Context) AnomalyRepository
}
