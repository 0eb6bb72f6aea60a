package database

import (
	"context"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/repository"
	"gorm.io/gorm"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const txKey contextKey = "tx"

// UnitOfWork implements the unit of work pattern for database transactions.
// Default isolation is enough: the ledger transition is a conditional UPDATE and
// the database serializes concurrent writers on the row.
type UnitOfWork struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	errorMapper  *ErrorMapper
	metrics      *MetricsCollector
	retryConfig  RetryConfig
}

var _ persistence.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *UnitOfWork {
	return &UnitOfWork{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
		errorMapper:  NewErrorMapper(),
		metrics:      NewMetricsCollector(logger, timeProvider),
		retryConfig:  DefaultRetryConfig(),
	}
}

// WithRetryConfig overrides the retry policy used by Do
func (u *UnitOfWork) WithRetryConfig(config RetryConfig) *UnitOfWork {
	u.retryConfig = config
	return u
}

// Do runs fn in a transaction and retries the whole unit on transient errors.
// A context that already carries a transaction joins it instead of nesting.
func (u *UnitOfWork) Do(ctx context.Context, fn func(txCtx context.Context) error) error {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}

	_, err := u.metrics.Measure(ctx, "unit_of_work", func() error {
		return RetryOnTransientError(ctx, u.retryConfig, func() error {
			return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return fn(context.WithValue(ctx, txKey, tx))
			})
		}, u.errorMapper, u.logger, u.timeProvider)
	})
	return err
}

// GetAttemptRepository returns a ledger repository in the current transaction
func (u *UnitOfWork) GetAttemptRepository(ctx context.Context) persistence.PaymentAttemptRepository {
	return repository.NewPaymentAttemptRepository(u.getDbFromContext(ctx), u.logger)
}

// GetOrderRepository returns an order repository in the current transaction
func (u *UnitOfWork) GetOrderRepository(ctx context.Context) persistence.OrderRepository {
	return repository.NewOrderRepository(u.getDbFromContext(ctx), u.logger)
}

// GetAnomalyRepository returns an anomaly repository in the current transaction
func (u *UnitOfWork) GetAnomalyRepository(ctx context.Context) persistence.AnomalyRepository {
	return repository.NewAnomalyRepository(u.getDbFromContext(ctx), u.logger)
}

// getDbFromContext retrieves the database instance from context
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok && tx != nil {
		return tx
	}
	return u.db.WithContext(ctx)
}
