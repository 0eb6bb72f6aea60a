package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttempt(orderID uint64, correlationID string) *entity.PaymentAttempt {
	now := time.Now().UTC()
	return &entity.PaymentAttempt{
		CorrelationID: correlationID,
		OrderID:       orderID,
		Method:        entity.MethodMpesa,
		Phone:         "254712345678",
		Amount:        entity.NewAmount(decimal.NewFromInt(100)),
		Status:        entity.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestUnitOfWorkDo(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits on success", func(t *testing.T) {
		tdb := NewTestDBManager(t, logger.NewNoopLogger())
		uow := tdb.Manager.CreateUnitOfWork()
		orderID := tdb.CreateTestOrder(t, 1, "100.00")

		err := uow.Do(ctx, func(txCtx context.Context) error {
			return uow.GetAttemptRepository(txCtx).Create(txCtx, newAttempt(orderID, "ws_CO_commit"))
		})
		require.NoError(t, err)

		_, err = uow.GetAttemptRepository(ctx).GetByCorrelationID(ctx, "ws_CO_commit")
		assert.NoError(t, err)
	})

	t.Run("Rolls back on error", func(t *testing.T) {
		tdb := NewTestDBManager(t, logger.NewNoopLogger())
		uow := tdb.Manager.CreateUnitOfWork()
		orderID := tdb.CreateTestOrder(t, 1, "100.00")
		boom := errors.New("boom")

		err := uow.Do(ctx, func(txCtx context.Context) error {
			if err := uow.GetAttemptRepository(txCtx).Create(txCtx, newAttempt(orderID, "ws_CO_rollback")); err != nil {
				return err
			}
			if _, err := uow.GetOrderRepository(txCtx).MarkCompleted(txCtx, orderID, time.Now()); err != nil {
				return err
			}
			return boom
		})
		require.Error(t, err)

		_, err = uow.GetAttemptRepository(ctx).GetByCorrelationID(ctx, "ws_CO_rollback")
		assert.ErrorIs(t, err, errs.ErrAttemptNotFound)

		order, err := uow.GetOrderRepository(ctx).GetByID(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentPending, order.PaymentStatus)
	})

	t.Run("Domain errors pass through", func(t *testing.T) {
		tdb := NewTestDBManager(t, logger.NewNoopLogger())
		uow := tdb.Manager.CreateUnitOfWork()

		err := uow.Do(ctx, func(txCtx context.Context) error {
			_, err := uow.GetOrderRepository(txCtx).GetByID(txCtx, 404)
			return err
		})
		assert.ErrorIs(t, err, errs.ErrOrderNotFound)
	})

	t.Run("Nested Do joins the outer transaction", func(t *testing.T) {
		tdb := NewTestDBManager(t, logger.NewNoopLogger())
		uow := tdb.Manager.CreateUnitOfWork()
		orderID := tdb.CreateTestOrder(t, 1, "100.00")

		err := uow.Do(ctx, func(txCtx context.Context) error {
			if err := uow.Do(txCtx, func(inner context.Context) error {
				return uow.GetAttemptRepository(inner).Create(inner, newAttempt(orderID, "ws_CO_nested"))
			}); err != nil {
				return err
			}
			return errors.New("abort outer")
		})
		require.Error(t, err)

		_, err = uow.GetAttemptRepository(ctx).GetByCorrelationID(ctx, "ws_CO_nested")
		assert.ErrorIs(t, err, errs.ErrAttemptNotFound)
	})

	t.Run("Concurrent units settle an attempt once", func(t *testing.T) {
		tdb := NewTestDBManager(t, logger.NewNoopLogger())
		uow := tdb.Manager.CreateUnitOfWork()
		orderID := tdb.CreateTestOrder(t, 1, "100.00")
		require.NoError(t, uow.GetAttemptRepository(ctx).Create(ctx, newAttempt(orderID, "ws_CO_race")))

		var transitioned, completed int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := uow.Do(ctx, func(txCtx context.Context) error {
					swapped, err := uow.GetAttemptRepository(txCtx).TransitionFromPending(txCtx, "ws_CO_race",
						entity.Outcome{Status: entity.StatusSuccess, Code: "0", ReceiptRef: "R1"}, time.Now())
					if err != nil || !swapped {
						return err
					}
					atomic.AddInt32(&transitioned, 1)
					done, err := uow.GetOrderRepository(txCtx).MarkCompleted(txCtx, orderID, time.Now())
					if done {
						atomic.AddInt32(&completed, 1)
					}
					return err
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), transitioned)
		assert.Equal(t, int32(1), completed)
	})
}

func TestManagerPingAndPoolMetrics(t *testing.T) {
	tdb := NewTestDBManager(t, logger.NewNoopLogger())

	assert.NoError(t, tdb.Manager.Ping(context.Background()))
	assert.Equal(t, 1, tdb.Manager.PoolMetrics().MaxOpenConnections)

	version, err := tdb.Manager.MigrationManager().GetCurrentVersion(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, version)
}

func TestManagerConnectRejectsInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Driver = "mysql"

	manager := NewManager(config, logger.NewNoopLogger(), nil)
	_, err := manager.Connect(context.Background())
	assert.Error(t, err)
	assert.Error(t, manager.Ping(context.Background()))
}
