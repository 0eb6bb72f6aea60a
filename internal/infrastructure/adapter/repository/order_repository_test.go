package repository

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepositoryGetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTestDB(t), logger.NewNoopLogger())
	order := seedOrder(t, repo, 3, "750.50", "100.00")

	loaded, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), loaded.UserID)
	assert.Equal(t, entity.PaymentPending, loaded.PaymentStatus)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "850.50", loaded.Total().String())

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, errs.ErrOrderNotFound)
}

func TestOrderRepositorySaveBilling(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTestDB(t), logger.NewNoopLogger())
	order := seedOrder(t, repo, 3, "10.00")

	billing := entity.Billing{FirstName: "Amina", LastName: "Otieno", Email: "amina@example.com", Phone: "0712345678", City: "Kisumu"}
	require.NoError(t, repo.SaveBilling(ctx, order.ID, entity.MethodPesapal, billing))

	loaded, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MethodPesapal, loaded.PaymentMethod)
	assert.Equal(t, billing, loaded.Billing)

	assert.ErrorIs(t, repo.SaveBilling(ctx, 999, entity.MethodMpesa, billing), errs.ErrOrderNotFound)
}

func TestOrderRepositoryMarkCompleted(t *testing.T) {
	ctx := context.Background()
	at := testTime.Add(time.Minute)

	t.Run("Completes once", func(t *testing.T) {
		repo := NewOrderRepository(openTestDB(t), logger.NewNoopLogger())
		order := seedOrder(t, repo, 3, "10.00", "20.00")

		completed, err := repo.MarkCompleted(ctx, order.ID, at)
		require.NoError(t, err)
		assert.True(t, completed)

		loaded, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentCompleted, loaded.PaymentStatus)
		assert.True(t, loaded.Ordered)
		require.NotNil(t, loaded.OrderedAt)
		assert.True(t, at.Equal(*loaded.OrderedAt))
		for _, item := range loaded.Items {
			assert.True(t, item.Ordered)
		}

		completed, err = repo.MarkCompleted(ctx, order.ID, at.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, completed)

		again, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, at.Equal(*again.OrderedAt))
	})

	t.Run("Missing order", func(t *testing.T) {
		repo := NewOrderRepository(openTestDB(t), logger.NewNoopLogger())
		_, err := repo.MarkCompleted(ctx, 999, at)
		assert.ErrorIs(t, err, errs.ErrOrderNotFound)
	})
}

func TestOrderRepositoryMarkPaymentFailed(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTestDB(t), logger.NewNoopLogger())

	failed := seedOrder(t, repo, 3, "10.00")
	require.NoError(t, repo.MarkPaymentFailed(ctx, failed.ID, entity.PaymentCancelled))
	loaded, err := repo.GetByID(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCancelled, loaded.PaymentStatus)
	assert.False(t, loaded.Ordered)

	paid := seedOrder(t, repo, 3, "10.00")
	_, err = repo.MarkCompleted(ctx, paid.ID, testTime)
	require.NoError(t, err)
	require.NoError(t, repo.MarkPaymentFailed(ctx, paid.ID, entity.PaymentFailed))
	loaded, err = repo.GetByID(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCompleted, loaded.PaymentStatus)
}

func TestAnomalyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAnomalyRepository(openTestDB(t), logger.NewNoopLogger())

	for _, channel := range []entity.Channel{entity.ChannelCallback, entity.ChannelIPN} {
		anomaly := &entity.Anomaly{
			CorrelationID:  "ws_CO_9",
			StoredStatus:   entity.StatusFailed,
			IncomingStatus: entity.StatusSuccess,
			IncomingCode:   "0",
			Channel:        channel,
			CreatedAt:      testTime,
		}
		require.NoError(t, repo.Record(ctx, anomaly))
		assert.NotZero(t, anomaly.ID)
	}

	anomalies, err := repo.ListByCorrelationID(ctx, "ws_CO_9")
	require.NoError(t, err)
	require.Len(t, anomalies, 2)
	assert.Equal(t, entity.ChannelCallback, anomalies[0].Channel)
	assert.Equal(t, entity.StatusFailed, anomalies[0].StoredStatus)

	none, err := repo.ListByCorrelationID(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}
