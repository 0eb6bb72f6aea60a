package repository

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/time"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// openTestDB returns a migrated private in-memory database
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	mgr := migration.NewMigrationManager(db, logger.NewNoopLogger(), timeprovider.NewRealTimeProvider())
	require.NoError(t, mgr.MigrateAll(context.Background()))
	return db
}

func seedOrder(t *testing.T, repo *OrderRepository, userID uint64, prices ...string) *entity.Order {
	t.Helper()

	order := &entity.Order{
		UserID:        userID,
		Reference:     "ORD-TEST",
		PaymentStatus: entity.PaymentPending,
		CreatedAt:     testTime,
		UpdatedAt:     testTime,
	}
	for _, price := range prices {
		order.Items = append(order.Items, entity.OrderItem{
			Title:     "item",
			Quantity:  1,
			UnitPrice: entity.NewAmount(decimal.RequireFromString(price)),
		})
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func pendingAttempt(orderID uint64, correlationID string, createdAt time.Time) *entity.PaymentAttempt {
	return &entity.PaymentAttempt{
		CorrelationID: correlationID,
		SecondaryID:   "merchant-" + correlationID,
		OrderID:       orderID,
		Method:        entity.MethodMpesa,
		Phone:         entity.CanonicalPhone("254712345678"),
		Amount:        entity.NewAmount(decimal.NewFromInt(1500)),
		Status:        entity.StatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}
