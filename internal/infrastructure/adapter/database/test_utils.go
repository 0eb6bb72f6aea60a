package database

import (
	"context"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	timeprovider "github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/time"
	"github.com/shopspring/decimal"
)

// TestDBManager wraps a migrated in-memory sqlite database for tests
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager connects to a private in-memory database, migrates it and
// closes it when the test ends
func NewTestDBManager(t *testing.T, logger coreport.Logger) *TestDBManager {
	t.Helper()

	timeProvider := timeprovider.NewRealTimeProvider()
	config := DefaultConfig()
	config.Driver = DriverSQLite
	config.Path = ":memory:"
	config.LogLevel = "silent"
	config.RetryAttempts = 1

	manager := NewManager(config, logger, timeProvider)
	ctx := context.Background()
	if _, err := manager.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Logf("Warning: Failed to close test database connection: %v", err)
		}
	})

	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
}

// CreateTestOrder inserts an unpaid order with one line item per price and returns its id
func (m *TestDBManager) CreateTestOrder(t *testing.T, userID uint64, prices ...string) uint64 {
	t.Helper()

	now := time.Now().UTC()
	order := model.Order{
		UserID:        userID,
		PaymentStatus: "PENDING",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i, price := range prices {
		order.Items = append(order.Items, model.OrderItem{
			Title:     "item " + string(rune('A'+i)),
			Quantity:  1,
			UnitPrice: decimal.RequireFromString(price),
		})
	}

	if err := m.Manager.DB().Create(&order).Error; err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}
	return order.ID
}
