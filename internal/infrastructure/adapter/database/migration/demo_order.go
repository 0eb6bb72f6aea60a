package migration

import (
	"context"

	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	"github.com/shopspring/decimal"
)

// DemoUserID owns the seeded order; send it as X-User-ID when trying the API locally
const DemoUserID = 1

// SeedDemoOrder inserts one unpaid order for DemoUserID when the orders table is empty
func (m *MigrationManager) SeedDemoOrder(ctx context.Context) (uint64, error) {
	db := m.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.Order{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	now := m.timeProvider.Now()
	order := model.Order{
		UserID:        DemoUserID,
		Reference:     "DEMO-0001",
		PaymentStatus: "PENDING",
		Items: []model.OrderItem{
			{Title: "Maasai shuka", Quantity: 2, UnitPrice: decimal.RequireFromString("750.00")},
			{Title: "Kiondo basket", Quantity: 1, UnitPrice: decimal.RequireFromString("1200.50")},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Create(&order).Error; err != nil {
		m.logger.Error("Failed to seed demo order", map[string]any{"error": err.Error()})
		return 0, err
	}

	m.logger.Info("Seeded demo order", map[string]any{
		"order_id": order.ID,
		"user_id":  DemoUserID,
	})
	return order.ID, nil
}
