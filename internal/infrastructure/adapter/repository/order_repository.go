package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// OrderRepository implements the order port using GORM
type OrderRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewOrderRepository creates a new OrderRepository instance
func NewOrderRepository(db *gorm.DB, logger coreport.Logger) *OrderRepository {
	return &OrderRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func orderToModel(order *entity.Order) *model.Order {
	items := make([]model.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, model.OrderItem{
			ID:        item.ID,
			OrderID:   order.ID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.Decimal(),
			Ordered:   item.Ordered,
		})
	}

	return &model.Order{
		ID:               order.ID,
		UserID:           order.UserID,
		Reference:        order.Reference,
		PaymentStatus:    string(order.PaymentStatus),
		PaymentMethod:    string(order.PaymentMethod),
		Ordered:          order.Ordered,
		OrderedAt:        order.OrderedAt,
		BillingFirstName: order.Billing.FirstName,
		BillingLastName:  order.Billing.LastName,
		BillingEmail:     order.Billing.Email,
		BillingPhone:     order.Billing.Phone,
		BillingAddress:   order.Billing.Address,
		BillingCity:      order.Billing.City,
		Items:            items,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

func orderToEntity(m *model.Order) *entity.Order {
	items := make([]entity.OrderItem, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, entity.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: entity.NewAmount(item.UnitPrice),
			Ordered:   item.Ordered,
		})
	}

	return &entity.Order{
		ID:            m.ID,
		UserID:        m.UserID,
		Reference:     m.Reference,
		PaymentStatus: entity.PaymentStatus(m.PaymentStatus),
		PaymentMethod: entity.PaymentMethod(m.PaymentMethod),
		Ordered:       m.Ordered,
		OrderedAt:     m.OrderedAt,
		Billing: entity.Billing{
			FirstName: m.BillingFirstName,
			LastName:  m.BillingLastName,
			Email:     m.BillingEmail,
			Phone:     m.BillingPhone,
			Address:   m.BillingAddress,
			City:      m.BillingCity,
		},
		Items:     items,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// handleDatabaseError standardizes database error handling
func (r *OrderRepository) handleDatabaseError(operation string, err error, orderID uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Debug("Order not found", map[string]any{
			"order_id": orderID,
		})
		return errs.ErrOrderNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"order_id":   orderID,
		"error":      err.Error(),
		"error_type": r.errorClassifier.Classify(err),
	})

	if r.errorClassifier.IsConstraintError(err) {
		return fmt.Errorf("%w: %s", errs.ErrConstraintViolation, err.Error())
	}

	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// GetByID loads an order with its items
func (r *OrderRepository) GetByID(ctx context.Context, id uint64) (*entity.Order, error) {
	var orderModel model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&orderModel, id).Error
	if err != nil {
		return nil, r.handleDatabaseError("getting order", err, id)
	}

	return orderToEntity(&orderModel), nil
}

// Create inserts an order and its items
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderModel := orderToModel(order)

	if err := r.db.WithContext(ctx).Create(orderModel).Error; err != nil {
		return r.handleDatabaseError("creating order", err, order.ID)
	}

	order.ID = orderModel.ID
	for i := range order.Items {
		order.Items[i].ID = orderModel.Items[i].ID
		order.Items[i].OrderID = orderModel.ID
	}

	r.logger.Info("Order created", map[string]any{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"items":    len(order.Items),
	})
	return nil
}

// SaveBilling stores the checkout billing snapshot and the chosen method
func (r *OrderRepository) SaveBilling(ctx context.Context, orderID uint64, method entity.PaymentMethod, billing entity.Billing) error {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"payment_method":     string(method),
			"billing_first_name": billing.FirstName,
			"billing_last_name":  billing.LastName,
			"billing_email":      billing.Email,
			"billing_phone":      billing.Phone,
			"billing_address":    billing.Address,
			"billing_city":       billing.City,
		})
	if result.Error != nil {
		return r.handleDatabaseError("saving billing details", result.Error, orderID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrOrderNotFound
	}
	return nil
}

// MarkCompleted sets the completion fields on the order and its items.
// The update only matches an order that is not COMPLETED yet, so it happens at most once.
func (r *OrderRepository) MarkCompleted(ctx context.Context, orderID uint64, at time.Time) (bool, error) {
	db := r.db.WithContext(ctx)

	result := db.Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, string(entity.PaymentCompleted)).
		Updates(map[string]any{
			"payment_status": string(entity.PaymentCompleted),
			"ordered":        true,
			"ordered_at":     at,
			"updated_at":     at,
		})
	if result.Error != nil {
		return false, r.handleDatabaseError("completing order", result.Error, orderID)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&model.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
			return false, r.handleDatabaseError("checking order", err, orderID)
		}
		if count == 0 {
			return false, errs.ErrOrderNotFound
		}
		r.logger.Debug("Order already completed", map[string]any{"order_id": orderID})
		return false, nil
	}

	if err := db.Model(&model.OrderItem{}).
		Where("order_id = ?", orderID).
		Update("ordered", true).Error; err != nil {
		return false, r.handleDatabaseError("marking order items ordered", err, orderID)
	}

	r.logger.Info("Order completed", map[string]any{
		"order_id":   orderID,
		"ordered_at": at,
	})
	return true, nil
}

// MarkPaymentFailed mirrors a failed or cancelled attempt on the order.
// A COMPLETED order is never downgraded.
func (r *OrderRepository) MarkPaymentFailed(ctx context.Context, orderID uint64, status entity.PaymentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, string(entity.PaymentCompleted)).
		Update("payment_status", string(status))
	if result.Error != nil {
		return r.handleDatabaseError("updating order payment status", result.Error, orderID)
	}
	return nil
}
