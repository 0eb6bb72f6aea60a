package usecase

import (
	"context"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// CheckoutRequest is a user's request to pay for an order
type CheckoutRequest struct {
	UserID  uint64
	OrderID uint64
	Method  entity.PaymentMethod
	Phone   string
	Billing entity.Billing
}

// CheckoutResult tells the storefront where the payment went
type CheckoutResult struct {
	CorrelationID string
	OrderID       uint64
	Method        entity.PaymentMethod
	Status        entity.AttemptStatus
	Message       string
	RedirectURL   string
	Simulated     bool
}

// CheckoutUseCase starts payments. At most one PENDING attempt is created per call.
type CheckoutUseCase interface {
	Start(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}
