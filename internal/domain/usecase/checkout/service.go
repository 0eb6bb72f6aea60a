package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/persistence"
	portuse "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/reconciliation"
)

// Service starts payments for orders
type Service struct {
	uow          persistence.UnitOfWork
	gateways     gateway.Registry
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ portuse.CheckoutUseCase = (*Service)(nil)

// NewService creates a checkout service
func NewService(
	uow persistence.UnitOfWork,
	gateways gateway.Registry,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		gateways:     gateways,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Start validates the order, initiates the payment with the selected gateway and
// records exactly one PENDING attempt. Nothing is written to the ledger when the
// gateway refuses.
func (s *Service) Start(ctx context.Context, req portuse.CheckoutRequest) (*portuse.CheckoutResult, error) {
	logFields := map[string]any{
		"user_id":  req.UserID,
		"order_id": req.OrderID,
		"method":   req.Method,
	}

	gw, ok := s.gateways.Get(req.Method)
	if !ok {
		return nil, errs.NewInvalidFormatError("payment method", string(req.Method), "unsupported payment method")
	}

	phone, err := entity.NormalizePhone(req.Phone)
	if err != nil {
		s.logger.Debug("Checkout rejected, invalid phone", logFields)
		return nil, err
	}

	order, err := s.loadPayableOrder(ctx, req.UserID, req.OrderID)
	if err != nil {
		return nil, err
	}

	amount := order.Total()
	if amount.WholeUnits() <= 0 {
		return nil, fmt.Errorf("%w: order %d has nothing to pay", errs.ErrInvalidRequest, order.ID)
	}

	if err := s.ensureNoPendingAttempt(ctx, order.ID); err != nil {
		return nil, err
	}

	if err := s.uow.GetOrderRepository(ctx).SaveBilling(ctx, order.ID, req.Method, req.Billing); err != nil {
		return nil, fmt.Errorf("failed to save billing details: %w", err)
	}
	order.Billing = req.Billing

	initiated, err := gw.Initiate(ctx, gateway.InitiateRequest{
		OrderID:     order.ID,
		Reference:   orderReference(order),
		Phone:       phone.String(),
		Amount:      amount,
		Description: fmt.Sprintf("Payment for order %s", orderReference(order)),
		Billing:     req.Billing,
	})
	if err != nil {
		s.logger.Warn("Gateway refused payment initiation", coreport.ErrorFields(err, logFields))
		return nil, err
	}

	attempt, err := entity.NewPaymentAttempt(
		order.ID,
		req.Method,
		initiated.CorrelationID,
		initiated.SecondaryID,
		phone,
		amount,
		s.timeProvider,
	)
	if err != nil {
		return nil, err
	}

	if err := s.uow.GetAttemptRepository(ctx).Create(ctx, attempt); err != nil {
		s.logger.Error("Failed to record payment attempt", coreport.ErrorFields(err, map[string]any{
			"order_id":       order.ID,
			"correlation_id": initiated.CorrelationID,
		}))
		return nil, err
	}

	s.logger.Info("Payment initiated", map[string]any{
		"order_id":       order.ID,
		"method":         req.Method,
		"correlation_id": attempt.CorrelationID,
		"amount":         amount.String(),
		"simulated":      initiated.Simulated,
	})

	return &portuse.CheckoutResult{
		CorrelationID: attempt.CorrelationID,
		OrderID:       order.ID,
		Method:        req.Method,
		Status:        attempt.Status,
		Message:       reconciliation.StatusMessage(attempt.Status),
		RedirectURL:   initiated.RedirectURL,
		Simulated:     initiated.Simulated,
	}, nil
}

func (s *Service) loadPayableOrder(ctx context.Context, userID, orderID uint64) (*entity.Order, error) {
	order, err := s.uow.GetOrderRepository(ctx).GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		s.logger.Warn("Checkout by non-owner rejected", map[string]any{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, errs.ErrForbidden
	}
	if order.IsCompleted() {
		return nil, errs.ErrOrderCompleted
	}
	return order, nil
}

// ensureNoPendingAttempt keeps at most one PENDING attempt per order.
// The partial unique index on payment_attempts backs this up under races.
func (s *Service) ensureNoPendingAttempt(ctx context.Context, orderID uint64) error {
	attempts, err := s.uow.GetAttemptRepository(ctx).ListByOrder(ctx, orderID)
	if err != nil && !errors.Is(err, errs.ErrAttemptNotFound) {
		return fmt.Errorf("failed to list payment attempts: %w", err)
	}
	for _, attempt := range attempts {
		if attempt.Status == entity.StatusPending {
			s.logger.Info("Checkout refused, payment already in progress", map[string]any{
				"order_id":       orderID,
				"correlation_id": attempt.CorrelationID,
			})
			return fmt.Errorf("%w: payment %s is still pending", errs.ErrDuplicateAttempt, attempt.CorrelationID)
		}
	}
	return nil
}

func orderReference(order *entity.Order) string {
	if order.Reference != "" {
		return order.Reference
	}
	return fmt.Sprintf("ORDER-%d", order.ID)
}
