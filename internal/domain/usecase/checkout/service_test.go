package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	portuse "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/usecase"
	mcore "github.com/amirhossein-jamali/payment-reconciler/mocks/port/core"
	mgateway "github.com/amirhossein-jamali/payment-reconciler/mocks/port/gateway"
	mpersistence "github.com/amirhossein-jamali/payment-reconciler/mocks/port/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	service  *Service
	uow      *mpersistence.MockUnitOfWork
	orders   *mpersistence.MockOrderRepository
	attempts *mpersistence.MockPaymentAttemptRepository
	gateway  *mgateway.MockGateway
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	uow := mpersistence.NewMockUnitOfWork(t)
	orders := mpersistence.NewMockOrderRepository(t)
	attempts := mpersistence.NewMockPaymentAttemptRepository(t)
	uow.On("GetOrderRepository", mock.Anything).Return(orders).Maybe()
	uow.On("GetAttemptRepository", mock.Anything).Return(attempts).Maybe()

	timeProvider := mcore.NewMockTimeProvider(t)
	timeProvider.On("Now").Return(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)).Maybe()

	gw := mgateway.NewMockGateway(t)
	service := NewService(uow, gateway.MapRegistry{entity.MethodMpesa: gw}, timeProvider, mcore.NewPermissiveMockLogger(t))

	return &checkoutFixture{service: service, uow: uow, orders: orders, attempts: attempts, gateway: gw}
}

func testOrder() *entity.Order {
	return &entity.Order{
		ID:            42,
		UserID:        3,
		Reference:     "ORD-42",
		PaymentStatus: entity.PaymentPending,
		Items: []entity.OrderItem{
			{ID: 1, Title: "Kikoi", Quantity: 2, UnitPrice: entity.NewAmount(decimal.RequireFromString("750.50"))},
		},
	}
}

func testRequest() portuse.CheckoutRequest {
	return portuse.CheckoutRequest{
		UserID:  3,
		OrderID: 42,
		Method:  entity.MethodMpesa,
		Phone:   "0712 345 678",
		Billing: entity.Billing{FirstName: "Amina", LastName: "Otieno", Email: "amina@example.com"},
	}
}

func TestStart(t *testing.T) {
	t.Run("Creates one pending attempt", func(t *testing.T) {
		f := newCheckoutFixture(t)
		req := testRequest()

		f.orders.On("GetByID", mock.Anything, uint64(42)).Return(testOrder(), nil).Once()
		f.attempts.On("ListByOrder", mock.Anything, uint64(42)).Return([]*entity.PaymentAttempt{
			{CorrelationID: "ws_CO_old", Status: entity.StatusCancelled},
		}, nil).Once()
		f.orders.On("SaveBilling", mock.Anything, uint64(42), entity.MethodMpesa, req.Billing).Return(nil).Once()
		f.gateway.On("Initiate", mock.Anything, mock.MatchedBy(func(r gateway.InitiateRequest) bool {
			return r.Phone == "254712345678" && r.Amount.WholeUnits() == 1501 && r.Reference == "ORD-42"
		})).Return(&gateway.InitiateResult{
			CorrelationID: "ws_CO_new",
			SecondaryID:   "29115-34620561-1",
			Phone:         "254712345678",
		}, nil).Once()
		f.attempts.On("Create", mock.Anything, mock.MatchedBy(func(a *entity.PaymentAttempt) bool {
			return a.CorrelationID == "ws_CO_new" && a.Status == entity.StatusPending && a.OrderID == 42
		})).Return(nil).Once()

		result, err := f.service.Start(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "ws_CO_new", result.CorrelationID)
		assert.Equal(t, entity.StatusPending, result.Status)
		assert.Equal(t, "Waiting for payment confirmation. Please check your phone.", result.Message)
		assert.False(t, result.Simulated)
	})

	t.Run("Invalid phone fails before any lookup", func(t *testing.T) {
		f := newCheckoutFixture(t)
		req := testRequest()
		req.Phone = "12345"

		_, err := f.service.Start(context.Background(), req)
		assert.ErrorIs(t, err, errs.ErrInvalidFormat)
		f.gateway.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
	})

	t.Run("Unknown method is invalid", func(t *testing.T) {
		f := newCheckoutFixture(t)
		req := testRequest()
		req.Method = entity.MethodPesapal

		_, err := f.service.Start(context.Background(), req)
		assert.ErrorIs(t, err, errs.ErrInvalidFormat)
	})

	t.Run("Other user's order is forbidden", func(t *testing.T) {
		f := newCheckoutFixture(t)
		req := testRequest()
		req.UserID = 99
		f.orders.On("GetByID", mock.Anything, uint64(42)).Return(testOrder(), nil).Once()

		_, err := f.service.Start(context.Background(), req)
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("Completed order cannot be paid again", func(t *testing.T) {
		f := newCheckoutFixture(t)
		order := testOrder()
		order.PaymentStatus = entity.PaymentCompleted
		f.orders.On("GetByID", mock.Anything, uint64(42)).Return(order, nil).Once()

		_, err := f.service.Start(context.Background(), testRequest())
		assert.ErrorIs(t, err, errs.ErrOrderCompleted)
	})

	t.Run("Pending attempt blocks a second one", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.orders.On("GetByID", mock.Anything, uint64(42)).Return(testOrder(), nil).Once()
		f.attempts.On("ListByOrder", mock.Anything, uint64(42)).Return([]*entity.PaymentAttempt{
			{CorrelationID: "ws_CO_live", Status: entity.StatusPending},
		}, nil).Once()

		_, err := f.service.Start(context.Background(), testRequest())
		assert.ErrorIs(t, err, errs.ErrDuplicateAttempt)
		f.gateway.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
	})

	t.Run("Gateway error writes nothing to the ledger", func(t *testing.T) {
		f := newCheckoutFixture(t)
		req := testRequest()
		f.orders.On("GetByID", mock.Anything, uint64(42)).Return(testOrder(), nil).Once()
		f.attempts.On("ListByOrder", mock.Anything, uint64(42)).Return(nil, nil).Once()
		f.orders.On("SaveBilling", mock.Anything, uint64(42), entity.MethodMpesa, req.Billing).Return(nil).Once()
		f.gateway.On("Initiate", mock.Anything, mock.Anything).
			Return(nil, errs.NewGatewayError("mpesa", "initiate", 500, errors.New("boom"))).Once()

		_, err := f.service.Start(context.Background(), req)
		assert.ErrorIs(t, err, errs.ErrGateway)
		f.attempts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Missing order", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.orders.On("GetByID", mock.Anything, uint64(42)).Return(nil, errs.ErrOrderNotFound).Once()

		_, err := f.service.Start(context.Background(), testRequest())
		assert.ErrorIs(t, err, errs.ErrOrderNotFound)
	})
}
