package reconciliation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/notifier"
	portuse "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/usecase"
	mcore "github.com/amirhossein-jamali/payment-reconciler/mocks/port/core"
	mgateway "github.com/amirhossein-jamali/payment-reconciler/mocks/port/gateway"
	mnotifier "github.com/amirhossein-jamali/payment-reconciler/mocks/port/notifier"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testOrderID = uint64(42)
	testOwnerID = uint64(3)
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type engineFixture struct {
	engine   *Engine
	ledger   *memoryLedger
	gateway  *mgateway.MockGateway
	notifier *mnotifier.MockNotifier
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	timeProvider := mcore.NewMockTimeProvider(t)
	timeProvider.On("Now").Return(testNow).Maybe()
	timeProvider.On("WithTimeout", mock.Anything, mock.Anything).Return(
		func(ctx context.Context, d coreport.Duration) (context.Context, context.CancelFunc) {
			return context.WithTimeout(ctx, d.Std())
		},
	).Maybe()

	ledger := newMemoryLedger()
	ledger.putOrder(&entity.Order{
		ID:            testOrderID,
		UserID:        testOwnerID,
		Reference:     "ORD-42",
		PaymentStatus: entity.PaymentPending,
		Items: []entity.OrderItem{
			{ID: 1, OrderID: testOrderID, Title: "Kikoi", Quantity: 2, UnitPrice: entity.NewAmount(decimal.NewFromInt(750))},
		},
	})

	gw := mgateway.NewMockGateway(t)
	ntf := mnotifier.NewMockNotifier(t)

	engine := NewEngine(
		ledger,
		gateway.MapRegistry{entity.MethodMpesa: gw},
		ntf,
		timeProvider,
		mcore.NewPermissiveMockLogger(t),
		Config{NotifyTimeout: time.Second, SweepConcurrency: 2},
	)

	return &engineFixture{engine: engine, ledger: ledger, gateway: gw, notifier: ntf}
}

func (f *engineFixture) addPendingAttempt(correlationID string, createdAt time.Time) {
	f.ledger.putAttempt(&entity.PaymentAttempt{
		CorrelationID: correlationID,
		OrderID:       testOrderID,
		Method:        entity.MethodMpesa,
		Phone:         "254712345678",
		Amount:        entity.NewAmount(decimal.NewFromInt(1500)),
		Status:        entity.StatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	})
}

func successOutcome(receipt string) entity.Outcome {
	paidAt := testNow.Add(-2 * time.Second)
	return entity.Outcome{
		Status:      entity.StatusSuccess,
		Code:        entity.ResultCodeSuccess,
		Description: "The service request is processed successfully.",
		ReceiptRef:  receipt,
		PaidAt:      &paidAt,
	}
}

func TestApplyResult(t *testing.T) {
	t.Run("Success completes attempt and order", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_1", testNow)
		f.notifier.On("PaymentConfirmed", mock.Anything, mock.MatchedBy(func(c notifier.PaymentConfirmation) bool {
			return c.CorrelationID == "ws_CO_1" && c.ReceiptRef == "QKJ7H2L9" && c.Order.ID == testOrderID
		})).Return(nil).Once()

		result, err := f.engine.ApplyResult(context.Background(), "ws_CO_1", successOutcome("QKJ7H2L9"), entity.ChannelCallback)
		require.NoError(t, err)
		f.engine.Shutdown()

		assert.Equal(t, portuse.ResultTransitioned, result.Kind)
		assert.Equal(t, entity.StatusPending, result.Previous)
		assert.True(t, result.OrderCompleted)

		attempt := f.ledger.attempt("ws_CO_1")
		assert.Equal(t, entity.StatusSuccess, attempt.Status)
		assert.Equal(t, "QKJ7H2L9", attempt.Receipt())

		order := f.ledger.order(testOrderID)
		assert.Equal(t, entity.PaymentCompleted, order.PaymentStatus)
		assert.True(t, order.Ordered)
		assert.Equal(t, testNow, *order.OrderedAt)
		assert.True(t, order.Items[0].Ordered)
	})

	t.Run("Duplicate success is a no-op", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_2", testNow)
		f.notifier.On("PaymentConfirmed", mock.Anything, mock.Anything).Return(nil)

		for i := 0; i < 3; i++ {
			_, err := f.engine.ApplyResult(context.Background(), "ws_CO_2", successOutcome("R1"), entity.ChannelCallback)
			require.NoError(t, err)
		}
		result, err := f.engine.ApplyResult(context.Background(), "ws_CO_2", successOutcome("R1"), entity.ChannelPoll)
		require.NoError(t, err)
		f.engine.Shutdown()

		assert.Equal(t, portuse.ResultNoOp, result.Kind)
		assert.Equal(t, 1, f.ledger.completed)
		f.notifier.AssertNumberOfCalls(t, "PaymentConfirmed", 1)
		assert.Zero(t, f.ledger.anomalyCount())
	})

	t.Run("Failure marks order failed without notification", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_3", testNow)

		result, err := f.engine.ApplyResult(context.Background(), "ws_CO_3",
			entity.OutcomeFromResultCode("1", "The balance is insufficient for the transaction."), entity.ChannelCallback)
		require.NoError(t, err)
		f.engine.Shutdown()

		assert.Equal(t, portuse.ResultTransitioned, result.Kind)
		assert.False(t, result.OrderCompleted)
		attempt := f.ledger.attempt("ws_CO_3")
		assert.Equal(t, entity.StatusFailed, attempt.Status)
		assert.Nil(t, attempt.ReceiptRef)
		assert.Equal(t, entity.PaymentFailed, f.ledger.order(testOrderID).PaymentStatus)
		f.notifier.AssertNotCalled(t, "PaymentConfirmed", mock.Anything, mock.Anything)
	})

	t.Run("Cancellation maps to cancelled order status", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_4", testNow)

		_, err := f.engine.ApplyResult(context.Background(), "ws_CO_4",
			entity.OutcomeFromResultCode("1032", "Request cancelled by user"), entity.ChannelCallback)
		require.NoError(t, err)

		assert.Equal(t, entity.StatusCancelled, f.ledger.attempt("ws_CO_4").Status)
		assert.Equal(t, entity.PaymentCancelled, f.ledger.order(testOrderID).PaymentStatus)
	})

	t.Run("Contradicting outcome is an anomaly", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_5", testNow)

		_, err := f.engine.ApplyResult(context.Background(), "ws_CO_5",
			entity.OutcomeFromResultCode("1", "failed"), entity.ChannelCallback)
		require.NoError(t, err)

		result, err := f.engine.ApplyResult(context.Background(), "ws_CO_5", successOutcome("LATE"), entity.ChannelPoll)
		require.NoError(t, err)

		assert.Equal(t, portuse.ResultAnomaly, result.Kind)
		assert.True(t, errs.IsAnomalyError(result.Anomaly))
		settled := f.ledger.attempt("ws_CO_5")
		assert.Equal(t, entity.StatusFailed, settled.Status)
		assert.Equal(t, "", settled.Receipt())
		assert.Equal(t, entity.PaymentFailed, f.ledger.order(testOrderID).PaymentStatus)
		assert.Equal(t, 1, f.ledger.anomalyCount())
	})

	t.Run("Pending outcome leaves attempt untouched", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_6", testNow)

		result, err := f.engine.ApplyResult(context.Background(), "ws_CO_6",
			entity.OutcomeFromResultCode(entity.ResultCodeProcessing, "The transaction is being processed"), entity.ChannelPoll)
		require.NoError(t, err)

		assert.Equal(t, portuse.ResultStillPending, result.Kind)
		assert.Equal(t, entity.StatusPending, f.ledger.attempt("ws_CO_6").Status)
		assert.Equal(t, entity.PaymentPending, f.ledger.order(testOrderID).PaymentStatus)
	})

	t.Run("Pending outcome against settled attempt is a no-op", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_7", testNow)

		_, err := f.engine.ApplyResult(context.Background(), "ws_CO_7",
			entity.OutcomeFromResultCode("1037", "timeout"), entity.ChannelCallback)
		require.NoError(t, err)

		result, err := f.engine.ApplyResult(context.Background(), "ws_CO_7",
			entity.OutcomeFromResultCode("2001", "unknown"), entity.ChannelPoll)
		require.NoError(t, err)
		assert.Equal(t, portuse.ResultNoOp, result.Kind)
		assert.Zero(t, f.ledger.anomalyCount())
	})

	t.Run("Unknown correlation id", func(t *testing.T) {
		f := newEngineFixture(t)

		result, err := f.engine.ApplyResult(context.Background(), "ws_CO_missing", successOutcome("R"), entity.ChannelCallback)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, errs.ErrAttemptNotFound)
	})

	t.Run("Notifier failure does not affect the result", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_8", testNow)
		f.notifier.On("PaymentConfirmed", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

		result, err := f.engine.ApplyResult(context.Background(), "ws_CO_8", successOutcome("R8"), entity.ChannelCallback)
		require.NoError(t, err)
		f.engine.Shutdown()

		assert.Equal(t, portuse.ResultTransitioned, result.Kind)
		assert.Equal(t, entity.PaymentCompleted, f.ledger.order(testOrderID).PaymentStatus)
	})
}

func TestApplyResultConcurrentSignals(t *testing.T) {
	f := newEngineFixture(t)
	f.addPendingAttempt("ws_CO_race", testNow)
	f.notifier.On("PaymentConfirmed", mock.Anything, mock.Anything).Return(nil)

	const signals = 50
	kinds := make(chan portuse.ResultKind, signals)
	var wg sync.WaitGroup
	channels := []entity.Channel{entity.ChannelCallback, entity.ChannelPoll, entity.ChannelIPN}

	for i := 0; i < signals; i++ {
		wg.Add(1)
		go func(channel entity.Channel) {
			defer wg.Done()
			result, err := f.engine.ApplyResult(context.Background(), "ws_CO_race", successOutcome("RACE1"), channel)
			if assert.NoError(t, err) {
				kinds <- result.Kind
			}
		}(channels[i%len(channels)])
	}
	wg.Wait()
	close(kinds)
	f.engine.Shutdown()

	counts := make(map[portuse.ResultKind]int)
	for kind := range kinds {
		counts[kind]++
	}

	assert.Equal(t, 1, counts[portuse.ResultTransitioned])
	assert.Equal(t, signals-1, counts[portuse.ResultNoOp])
	assert.Equal(t, 1, f.ledger.completed)
	f.notifier.AssertNumberOfCalls(t, "PaymentConfirmed", 1)
}

func TestSignalOrderIndependence(t *testing.T) {
	f := newEngineFixture(t)
	f.addPendingAttempt("ws_CO_order", testNow)
	f.notifier.On("PaymentConfirmed", mock.Anything, mock.Anything).Return(nil)
	f.gateway.On("QueryStatus", mock.Anything, gateway.StatusQuery{CorrelationID: "ws_CO_order", BypassCache: true}).
		Return(&gateway.StatusResult{CorrelationID: "ws_CO_order", Outcome: successOutcome("ORD1")}, nil)

	// IPN first, then the late push callback
	first, err := f.engine.HandleIPN(context.Background(), "ws_CO_order")
	require.NoError(t, err)
	second, err := f.engine.HandleCallback(context.Background(), "ws_CO_order", successOutcome("ORD1"))
	require.NoError(t, err)
	poll, err := f.engine.Poll(context.Background(), testOwnerID, "ws_CO_order")
	require.NoError(t, err)
	f.engine.Shutdown()

	assert.Equal(t, portuse.ResultTransitioned, first.Kind)
	assert.Equal(t, portuse.ResultNoOp, second.Kind)
	assert.Equal(t, entity.StatusSuccess, poll.Status)
	assert.Equal(t, "ORD1", poll.ReceiptRef)
	f.notifier.AssertNumberOfCalls(t, "PaymentConfirmed", 1)
	f.gateway.AssertNumberOfCalls(t, "QueryStatus", 1)
}

func TestPoll(t *testing.T) {
	t.Run("Non-owner is rejected", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_p1", testNow)

		result, err := f.engine.Poll(context.Background(), testOwnerID+1, "ws_CO_p1")
		assert.Nil(t, result)
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("Pending attempt queries gateway with cache", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_p2", testNow)
		f.notifier.On("PaymentConfirmed", mock.Anything, mock.Anything).Return(nil).Once()
		f.gateway.On("QueryStatus", mock.Anything, gateway.StatusQuery{CorrelationID: "ws_CO_p2"}).
			Return(&gateway.StatusResult{CorrelationID: "ws_CO_p2", Outcome: successOutcome("P2")}, nil).Once()

		result, err := f.engine.Poll(context.Background(), testOwnerID, "ws_CO_p2")
		require.NoError(t, err)
		f.engine.Shutdown()

		assert.Equal(t, entity.StatusSuccess, result.Status)
		assert.Equal(t, StatusMessage(entity.StatusSuccess), result.Message)
		assert.Equal(t, "P2", result.ReceiptRef)
		assert.False(t, result.RetryLater)
	})

	t.Run("Gateway timeout reads as pending", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_p3", testNow)
		timeout := errs.NewGatewayError("mpesa", "query", 0, context.DeadlineExceeded)
		timeout.Timeout = true
		f.gateway.On("QueryStatus", mock.Anything, mock.Anything).Return(nil, timeout).Once()

		result, err := f.engine.Poll(context.Background(), testOwnerID, "ws_CO_p3")
		require.NoError(t, err)

		assert.Equal(t, entity.StatusPending, result.Status)
		assert.True(t, result.RetryLater)
		assert.Equal(t, StatusMessage(entity.StatusPending), result.Message)
		assert.Equal(t, entity.StatusPending, f.ledger.attempt("ws_CO_p3").Status)
	})

	t.Run("Settled attempt answers from the ledger", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addPendingAttempt("ws_CO_p4", testNow)
		_, err := f.engine.ApplyResult(context.Background(), "ws_CO_p4",
			entity.OutcomeFromResultCode("1032", "cancelled"), entity.ChannelCallback)
		require.NoError(t, err)

		result, err := f.engine.Poll(context.Background(), testOwnerID, "ws_CO_p4")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCancelled, result.Status)
		f.gateway.AssertNotCalled(t, "QueryStatus", mock.Anything, mock.Anything)
	})

	t.Run("Unknown attempt", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Poll(context.Background(), testOwnerID, "nope")
		assert.ErrorIs(t, err, errs.ErrAttemptNotFound)
	})
}

func TestReconcileUnsupportedMethod(t *testing.T) {
	f := newEngineFixture(t)
	f.ledger.putAttempt(&entity.PaymentAttempt{
		CorrelationID: "pp-1",
		OrderID:       testOrderID,
		Method:        entity.MethodPesapal,
		Amount:        entity.NewAmount(decimal.NewFromInt(10)),
		Status:        entity.StatusPending,
	})

	_, err := f.engine.Reconcile(context.Background(), "pp-1", entity.ChannelRedirect)
	assert.ErrorIs(t, err, errs.ErrUnsupportedMethod)
}
