package reconciliation

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	portuse "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/usecase"
)

// HandleCallback applies an outcome pushed by the gateway to the public webhook
func (e *Engine) HandleCallback(ctx context.Context, correlationID string, outcome entity.Outcome) (*portuse.ApplyResult, error) {
	return e.ApplyResult(ctx, correlationID, outcome, entity.ChannelCallback)
}

// HandleIPN reconciles an attempt named by an instant payment notification.
// The notification only carries an identifier, so the status is always re-fetched.
func (e *Engine) HandleIPN(ctx context.Context, correlationID string) (*portuse.ApplyResult, error) {
	return e.Reconcile(ctx, correlationID, entity.ChannelIPN)
}

// Reconcile fetches the authoritative status from the attempt's gateway, bypassing
// the short status cache, and applies it
func (e *Engine) Reconcile(ctx context.Context, correlationID string, channel entity.Channel) (*portuse.ApplyResult, error) {
	attempt, err := e.uow.GetAttemptRepository(ctx).GetByCorrelationID(ctx, correlationID)
	if err != nil {
		if errors.Is(err, errs.ErrAttemptNotFound) {
			e.logger.Warn("Notification for unknown payment attempt", map[string]any{
				"correlation_id": correlationID,
				"channel":        channel,
			})
		}
		return nil, err
	}

	return e.refresh(ctx, attempt, true, channel)
}

// Poll answers the owner's status question. Only a PENDING attempt triggers an
// upstream query, and an unreachable gateway is reported as "still waiting".
func (e *Engine) Poll(ctx context.Context, userID uint64, correlationID string) (*portuse.PollResult, error) {
	attempt, err := e.uow.GetAttemptRepository(ctx).GetByCorrelationID(ctx, correlationID)
	if err != nil {
		return nil, err
	}

	order, err := e.uow.GetOrderRepository(ctx).GetByID(ctx, attempt.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order for payment attempt: %w", err)
	}
	if !order.IsOwnedBy(userID) {
		e.logger.Warn("Status poll by non-owner rejected", map[string]any{
			"correlation_id": correlationID,
			"user_id":        userID,
		})
		return nil, errs.ErrForbidden
	}

	if attempt.Status.IsTerminal() {
		return newPollResult(attempt, false), nil
	}

	result, err := e.refresh(ctx, attempt, false, entity.ChannelPoll)
	if err != nil {
		if errs.IsGatewayError(err) {
			e.logger.Warn("Gateway unavailable during poll, reporting pending", coreport.ErrorFields(err, map[string]any{
				"correlation_id": correlationID,
			}))
			return newPollResult(attempt, true), nil
		}
		return nil, err
	}

	return newPollResult(result.Attempt, false), nil
}

// refresh queries the attempt's gateway and applies whatever it learns
func (e *Engine) refresh(
	ctx context.Context,
	attempt *entity.PaymentAttempt,
	bypassCache bool,
	channel entity.Channel,
) (*portuse.ApplyResult, error) {
	gw, ok := e.gateways.Get(attempt.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedMethod, attempt.Method)
	}

	status, err := gw.QueryStatus(ctx, gateway.StatusQuery{
		CorrelationID: attempt.CorrelationID,
		BypassCache:   bypassCache,
	})
	if err != nil {
		return nil, err
	}

	return e.ApplyResult(ctx, attempt.CorrelationID, status.Outcome, channel)
}

func newPollResult(attempt *entity.PaymentAttempt, retryLater bool) *portuse.PollResult {
	return &portuse.PollResult{
		CorrelationID: attempt.CorrelationID,
		Status:        attempt.Status,
		Message:       StatusMessage(attempt.Status),
		ReceiptRef:    attempt.Receipt(),
		Amount:        attempt.Amount,
		RetryLater:    retryLater,
	}
}
