package reconciliation

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	portuse "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/usecase"
)

// ApplyResult feeds one gateway outcome into the attempt's state machine.
//
// PENDING moves to the outcome's terminal status through a compare-and-swap,
// together with the owning order, in one unit of work. A terminal attempt is
// never changed: the same status is a no-op, a different one is an anomaly.
func (e *Engine) ApplyResult(
	ctx context.Context,
	correlationID string,
	outcome entity.Outcome,
	channel entity.Channel,
) (*portuse.ApplyResult, error) {
	attempts := e.uow.GetAttemptRepository(ctx)

	attempt, err := attempts.GetByCorrelationID(ctx, correlationID)
	if err != nil {
		if errors.Is(err, errs.ErrAttemptNotFound) {
			e.logger.Warn("Signal for unknown payment attempt", map[string]any{
				"correlation_id": correlationID,
				"channel":        channel,
				"result_code":    outcome.Code,
			})
			return nil, err
		}
		return nil, fmt.Errorf("failed to load payment attempt: %w", err)
	}

	if attempt.Status.IsTerminal() {
		return e.resolveSettled(ctx, attempt, outcome, channel), nil
	}

	if outcome.IsPending() {
		e.logger.Debug("Payment attempt still pending", map[string]any{
			"correlation_id": correlationID,
			"channel":        channel,
			"result_code":    outcome.Code,
		})
		return &portuse.ApplyResult{
			Kind:     portuse.ResultStillPending,
			Attempt:  attempt,
			Previous: attempt.Status,
		}, nil
	}

	now := e.timeProvider.Now()
	var won, orderCompleted bool

	err = e.uow.Do(ctx, func(txCtx context.Context) error {
		// Do may run this more than once
		won, orderCompleted = false, false

		swapped, err := e.uow.GetAttemptRepository(txCtx).TransitionFromPending(txCtx, correlationID, outcome, now)
		if err != nil {
			return err
		}
		if !swapped {
			return nil
		}
		won = true

		orders := e.uow.GetOrderRepository(txCtx)
		if outcome.Status == entity.StatusSuccess {
			orderCompleted, err = orders.MarkCompleted(txCtx, attempt.OrderID, now)
			return err
		}
		return orders.MarkPaymentFailed(txCtx, attempt.OrderID, entity.PaymentStatusFor(outcome.Status))
	})
	if err != nil {
		e.logger.Error("Failed to apply payment result", coreport.ErrorFields(err, map[string]any{
			"correlation_id": correlationID,
			"channel":        channel,
			"status":         outcome.Status,
		}))
		return nil, fmt.Errorf("failed to apply payment result: %w", err)
	}

	if !won {
		// Someone else moved it out of PENDING between our read and our write
		current, err := attempts.GetByCorrelationID(ctx, correlationID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload payment attempt: %w", err)
		}
		return e.resolveSettled(ctx, current, outcome, channel), nil
	}

	previous := attempt.Status
	attempt.Apply(outcome, now)

	e.logger.Info("Payment attempt transitioned", map[string]any{
		"correlation_id":  correlationID,
		"order_id":        attempt.OrderID,
		"channel":         channel,
		"status":          attempt.Status,
		"receipt":         attempt.Receipt(),
		"order_completed": orderCompleted,
		"simulated":       attempt.IsSimulated(),
	})

	if orderCompleted {
		e.dispatchConfirmation(attempt, now)
	}

	return &portuse.ApplyResult{
		Kind:           portuse.ResultTransitioned,
		Attempt:        attempt,
		Previous:       previous,
		OrderCompleted: orderCompleted,
	}, nil
}

// resolveSettled classifies a signal against an attempt that is no longer PENDING
func (e *Engine) resolveSettled(
	ctx context.Context,
	attempt *entity.PaymentAttempt,
	outcome entity.Outcome,
	channel entity.Channel,
) *portuse.ApplyResult {
	// A stale "still processing" answer says nothing new
	if outcome.IsPending() || outcome.Status == attempt.Status {
		e.logger.Debug("Duplicate payment signal ignored", map[string]any{
			"correlation_id": attempt.CorrelationID,
			"channel":        channel,
			"status":         attempt.Status,
		})
		return &portuse.ApplyResult{
			Kind:     portuse.ResultNoOp,
			Attempt:  attempt,
			Previous: attempt.Status,
		}
	}

	anomalyErr := errs.NewAnomalyError(attempt.CorrelationID, string(attempt.Status), string(outcome.Status), string(channel))
	e.logger.Warn("Payment signal contradicts settled attempt", coreport.ErrorFields(anomalyErr, map[string]any{
		"order_id":    attempt.OrderID,
		"result_code": outcome.Code,
	}))

	anomaly := &entity.Anomaly{
		CorrelationID:  attempt.CorrelationID,
		StoredStatus:   attempt.Status,
		IncomingStatus: outcome.Status,
		IncomingCode:   outcome.Code,
		Channel:        channel,
		Detail:         outcome.Description,
		CreatedAt:      e.timeProvider.Now(),
	}
	if err := e.uow.GetAnomalyRepository(ctx).Record(ctx, anomaly); err != nil {
		e.logger.Error("Failed to record payment anomaly", coreport.ErrorFields(err, map[string]any{
			"correlation_id": attempt.CorrelationID,
		}))
	}

	return &portuse.ApplyResult{
		Kind:     portuse.ResultAnomaly,
		Attempt:  attempt,
		Previous: attempt.Status,
		Anomaly:  anomalyErr,
	}
}
