package reconciliation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	portuse "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/usecase"
	"golang.org/x/sync/errgroup"
)

// SweepPending polls every attempt that has been PENDING for longer than age.
// Per-attempt failures are counted and logged; only a failure to list pending
// attempts is returned.
func (e *Engine) SweepPending(ctx context.Context, age time.Duration, limit int) (*portuse.SweepReport, error) {
	cutoff := e.timeProvider.Now().Add(-age)

	pending, err := e.uow.GetAttemptRepository(ctx).ListPending(ctx, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payment attempts: %w", err)
	}

	report := &portuse.SweepReport{Checked: len(pending)}
	if len(pending) == 0 {
		return report, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.SweepConcurrency)

	for _, attempt := range pending {
		g.Go(func() error {
			result, err := e.refresh(gctx, attempt, false, entity.ChannelSweep)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
				e.logger.Warn("Sweep could not reconcile payment attempt", coreport.ErrorFields(err, map[string]any{
					"correlation_id": attempt.CorrelationID,
				}))
			case result.Kind == portuse.ResultTransitioned:
				report.Transitioned++
			case result.Kind == portuse.ResultStillPending:
				report.StillPending++
			}
			return nil
		})
	}
	_ = g.Wait()

	e.logger.Info("Pending payment sweep finished", map[string]any{
		"checked":       report.Checked,
		"transitioned":  report.Transitioned,
		"still_pending": report.StillPending,
		"failed":        report.Failed,
	})

	return report, nil
}

// RunSweeper sweeps on every interval until ctx is cancelled
func (e *Engine) RunSweeper(ctx context.Context, interval, age time.Duration, limit int) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.timeProvider.After(coreport.Duration(interval)):
			if _, err := e.SweepPending(ctx, age, limit); err != nil {
				e.logger.Error("Pending payment sweep failed", coreport.ErrorFields(err, nil))
			}
		}
	}
}
