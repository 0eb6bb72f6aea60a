package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// ResultKind classifies what a signal did to an attempt
type ResultKind string

// Result kinds
const (
	// ResultTransitioned means this signal moved the attempt out of PENDING
	ResultTransitioned ResultKind = "transitioned"
	// ResultNoOp means the attempt already had the reported status
	ResultNoOp ResultKind = "noop"
	// ResultAnomaly means the signal contradicted a terminal status and was discarded
	ResultAnomaly ResultKind = "anomaly"
	// ResultStillPending means the gateway hasn't decided yet
	ResultStillPending ResultKind = "still_pending"
)

// ApplyResult is the outcome of feeding one signal through the state machine
type ApplyResult struct {
	Kind           ResultKind
	Attempt        *entity.PaymentAttempt // state after the signal
	Previous       entity.AttemptStatus
	OrderCompleted bool  // true only for the signal that completed the order
	Anomaly        error // *errs.AnomalyError when Kind is ResultAnomaly
}

// PollResult is what the owning user sees when asking for a status
type PollResult struct {
	CorrelationID string
	Status        entity.AttemptStatus
	Message       string
	ReceiptRef    string
	Amount        entity.Amount
	// RetryLater is set when the gateway couldn't be reached; the status stays PENDING
	RetryLater bool
}

// SweepReport summarizes one pass over stale PENDING attempts
type SweepReport struct {
	Checked      int
	Transitioned int
	StillPending int
	Failed       int
}

// ReconciliationUseCase is the single entry point for every post-initiation payment signal
type ReconciliationUseCase interface {
	// ApplyResult is the shared transition used by every channel
	ApplyResult(ctx context.Context, correlationID string, outcome entity.Outcome, channel entity.Channel) (*ApplyResult, error)

	// HandleCallback applies a result pushed by the gateway
	HandleCallback(ctx context.Context, correlationID string, outcome entity.Outcome) (*ApplyResult, error)

	// HandleIPN re-fetches the authoritative status for a bare identifier and applies it
	HandleIPN(ctx context.Context, correlationID string) (*ApplyResult, error)

	// Reconcile re-fetches the authoritative status and applies it on behalf of channel
	Reconcile(ctx context.Context, correlationID string, channel entity.Channel) (*ApplyResult, error)

	// Poll answers the owning user's status question, querying upstream only while PENDING
	Poll(ctx context.Context, userID uint64, correlationID string) (*PollResult, error)

	// SweepPending polls attempts left PENDING longer than age
	SweepPending(ctx context.Context, age time.Duration, limit int) (*SweepReport, error)
}
