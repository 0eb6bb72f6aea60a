package entity

import (
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
)

// AttemptStatus is the lifecycle state of a payment attempt
type AttemptStatus string

// AttemptStatus constants
const (
	StatusPending   AttemptStatus = "PENDING"
	StatusSuccess   AttemptStatus = "SUCCESS"
	StatusFailed    AttemptStatus = "FAILED"
	StatusCancelled AttemptStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is accepted from this status
func (s AttemptStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

// IsValid reports whether s is a known status
func (s AttemptStatus) IsValid() bool {
	return s == StatusPending || s.IsTerminal()
}

// PaymentMethod selects the gateway variant
type PaymentMethod string

// Supported payment methods
const (
	MethodMpesa   PaymentMethod = "mpesa"
	MethodPesapal PaymentMethod = "pesapal"
)

// SimulatedPrefix tags correlation ids synthesized in simulation mode
const SimulatedPrefix = "test_"

// Channel names the input that delivered a signal
type Channel string

// Signal channels
const (
	ChannelCallback Channel = "callback"
	ChannelPoll     Channel = "poll"
	ChannelIPN      Channel = "ipn"
	ChannelRedirect Channel = "redirect"
	ChannelSweep    Channel = "sweep"
)

// PaymentAttempt is one ledger row: a payment initiated with a gateway for an order
type PaymentAttempt struct {
	ID              uint64
	CorrelationID   string // gateway-issued, unique, used for every inbound lookup
	SecondaryID     string // merchant/request-side id, informational
	OrderID         uint64
	Method          PaymentMethod
	Phone           CanonicalPhone
	Amount          Amount
	Status          AttemptStatus
	ReceiptRef      *string
	ResultCode      string
	ResultDesc      string
	TransactionDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewPaymentAttempt creates a PENDING attempt for a freshly initiated payment
func NewPaymentAttempt(
	orderID uint64,
	method PaymentMethod,
	correlationID string,
	secondaryID string,
	phone CanonicalPhone,
	amount Amount,
	timeProvider coreport.TimeProvider,
) (*PaymentAttempt, error) {
	if orderID == 0 {
		return nil, errs.NewInvalidFormatError("order", "0", "order id must be positive")
	}
	if strings.TrimSpace(correlationID) == "" {
		return nil, errs.NewInvalidFormatError("correlation id", correlationID, "gateway returned no correlation id")
	}
	if amount.IsZero() {
		return nil, errs.NewInvalidFormatError("amount", amount.String(), "amount must be positive")
	}

	now := timeProvider.Now()
	return &PaymentAttempt{
		CorrelationID: correlationID,
		SecondaryID:   secondaryID,
		OrderID:       orderID,
		Method:        method,
		Phone:         phone,
		Amount:        amount,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsSimulated reports whether the attempt was synthesized in simulation mode
func (a *PaymentAttempt) IsSimulated() bool {
	return IsSimulatedCorrelationID(a.CorrelationID)
}

// IsSimulatedCorrelationID reports whether the id carries the simulation prefix
func IsSimulatedCorrelationID(correlationID string) bool {
	return strings.HasPrefix(correlationID, SimulatedPrefix)
}

// Receipt returns the receipt reference or an empty string
func (a *PaymentAttempt) Receipt() string {
	if a.ReceiptRef == nil {
		return ""
	}
	return *a.ReceiptRef
}

// Apply moves a PENDING attempt into the outcome's terminal status.
// Returns false without touching the attempt when it is already terminal or the outcome is still pending.
func (a *PaymentAttempt) Apply(outcome Outcome, at time.Time) bool {
	if a.Status.IsTerminal() || !outcome.Status.IsTerminal() {
		return false
	}

	a.Status = outcome.Status
	a.ResultCode = outcome.Code
	a.ResultDesc = outcome.Description
	if outcome.Status == StatusSuccess {
		if outcome.ReceiptRef != "" {
			receipt := outcome.ReceiptRef
			a.ReceiptRef = &receipt
		}
		a.TransactionDate = outcome.PaidAt
	}
	a.UpdatedAt = at
	return true
}
