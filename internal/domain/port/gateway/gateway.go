package gateway

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// Token is a bearer token issued by a gateway
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// InitiateRequest carries what a gateway needs to start collecting a payment
type InitiateRequest struct {
	OrderID     uint64
	Reference   string
	Phone       string // raw, normalized by the client before any network call
	Amount      entity.Amount
	Description string
	Billing     entity.Billing
}

// InitiateResult is what the gateway handed back for a started payment
type InitiateResult struct {
	CorrelationID string
	SecondaryID   string
	Phone         entity.CanonicalPhone
	RedirectURL   string // set by redirect-based gateways only
	Simulated     bool
}

// StatusQuery asks for the authoritative status of an attempt
type StatusQuery struct {
	CorrelationID string
	// BypassCache forces an upstream read even if a recent result is cached
	BypassCache bool
}

// StatusResult is the gateway's answer mapped onto the attempt lifecycle
type StatusResult struct {
	CorrelationID string
	Outcome       entity.Outcome
}

// Gateway is the capability set shared by every payment gateway client.
// Every failure is returned as *errs.GatewayError, except phone validation which returns ErrInvalidFormat.
type Gateway interface {
	Method() entity.PaymentMethod
	Authenticate(ctx context.Context) (Token, error)
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	QueryStatus(ctx context.Context, query StatusQuery) (*StatusResult, error)
}

// Registry resolves the gateway for a payment method
type Registry interface {
	Get(method entity.PaymentMethod) (Gateway, bool)
}

// MapRegistry is a Registry backed by a map
type MapRegistry map[entity.PaymentMethod]Gateway

// NewRegistry builds a registry from gateways keyed by their own method
func NewRegistry(gateways ...Gateway) MapRegistry {
	registry := make(MapRegistry, len(gateways))
	for _, gw := range gateways {
		registry[gw.Method()] = gw
	}
	return registry
}

// Get returns the gateway registered for method
func (r MapRegistry) Get(method entity.PaymentMethod) (Gateway, bool) {
	gw, ok := r[method]
	return gw, ok
}
