package simulation

import (
	"context"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
)

// Gateway answers for sentinel phones and simulated ids and forwards everything else
type Gateway struct {
	next      gateway.Gateway
	simulator *Simulator
	logger    coreport.Logger
}

var _ gateway.Gateway = (*Gateway)(nil)

// Wrap puts a simulator in front of a real gateway
func Wrap(next gateway.Gateway, simulator *Simulator, logger coreport.Logger) *Gateway {
	return &Gateway{next: next, simulator: simulator, logger: logger}
}

// Method returns the wrapped gateway's method
func (g *Gateway) Method() entity.PaymentMethod {
	return g.next.Method()
}

// Authenticate is never simulated
func (g *Gateway) Authenticate(ctx context.Context) (gateway.Token, error) {
	return g.next.Authenticate(ctx)
}

// Initiate simulates sentinel phones and forwards any other number
func (g *Gateway) Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResult, error) {
	phone, err := entity.NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	scenario, ok := ScenarioFor(phone)
	if !ok {
		return g.next.Initiate(ctx, req)
	}

	result := &gateway.InitiateResult{
		CorrelationID: g.simulator.NewCorrelationID(scenario),
		SecondaryID:   g.simulator.NewSecondaryID(),
		Phone:         phone,
		Simulated:     true,
	}
	g.logger.Info("Simulated payment initiated", map[string]any{
		"gateway":        g.Method(),
		"correlation_id": result.CorrelationID,
		"order_id":       req.OrderID,
		"amount":         req.Amount.WholeUnits(),
	})
	return result, nil
}

// QueryStatus computes simulated outcomes and forwards real ids
func (g *Gateway) QueryStatus(ctx context.Context, query gateway.StatusQuery) (*gateway.StatusResult, error) {
	if !entity.IsSimulatedCorrelationID(query.CorrelationID) {
		return g.next.QueryStatus(ctx, query)
	}

	outcome, err := g.simulator.Outcome(query.CorrelationID)
	if err != nil {
		return nil, errs.NewGatewayError(string(g.Method()), "query", 0, err)
	}
	return &gateway.StatusResult{CorrelationID: query.CorrelationID, Outcome: outcome}, nil
}
