package middleware

import (
	"context"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/cache"
)

// StatusCache is the process-wide store of recent status reads
type StatusCache = cache.TTLCache[string, gateway.StatusResult]

// CachedGateway serves repeated status queries for the same id from a short-lived cache
type CachedGateway struct {
	next   gateway.Gateway
	cache  *StatusCache
	logger coreport.Logger
}

var _ gateway.Gateway = (*CachedGateway)(nil)

// WithStatusCache wraps a gateway so successful status reads are cached
func WithStatusCache(next gateway.Gateway, statusCache *StatusCache, logger coreport.Logger) *CachedGateway {
	return &CachedGateway{next: next, cache: statusCache, logger: logger}
}

// Method returns the wrapped gateway's method
func (g *CachedGateway) Method() entity.PaymentMethod {
	return g.next.Method()
}

// Authenticate passes through
func (g *CachedGateway) Authenticate(ctx context.Context) (gateway.Token, error) {
	return g.next.Authenticate(ctx)
}

// Initiate passes through
func (g *CachedGateway) Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResult, error) {
	return g.next.Initiate(ctx, req)
}

// QueryStatus returns a cached read unless the query bypasses the cache.
// Fresh reads always refresh the cache, failures never do.
func (g *CachedGateway) QueryStatus(ctx context.Context, query gateway.StatusQuery) (*gateway.StatusResult, error) {
	key := string(g.next.Method()) + ":" + query.CorrelationID

	if !query.BypassCache {
		if cached, ok := g.cache.Get(key); ok {
			g.logger.Debug("Status served from cache", map[string]any{
				"gateway":        g.next.Method(),
				"correlation_id": query.CorrelationID,
			})
			result := cached
			return &result, nil
		}
	}

	result, err := g.next.QueryStatus(ctx, query)
	if err != nil {
		return nil, err
	}
	g.cache.Set(key, *result)
	return result, nil
}
