package transport

import (
	"context"
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/cache"
	"golang.org/x/sync/singleflight"
)

// TokenCache is the process-wide bearer token store shared by every gateway client
type TokenCache = cache.TTLCache[string, gateway.Token]

// A token is dropped from the cache once this fraction of its lifetime is left
const refreshMarginDivisor = 6

// FetchFunc asks the gateway for a new token
type FetchFunc func(ctx context.Context) (gateway.Token, error)

// TokenSource hands out a cached bearer token. Concurrent refreshes share one upstream call.
type TokenSource struct {
	key   string
	cache *TokenCache
	clock coreport.TimeProvider
	fetch FetchFunc
	group singleflight.Group
}

// NewTokenSource creates a token source storing its token under key
func NewTokenSource(key string, tokenCache *TokenCache, clock coreport.TimeProvider, fetch FetchFunc) *TokenSource {
	return &TokenSource{key: key, cache: tokenCache, clock: clock, fetch: fetch}
}

// Token returns the cached token or fetches a new one
func (s *TokenSource) Token(ctx context.Context) (gateway.Token, error) {
	if token, ok := s.cache.Get(s.key); ok {
		return token, nil
	}

	v, err, _ := s.group.Do(s.key, func() (any, error) {
		if token, ok := s.cache.Get(s.key); ok {
			return token, nil
		}
		// the shared fetch must not die with whichever caller started it
		token, err := s.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return gateway.Token{}, err
		}
		s.cache.SetUntil(s.key, token, refreshAt(token.ExpiresAt, s.clock.Now()))
		return token, nil
	})
	if err != nil {
		return gateway.Token{}, err
	}
	return v.(gateway.Token), nil
}

// refreshAt is when a token issued now should leave the cache: a sixth of its
// lifetime early, so a request never carries a token the gateway already dropped
func refreshAt(expiresAt, now time.Time) time.Time {
	lifetime := expiresAt.Sub(now)
	if lifetime <= 0 {
		return expiresAt
	}
	return expiresAt.Add(-lifetime / refreshMarginDivisor)
}

// Invalidate evicts the cached token
func (s *TokenSource) Invalidate() {
	s.cache.Delete(s.key)
}

// Do runs call with a bearer token. If the gateway rejects the token, it is
// evicted and call runs once more with a fresh one.
func (s *TokenSource) Do(ctx context.Context, call func(token string) error) error {
	token, err := s.Token(ctx)
	if err != nil {
		return err
	}

	err = call(token.Value)
	if !errs.IsAuthError(err) {
		return err
	}

	s.Invalidate()
	token, err = s.Token(ctx)
	if err != nil {
		return err
	}
	return call(token.Value)
}

// Bearer formats an Authorization header value
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
