package transport

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/cache"
	mcore "github.com/amirhossein-jamali/payment-reconciler/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSource(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, fetch FetchFunc) (*TokenSource, *mcore.FakeClock) {
		clock := mcore.NewFakeClock(t, start)
		tokenCache := cache.NewTTLCache[string, gateway.Token](50*time.Minute, clock)
		return NewTokenSource("test", tokenCache, clock, fetch), clock
	}

	t.Run("Concurrent callers share one fetch", func(t *testing.T) {
		var fetches atomic.Int32
		release := make(chan struct{})
		source, _ := setup(t, func(ctx context.Context) (gateway.Token, error) {
			fetches.Add(1)
			<-release
			return gateway.Token{Value: "tok", ExpiresAt: start.Add(time.Hour)}, nil
		})

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				token, err := source.Token(ctx)
				assert.NoError(t, err)
				assert.Equal(t, "tok", token.Value)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), fetches.Load())
	})

	t.Run("Token expiry shorter than the cache TTL is honored", func(t *testing.T) {
		var fetches atomic.Int32
		source, clock := setup(t, func(ctx context.Context) (gateway.Token, error) {
			fetches.Add(1)
			return gateway.Token{Value: "tok", ExpiresAt: start.Add(5 * time.Minute)}, nil
		})

		_, err := source.Token(ctx)
		require.NoError(t, err)
		clock.Advance(4 * time.Minute)
		_, err = source.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(1), fetches.Load())

		clock.Advance(2 * time.Minute)
		_, err = source.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(2), fetches.Load())
	})

	t.Run("Token is refreshed before the gateway expires it", func(t *testing.T) {
		var fetches atomic.Int32
		source, clock := setup(t, func(ctx context.Context) (gateway.Token, error) {
			n := fetches.Add(1)
			return gateway.Token{Value: []string{"", "tok-1", "tok-2"}[n], ExpiresAt: start.Add(5 * time.Minute)}, nil
		})

		token, err := source.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token.Value)

		// 40s before the gateway's own expiry
		clock.Advance(4*time.Minute + 20*time.Second)
		token, err = source.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok-2", token.Value)
		assert.Equal(t, int32(2), fetches.Load())
	})

	t.Run("Fetch failures are not cached", func(t *testing.T) {
		var fetches atomic.Int32
		source, _ := setup(t, func(ctx context.Context) (gateway.Token, error) {
			if fetches.Add(1) == 1 {
				return gateway.Token{}, errors.New("down")
			}
			return gateway.Token{Value: "tok", ExpiresAt: start.Add(time.Hour)}, nil
		})

		_, err := source.Token(ctx)
		assert.Error(t, err)
		token, err := source.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok", token.Value)
	})

	t.Run("Do retries once with a fresh token after an auth error", func(t *testing.T) {
		var fetches atomic.Int32
		source, _ := setup(t, func(ctx context.Context) (gateway.Token, error) {
			n := fetches.Add(1)
			return gateway.Token{Value: []string{"", "stale", "fresh"}[n], ExpiresAt: start.Add(time.Hour)}, nil
		})

		var seen []string
		err := source.Do(ctx, func(token string) error {
			seen = append(seen, token)
			if token == "stale" {
				return errs.NewGatewayError("test", "call", 401, errs.ErrAuth)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"stale", "fresh"}, seen)
	})

	t.Run("Do does not retry other errors", func(t *testing.T) {
		source, _ := setup(t, func(ctx context.Context) (gateway.Token, error) {
			return gateway.Token{Value: "tok", ExpiresAt: start.Add(time.Hour)}, nil
		})

		calls := 0
		err := source.Do(ctx, func(string) error {
			calls++
			return errs.NewGatewayError("test", "call", 502, errors.New("bad gateway"))
		})
		assert.ErrorIs(t, err, errs.ErrGateway)
		assert.Equal(t, 1, calls)
	})
}
