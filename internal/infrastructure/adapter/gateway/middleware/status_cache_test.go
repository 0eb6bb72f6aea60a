package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/cache"
	mcore "github.com/amirhossein-jamali/payment-reconciler/mocks/port/core"
	mgateway "github.com/amirhossein-jamali/payment-reconciler/mocks/port/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedGateway(t *testing.T) {
	ctx := context.Background()
	pending := &gateway.StatusResult{CorrelationID: "ws_CO_1", Outcome: entity.Outcome{Status: entity.StatusPending}}
	settled := &gateway.StatusResult{CorrelationID: "ws_CO_1", Outcome: entity.Outcome{Status: entity.StatusSuccess, Code: "0"}}

	setup := func(t *testing.T) (*CachedGateway, *mgateway.MockGateway, *mcore.FakeClock) {
		clock := mcore.NewFakeClock(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
		next := mgateway.NewMockGateway(t)
		next.On("Method").Return(entity.MethodMpesa).Maybe()
		statusCache := cache.NewTTLCache[string, gateway.StatusResult](30*time.Second, clock)
		return WithStatusCache(next, statusCache, mcore.NewPermissiveMockLogger(t)), next, clock
	}

	t.Run("Repeated reads within the TTL hit the cache", func(t *testing.T) {
		gw, next, clock := setup(t)
		query := gateway.StatusQuery{CorrelationID: "ws_CO_1"}
		next.On("QueryStatus", ctx, query).Return(pending, nil).Once()

		for i := 0; i < 3; i++ {
			result, err := gw.QueryStatus(ctx, query)
			require.NoError(t, err)
			assert.Equal(t, entity.StatusPending, result.Outcome.Status)
		}

		clock.Advance(31 * time.Second)
		next.On("QueryStatus", ctx, query).Return(settled, nil).Once()
		result, err := gw.QueryStatus(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusSuccess, result.Outcome.Status)
	})

	t.Run("Bypass reads upstream and refreshes the cache", func(t *testing.T) {
		gw, next, _ := setup(t)
		next.On("QueryStatus", ctx, gateway.StatusQuery{CorrelationID: "ws_CO_1"}).Return(pending, nil).Once()
		next.On("QueryStatus", ctx, gateway.StatusQuery{CorrelationID: "ws_CO_1", BypassCache: true}).Return(settled, nil).Once()

		_, err := gw.QueryStatus(ctx, gateway.StatusQuery{CorrelationID: "ws_CO_1"})
		require.NoError(t, err)

		result, err := gw.QueryStatus(ctx, gateway.StatusQuery{CorrelationID: "ws_CO_1", BypassCache: true})
		require.NoError(t, err)
		assert.Equal(t, entity.StatusSuccess, result.Outcome.Status)

		cached, err := gw.QueryStatus(ctx, gateway.StatusQuery{CorrelationID: "ws_CO_1"})
		require.NoError(t, err)
		assert.Equal(t, entity.StatusSuccess, cached.Outcome.Status)
	})

	t.Run("Failures are not cached", func(t *testing.T) {
		gw, next, _ := setup(t)
		query := gateway.StatusQuery{CorrelationID: "ws_CO_1"}
		next.On("QueryStatus", ctx, query).Return(nil, errors.New("down")).Once()
		next.On("QueryStatus", ctx, query).Return(pending, nil).Once()

		_, err := gw.QueryStatus(ctx, query)
		require.Error(t, err)

		_, err = gw.QueryStatus(ctx, query)
		assert.NoError(t, err)
	})
}
