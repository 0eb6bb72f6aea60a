package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/config"
	mcore "github.com/amirhossein-jamali/payment-reconciler/mocks/port/core"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simulationConfig() *config.Config {
	return &config.Config{
		Environment: config.Test,
		Database: config.DatabaseConfig{
			Driver:        "sqlite",
			Path:          ":memory:",
			SeedDemoOrder: true,
		},
		Logger: config.LoggerConfig{Level: "error"},
		Gateways: config.GatewaysConfig{
			Timeout: 5 * time.Second,
			Breaker: config.BreakerConfig{MaxFailures: 5, OpenTimeout: 30 * time.Second},
			Pesapal: config.PesapalConfig{CompletionURL: "https://shop.example.com/orders/complete"},
		},
		Simulation: config.SimulationConfig{
			Enabled:      true,
			SuccessDelay: 10 * time.Second,
			CancelDelay:  15 * time.Second,
			FailDelay:    20 * time.Second,
		},
		Cache: config.CacheConfig{TokenTTL: 50 * time.Minute, StatusTTL: 5 * time.Second},
		Reconciliation: config.ReconciliationConfig{
			NotifyTimeout:    time.Second,
			SweepConcurrency: 2,
		},
	}
}

func newTestApp(t *testing.T) (*App, *mcore.FakeClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := mcore.NewFakeClock(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	a, err := NewWithLogger(context.Background(), simulationConfig(), logger.NewNoopLogger(), clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, clock
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNew_WiresSimulatedGateways(t *testing.T) {
	a, _ := newTestApp(t)

	assert.Len(t, a.Gateways, 2)
	assert.Contains(t, a.Gateways, entity.MethodMpesa)
	assert.Contains(t, a.Gateways, entity.MethodPesapal)

	w := serve(a.Router(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSimulatedCheckoutSettlesThroughPolling(t *testing.T) {
	a, clock := newTestApp(t)
	router := a.Router()

	body := `{"orderId":1,"method":"mpesa","phone":"0700000000","billing":{"firstName":"Amina"}}`
	w := serve(router, http.MethodPost, "/payments/checkout", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var started dto.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.True(t, started.Simulated)
	assert.Equal(t, string(entity.StatusPending), started.Status)
	require.NotEmpty(t, started.CorrelationID)

	statusPath := "/payments/" + started.CorrelationID + "/status"

	w = serve(router, http.MethodGet, statusPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	var status dto.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, string(entity.StatusPending), status.Status)

	clock.Advance(11 * time.Second)

	w = serve(router, http.MethodGet, statusPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, string(entity.StatusSuccess), status.Status)
	assert.True(t, strings.HasPrefix(status.ReceiptRef, "TEST"))

	// a paid order can't be checked out again
	w = serve(router, http.MethodPost, "/payments/checkout", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSweepSettlesAbandonedAttempt(t *testing.T) {
	a, clock := newTestApp(t)

	body := `{"orderId":1,"method":"mpesa","phone":"0711111111","billing":{"firstName":"Amina"}}`
	w := serve(a.Router(), http.MethodPost, "/payments/checkout", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	clock.Advance(time.Minute)

	report, err := a.Engine.SweepPending(context.Background(), 30*time.Second, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Transitioned)
}

func TestNew_RejectsUnusableDatabase(t *testing.T) {
	cfg := simulationConfig()
	cfg.Database.Driver = "oracle"

	clock := mcore.NewFakeClock(t, time.Now())
	_, err := NewWithLogger(context.Background(), cfg, logger.NewNoopLogger(), clock)
	assert.Error(t, err)
}

func TestMigrationSeedsDemoOrderOnce(t *testing.T) {
	a, _ := newTestApp(t)

	orderID, err := a.DB.MigrationManager().SeedDemoOrder(context.Background())
	require.NoError(t, err)
	assert.Zero(t, orderID, "orders table already holds the demo order")
	assert.EqualValues(t, 1, migration.DemoUserID)
}
