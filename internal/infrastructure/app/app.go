// Package app assembles the service from configuration. Both the HTTP server
// and the operator CLI start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	portnotifier "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/notifier"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/checkout"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/reconciliation"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/gateway/middleware"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/notifier"
	timeProvider "github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
)

// App holds the wired service
type App struct {
	Config   *config.Config
	Logger   coreport.Logger
	Clock    coreport.TimeProvider
	DB       *database.Manager
	Gateways gateway.MapRegistry
	Engine   *reconciliation.Engine
	Checkout *checkout.Service

	notifier *notifier.Multi
	tokens   *cache.TTLCache[string, gateway.Token]
	statuses *middleware.StatusCache
}

// New connects to the database, migrates it and wires every component
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	appLogger := logger.NewZapLogger(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		CallerInfo: cfg.Logger.CallerInfo,
	})
	return NewWithLogger(ctx, cfg, appLogger, timeProvider.NewRealTimeProvider())
}

// NewWithLogger is New with an injected logger and clock
func NewWithLogger(ctx context.Context, cfg *config.Config, appLogger coreport.Logger, clock coreport.TimeProvider) (*App, error) {
	dbManager := database.NewManager(database.NewConfigFromAppConfig(cfg), appLogger, clock)
	if _, err := dbManager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := dbManager.Migrate(ctx); err != nil {
		_ = dbManager.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if cfg.Database.SeedDemoOrder {
		if orderID, err := dbManager.MigrationManager().SeedDemoOrder(ctx); err != nil {
			appLogger.Warn("Failed to seed demo order", coreport.ErrorFields(err, nil))
		} else if orderID != 0 {
			appLogger.Info("Demo order seeded", map[string]any{"order_id": orderID})
		}
	}

	a := &App{
		Config:   cfg,
		Logger:   appLogger,
		Clock:    clock,
		DB:       dbManager,
		tokens:   cache.NewTTLCache[string, gateway.Token](cfg.Cache.TokenTTL, clock),
		statuses: cache.NewTTLCache[string, gateway.StatusResult](cfg.Cache.StatusTTL, clock),
	}

	notifiers, err := buildNotifiers(ctx, cfg, clock, appLogger)
	if err != nil {
		_ = dbManager.Close()
		return nil, err
	}
	a.notifier = notifiers

	// transport.Client sets per-call deadlines, so the shared client carries none
	a.Gateways = buildGateways(cfg, &http.Client{}, a.tokens, a.statuses, clock, appLogger)
	if len(a.Gateways) == 0 {
		appLogger.Warn("No payment gateway enabled", nil)
	}

	uow := dbManager.CreateUnitOfWork()
	a.Engine = reconciliation.NewEngine(uow, a.Gateways, notifiers, clock, appLogger, reconciliation.Config{
		NotifyTimeout:    cfg.Reconciliation.NotifyTimeout,
		SweepConcurrency: cfg.Reconciliation.SweepConcurrency,
	})
	a.Checkout = checkout.NewService(uow, a.Gateways, clock, appLogger)

	return a, nil
}

func buildNotifiers(ctx context.Context, cfg *config.Config, clock coreport.TimeProvider, appLogger coreport.Logger) (*notifier.Multi, error) {
	channels := []portnotifier.Notifier{notifier.NewLog(appLogger)}

	if cfg.Notifier.Kafka.Enabled {
		publisher, err := notifier.NewKafkaPublisher(cfg.Notifier.Kafka, clock, appLogger)
		if err != nil {
			return nil, err
		}
		channels = append(channels, publisher)
	}
	if cfg.Notifier.SES.Enabled {
		sender, err := notifier.NewSESSender(ctx, cfg.Notifier.SES, appLogger)
		if err != nil {
			return nil, err
		}
		channels = append(channels, sender)
	}
	return notifier.NewMulti(channels...), nil
}

// Router builds the HTTP routes
func (a *App) Router() *gin.Engine {
	router := gin.New()
	routes.SetupMiddlewares(router, a.Logger, a.Clock)
	routes.SetupRoutes(router,
		handler.NewPaymentHandler(a.Engine, a.Config.Gateways.Pesapal.CompletionURL, a.Logger),
		handler.NewCheckoutHandler(a.Checkout, a.Logger),
		handler.NewHealthHandler(a.DB, a.Clock, a.Logger),
	)
	return router
}

// RunCachePurge drops expired tokens and statuses on every interval until ctx ends
func (a *App) RunCachePurge(ctx context.Context, interval coreport.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.Clock.After(interval):
			if purged := a.tokens.Purge() + a.statuses.Purge(); purged > 0 {
				a.Logger.Debug("Expired cache entries purged", map[string]any{"count": purged})
			}
		}
	}
}

// Close waits for in-flight notifications and releases every connection
func (a *App) Close() error {
	a.Engine.Shutdown()
	err := errors.Join(a.notifier.Close(), a.DB.Close())
	_ = a.Logger.Flush()
	return err
}
