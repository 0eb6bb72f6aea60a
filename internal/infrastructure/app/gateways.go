package app

import (
	"net/http"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/gateway/middleware"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/gateway/mpesa"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/gateway/pesapal"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/gateway/simulation"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/gateway/transport"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/config"
)

// buildGateways wires one client per enabled method: transport with breaker,
// then the status cache, then the simulation layer outermost so sentinel
// phones never touch the network or the cache. With simulation on, both
// methods are registered even if their credentials are missing.
func buildGateways(
	cfg *config.Config,
	httpClient *http.Client,
	tokens *transport.TokenCache,
	statuses *middleware.StatusCache,
	clock coreport.TimeProvider,
	logger coreport.Logger,
) gateway.MapRegistry {
	var simulator *simulation.Simulator
	if cfg.Simulation.Enabled {
		simulator = simulation.NewSimulator(simulation.Delays{
			Success:   cfg.Simulation.SuccessDelay,
			Cancelled: cfg.Simulation.CancelDelay,
			Failed:    cfg.Simulation.FailDelay,
		}, clock)
		logger.Warn("Payment simulation is enabled", map[string]any{
			"sentinels": []entity.CanonicalPhone{simulation.PhoneSuccess, simulation.PhoneCancelled, simulation.PhoneFailed},
		})
	}

	transportFor := func(name string) *transport.Client {
		return transport.NewClient(transport.Options{
			Gateway:     name,
			Timeout:     cfg.Gateways.Timeout,
			MaxFailures: cfg.Gateways.Breaker.MaxFailures,
			OpenTimeout: cfg.Gateways.Breaker.OpenTimeout,
		}, httpClient, clock, logger)
	}

	wrap := func(client gateway.Gateway) gateway.Gateway {
		var gw gateway.Gateway = middleware.WithStatusCache(client, statuses, logger)
		if simulator != nil {
			gw = simulation.Wrap(gw, simulator, logger)
		}
		return gw
	}

	var gateways []gateway.Gateway

	if mc := cfg.Gateways.Mpesa; mc.Enabled || simulator != nil {
		baseURL := mc.BaseURL
		if baseURL == "" {
			baseURL = mpesa.BaseURLFor(mc.Environment)
		}
		client := mpesa.NewClient(mpesa.Config{
			BaseURL:         baseURL,
			ConsumerKey:     mc.ConsumerKey,
			ConsumerSecret:  mc.ConsumerSecret,
			ShortCode:       mc.ShortCode,
			PassKey:         mc.PassKey,
			CallbackURL:     mc.CallbackURL,
			TransactionType: mc.TransactionType,
		}, transportFor("mpesa"), tokens, clock, logger)
		gateways = append(gateways, wrap(client))
	}

	if pc := cfg.Gateways.Pesapal; pc.Enabled || simulator != nil {
		baseURL := pc.BaseURL
		if baseURL == "" {
			baseURL = pesapal.BaseURLFor(pc.Environment)
		}
		client := pesapal.NewClient(pesapal.Config{
			BaseURL:        baseURL,
			ConsumerKey:    pc.ConsumerKey,
			ConsumerSecret: pc.ConsumerSecret,
			CallbackURL:    pc.CallbackURL,
			IPNURL:         pc.IPNURL,
			Currency:       pc.Currency,
		}, transportFor("pesapal"), tokens, clock, logger)
		gateways = append(gateways, wrap(client))
	}

	return gateway.NewRegistry(gateways...)
}
