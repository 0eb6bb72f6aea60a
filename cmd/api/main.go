package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/app"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

const cachePurgeInterval = time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
	appLogger := application.Logger

	background, stopBackground := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	workers.Add(1)
	go func() {
		defer workers.Done()
		application.RunCachePurge(background, coreport.Duration(cachePurgeInterval))
	}()

	if rc := cfg.Reconciliation; rc.SweepEnabled {
		workers.Add(1)
		go func() {
			defer workers.Done()
			application.Engine.RunSweeper(background, rc.SweepInterval, rc.PendingAge, rc.SweepBatch)
		}()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           application.Router(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port":       cfg.Server.Port,
			"env":        cfg.Environment,
			"gateways":   len(application.Gateways),
			"simulation": cfg.Simulation.Enabled,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop taking callbacks first so no new confirmations are queued
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	stopBackground()
	workers.Wait()

	if err := application.Close(); err != nil {
		log.Printf("Shutdown finished with errors: %v", err)
		return
	}

	log.Println("Server exited gracefully")
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}

	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}

	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}

	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	if cfg.Database.Driver != "sqlite" {
		if cfg.Database.Host == "" {
			missingConfigs = append(missingConfigs, "database.host")
		}
		if cfg.Database.Database == "" {
			missingConfigs = append(missingConfigs, "database.database")
		}
	}

	if cfg.Gateways.Mpesa.Enabled {
		mc := cfg.Gateways.Mpesa
		for key, value := range map[string]string{
			"gateways.mpesa.consumerKey":    mc.ConsumerKey,
			"gateways.mpesa.consumerSecret": mc.ConsumerSecret,
			"gateways.mpesa.shortCode":      mc.ShortCode,
			"gateways.mpesa.passKey":        mc.PassKey,
			"gateways.mpesa.callbackURL":    mc.CallbackURL,
		} {
			if value == "" {
				missingConfigs = append(missingConfigs, key)
			}
		}
	}

	if cfg.Gateways.Pesapal.Enabled {
		pc := cfg.Gateways.Pesapal
		for key, value := range map[string]string{
			"gateways.pesapal.consumerKey":    pc.ConsumerKey,
			"gateways.pesapal.consumerSecret": pc.ConsumerSecret,
			"gateways.pesapal.callbackURL":    pc.CallbackURL,
		} {
			if value == "" {
				missingConfigs = append(missingConfigs, key)
			}
		}
	}

	if cfg.Reconciliation.SweepEnabled && cfg.Reconciliation.SweepInterval == 0 {
		missingConfigs = append(missingConfigs, "reconciliation.sweepInterval")
	}

	if cfg.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	if cfg.Environment == config.Production {
		var warnings []string

		if cfg.Simulation.Enabled {
			warnings = append(warnings, "simulation.enabled must be false in production")
		}

		if cfg.Database.Driver != "sqlite" {
			switch strings.ToLower(cfg.Database.SSLMode) {
			case "require", "verify-ca", "verify-full":
			default:
				warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
			}
		}

		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential issues in production configuration: %v", warnings)
		}
	}

	return nil
}
