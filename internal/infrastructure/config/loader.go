package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PR"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./.env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
	"../../configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	// .env is optional
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")

	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets and deployment-specific values never live in the yaml files
	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}

	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 45)      // seconds, longer than a gateway call
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 15)   // seconds

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.path", "payments.db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("gateways.timeout", 30) // seconds
	v.SetDefault("gateways.breaker.maxFailures", 5)
	v.SetDefault("gateways.breaker.openTimeout", 30) // seconds
	v.SetDefault("gateways.mpesa.enabled", true)
	v.SetDefault("gateways.mpesa.environment", "sandbox")
	v.SetDefault("gateways.mpesa.transactionType", "CustomerPayBillOnline")
	v.SetDefault("gateways.pesapal.enabled", false)
	v.SetDefault("gateways.pesapal.environment", "sandbox")
	v.SetDefault("gateways.pesapal.currency", "KES")

	v.SetDefault("simulation.enabled", false)
	v.SetDefault("simulation.successDelay", 10) // seconds
	v.SetDefault("simulation.cancelDelay", 15)  // seconds
	v.SetDefault("simulation.failDelay", 20)    // seconds

	v.SetDefault("cache.tokenTTL", 50)  // minutes
	v.SetDefault("cache.statusTTL", 30) // seconds

	v.SetDefault("reconciliation.notifyTimeout", 10) // seconds
	v.SetDefault("reconciliation.sweepEnabled", true)
	v.SetDefault("reconciliation.sweepInterval", 60) // seconds
	v.SetDefault("reconciliation.pendingAge", 120)   // seconds
	v.SetDefault("reconciliation.sweepBatch", 100)
	v.SetDefault("reconciliation.sweepConcurrency", 4)

	v.SetDefault("notifier.kafka.enabled", false)
	v.SetDefault("notifier.kafka.topic", "payment.confirmed")
	v.SetDefault("notifier.ses.enabled", false)
	v.SetDefault("notifier.ses.region", "eu-west-1")
}

// getEnvironment determines the environment to use based on PR_ENV
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// envStringKeys maps environment variables onto config keys
var envStringKeys = map[string]string{
	"PR_DB_DRIVER":               "database.driver",
	"PR_DB_PATH":                 "database.path",
	"PR_DB_HOST":                 "database.host",
	"PR_DB_PORT":                 "database.port",
	"PR_DB_USERNAME":             "database.username",
	"PR_DB_PASSWORD":             "database.password",
	"PR_DB_NAME":                 "database.database",
	"PR_DB_SSL_MODE":             "database.sslMode",
	"PR_SERVER_HOST":             "server.host",
	"PR_SERVER_PORT":             "server.port",
	"PR_LOGGER_LEVEL":            "logger.level",
	"PR_MPESA_CONSUMER_KEY":      "gateways.mpesa.consumerKey",
	"PR_MPESA_CONSUMER_SECRET":   "gateways.mpesa.consumerSecret",
	"PR_MPESA_SHORTCODE":         "gateways.mpesa.shortCode",
	"PR_MPESA_PASSKEY":           "gateways.mpesa.passKey",
	"PR_MPESA_CALLBACK_URL":      "gateways.mpesa.callbackURL",
	"PR_MPESA_ENVIRONMENT":       "gateways.mpesa.environment",
	"PR_PESAPAL_CONSUMER_KEY":    "gateways.pesapal.consumerKey",
	"PR_PESAPAL_CONSUMER_SECRET": "gateways.pesapal.consumerSecret",
	"PR_PESAPAL_IPN_URL":         "gateways.pesapal.ipnURL",
	"PR_PESAPAL_CALLBACK_URL":    "gateways.pesapal.callbackURL",
	"PR_PESAPAL_COMPLETION_URL":  "gateways.pesapal.completionURL",
	"PR_PESAPAL_ENVIRONMENT":     "gateways.pesapal.environment",
	"PR_KAFKA_TOPIC":             "notifier.kafka.topic",
	"PR_SES_REGION":              "notifier.ses.region",
	"PR_SES_FROM_ADDRESS":        "notifier.ses.fromAddress",
}

// envBoolKeys maps boolean environment toggles onto config keys
var envBoolKeys = map[string]string{
	"PR_SIMULATION_ENABLED": "simulation.enabled",
	"PR_MPESA_ENABLED":      "gateways.mpesa.enabled",
	"PR_PESAPAL_ENABLED":    "gateways.pesapal.enabled",
	"PR_KAFKA_ENABLED":      "notifier.kafka.enabled",
	"PR_SES_ENABLED":        "notifier.ses.enabled",
	"PR_SWEEP_ENABLED":      "reconciliation.sweepEnabled",
}

// processEnvOverrides ensures environment variables override config values
func processEnvOverrides(v *viper.Viper) {
	for env, key := range envStringKeys {
		if value := os.Getenv(env); value != "" {
			v.Set(key, value)
		}
	}

	for env, key := range envBoolKeys {
		if value := os.Getenv(env); value != "" {
			if enabled, err := strconv.ParseBool(value); err == nil {
				v.Set(key, enabled)
			}
		}
	}

	if brokers := os.Getenv("PR_KAFKA_BROKERS"); brokers != "" {
		v.Set("notifier.kafka.brokers", strings.Split(brokers, ","))
	}

	if maxOpenConns := getEnvInt("PR_DB_MAX_OPEN_CONNS", 0); maxOpenConns > 0 {
		v.Set("database.maxOpenConns", maxOpenConns)
	}
	if maxIdleConns := getEnvInt("PR_DB_MAX_IDLE_CONNS", 0); maxIdleConns > 0 {
		v.Set("database.maxIdleConns", maxIdleConns)
	}
	if queryTimeout := getEnvInt("PR_DB_QUERY_TIMEOUT_SECONDS", 0); queryTimeout > 0 {
		v.Set("database.queryTimeout", queryTimeout)
	}
	if gatewayTimeout := getEnvInt("PR_GATEWAY_TIMEOUT_SECONDS", 0); gatewayTimeout > 0 {
		v.Set("gateways.timeout", gatewayTimeout)
	}
	if pendingAge := getEnvInt("PR_SWEEP_PENDING_AGE_SECONDS", 0); pendingAge > 0 {
		v.Set("reconciliation.pendingAge", pendingAge)
	}
}

// Helper function to get environment variable as int
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// processDurations converts time.Duration fields from their raw values to actual durations
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second

	config.Gateways.Timeout = time.Duration(config.Gateways.Timeout) * time.Second
	config.Gateways.Breaker.OpenTimeout = time.Duration(config.Gateways.Breaker.OpenTimeout) * time.Second

	config.Simulation.SuccessDelay = time.Duration(config.Simulation.SuccessDelay) * time.Second
	config.Simulation.CancelDelay = time.Duration(config.Simulation.CancelDelay) * time.Second
	config.Simulation.FailDelay = time.Duration(config.Simulation.FailDelay) * time.Second

	config.Cache.TokenTTL = time.Duration(config.Cache.TokenTTL) * time.Minute
	config.Cache.StatusTTL = time.Duration(config.Cache.StatusTTL) * time.Second

	config.Reconciliation.NotifyTimeout = time.Duration(config.Reconciliation.NotifyTimeout) * time.Second
	config.Reconciliation.SweepInterval = time.Duration(config.Reconciliation.SweepInterval) * time.Second
	config.Reconciliation.PendingAge = time.Duration(config.Reconciliation.PendingAge) * time.Second
}
