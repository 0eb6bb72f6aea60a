package database

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/config"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents database configuration
type Config struct {
	Driver          string
	Path            string // sqlite file, or ":memory:"
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
	LogLevel        string
	RetryAttempts   int
	RetryDelay      time.Duration
}

// DefaultConfig returns a Config with default pool and retry values and no credentials
func DefaultConfig() *Config {
	return &Config{
		Driver:          DriverPostgres,
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 15 * time.Minute,
		QueryTimeout:    5 * time.Second,
		LogLevel:        "warn",
		RetryAttempts:   3,
		RetryDelay:      time.Second,
	}
}

// NewConfigFromAppConfig adapts the application configuration to database configuration
func NewConfigFromAppConfig(conf *config.Config) *Config {
	dbConf := DefaultConfig()
	db := conf.Database

	if db.Driver != "" {
		dbConf.Driver = db.Driver
	}
	dbConf.Path = db.Path
	dbConf.Host = db.Host
	if port := ParsePort(db.Port); port > 0 {
		dbConf.Port = port
	}
	dbConf.Username = db.Username
	dbConf.Password = db.Password
	dbConf.Database = db.Database
	if db.SSLMode != "" {
		dbConf.SSLMode = db.SSLMode
	}
	if db.MaxOpenConns > 0 {
		dbConf.MaxOpenConns = db.MaxOpenConns
	}
	if db.MaxIdleConns > 0 {
		dbConf.MaxIdleConns = db.MaxIdleConns
	}
	if db.ConnMaxLifetime > 0 {
		dbConf.ConnMaxLifetime = db.ConnMaxLifetime
	}
	if db.ConnMaxIdleTime > 0 {
		dbConf.ConnMaxIdleTime = db.ConnMaxIdleTime
	}
	if db.QueryTimeout > 0 {
		dbConf.QueryTimeout = db.QueryTimeout
	}
	if db.RetryAttempts > 0 {
		dbConf.RetryAttempts = db.RetryAttempts
	}
	if db.RetryDelay > 0 {
		dbConf.RetryDelay = db.RetryDelay
	}
	if conf.Logger.Level == "debug" {
		dbConf.LogLevel = "info"
	}

	return dbConf
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return errors.New("sqlite database path is required")
		}
	case DriverPostgres:
		if c.Host == "" {
			return errors.New("database host is required")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("invalid port number: %d", c.Port)
		}
		if c.Username == "" {
			return errors.New("database username is required")
		}
		if c.Database == "" {
			return errors.New("database name is required")
		}
		validSSLModes := map[string]bool{
			"disable":     true,
			"require":     true,
			"verify-ca":   true,
			"verify-full": true,
			"prefer":      true,
		}
		if !validSSLModes[c.SSLMode] {
			return fmt.Errorf("invalid SSL mode: %s", c.SSLMode)
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Driver)
	}

	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max open connections must be positive, got: %d", c.MaxOpenConns)
	}
	if c.MaxIdleConns < 0 {
		return fmt.Errorf("max idle connections must be non-negative, got: %d", c.MaxIdleConns)
	}
	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got: %d", c.RetryAttempts)
	}

	return nil
}

// DSN returns the connection string for the configured driver
func (c *Config) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode,
	)
}

// ParsePort converts a port string to an int, 0 when invalid
func ParsePort(port string) int {
	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return 0
	}
	return p
}
