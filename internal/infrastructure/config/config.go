package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment    string               `mapstructure:"environment"`
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Logger         LoggerConfig         `mapstructure:"logger"`
	Gateways       GatewaysConfig       `mapstructure:"gateways"`
	Simulation     SimulationConfig     `mapstructure:"simulation"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Notifier       NotifierConfig       `mapstructure:"notifier"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | sqlite
	Path            string        `mapstructure:"path"`   // sqlite only
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
	SeedDemoOrder   bool          `mapstructure:"seedDemoOrder"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// GatewaysConfig groups the payment gateway clients
type GatewaysConfig struct {
	Timeout time.Duration `mapstructure:"timeout"` // seconds
	Breaker BreakerConfig `mapstructure:"breaker"`
	Mpesa   MpesaConfig   `mapstructure:"mpesa"`
	Pesapal PesapalConfig `mapstructure:"pesapal"`
}

// BreakerConfig tunes the circuit breaker around each gateway
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"maxFailures"`
	OpenTimeout time.Duration `mapstructure:"openTimeout"` // seconds
}

// MpesaConfig contains the push gateway credentials
type MpesaConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Environment     string `mapstructure:"environment"` // sandbox | production
	BaseURL         string `mapstructure:"baseURL"`     // overrides Environment when set
	ConsumerKey     string `mapstructure:"consumerKey"`
	ConsumerSecret  string `mapstructure:"consumerSecret"`
	ShortCode       string `mapstructure:"shortCode"`
	PassKey         string `mapstructure:"passKey"`
	CallbackURL     string `mapstructure:"callbackURL"`
	TransactionType string `mapstructure:"transactionType"`
}

// PesapalConfig contains the redirect gateway credentials
type PesapalConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Environment    string `mapstructure:"environment"`
	BaseURL        string `mapstructure:"baseURL"`
	ConsumerKey    string `mapstructure:"consumerKey"`
	ConsumerSecret string `mapstructure:"consumerSecret"`
	IPNURL         string `mapstructure:"ipnURL"`
	CallbackURL    string `mapstructure:"callbackURL"`
	CompletionURL  string `mapstructure:"completionURL"` // where the browser lands after the redirect callback
	Currency       string `mapstructure:"currency"`
}

// SimulationConfig toggles sentinel phone numbers
type SimulationConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	SuccessDelay time.Duration `mapstructure:"successDelay"` // seconds
	CancelDelay  time.Duration `mapstructure:"cancelDelay"`  // seconds
	FailDelay    time.Duration `mapstructure:"failDelay"`    // seconds
}

// CacheConfig contains cache lifetimes
type CacheConfig struct {
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`  // minutes
	StatusTTL time.Duration `mapstructure:"statusTTL"` // seconds
}

// ReconciliationConfig tunes the engine and the pending sweeper
type ReconciliationConfig struct {
	NotifyTimeout    time.Duration `mapstructure:"notifyTimeout"` // seconds
	SweepEnabled     bool          `mapstructure:"sweepEnabled"`
	SweepInterval    time.Duration `mapstructure:"sweepInterval"` // seconds
	PendingAge       time.Duration `mapstructure:"pendingAge"`    // seconds
	SweepBatch       int           `mapstructure:"sweepBatch"`
	SweepConcurrency int           `mapstructure:"sweepConcurrency"`
}

// NotifierConfig selects the confirmation channels
type NotifierConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
	SES   SESConfig   `mapstructure:"ses"`
}

// KafkaConfig contains the event publisher settings
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// SESConfig contains the confirmation e-mail settings
type SESConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"fromAddress"`
}
