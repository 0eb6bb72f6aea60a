package database

import (
	"context"
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/database/migration"
	"gorm.io/gorm"
)

// poolMonitorInterval is how often pool stats are sampled
const poolMonitorInterval = 30 * time.Second

// Manager owns the database connection and everything built on top of it
type Manager struct {
	config            *Config
	db                *gorm.DB
	logger            coreport.Logger
	migrationMgr      *migration.MigrationManager
	connectionMonitor *ConnectionPoolMonitor
	timeProvider      coreport.TimeProvider
}

// NewManager creates a new database manager
func NewManager(config *Config, logger coreport.Logger, timeProvider coreport.TimeProvider) *Manager {
	return &Manager{
		config:       config,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Connect opens the database, retrying up to RetryAttempts times, and configures the pool
func (m *Manager) Connect(ctx context.Context) (*gorm.DB, error) {
	if err := m.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	m.logger.Info("Connecting to database", m.connectionFields())

	dialector, err := openDialector(m.config)
	if err != nil {
		return nil, err
	}

	var gormDB *gorm.DB
	for attempt := 0; attempt < m.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			m.logger.Warn("Retrying database connection", map[string]any{
				"attempt": attempt + 1,
				"of":      m.config.RetryAttempts,
				"delay":   m.config.RetryDelay.String(),
			})
			select {
			case <-m.timeProvider.After(coreport.Duration(m.config.RetryDelay)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		gormDB, err = gorm.Open(dialector, &gorm.Config{
			Logger:      NewGormDatabaseLogger(m.logger, m.timeProvider, m.config.LogLevel),
			NowFunc:     func() time.Time { return m.timeProvider.Now().UTC() },
			PrepareStmt: true,
		})
		if err == nil {
			break
		}

		m.logger.Error("Failed to connect to database", map[string]any{
			"error":   err.Error(),
			"attempt": attempt + 1,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", m.config.RetryAttempts, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	maxOpen, maxIdle := m.config.MaxOpenConns, m.config.MaxIdleConns
	lifetime, idleTime := m.config.ConnMaxLifetime, m.config.ConnMaxIdleTime
	if isSingleWriter(m.config) {
		// an in-memory sqlite database lives exactly as long as its connection
		maxOpen, maxIdle = 1, 1
		lifetime, idleTime = 0, 0
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)
	sqlDB.SetConnMaxIdleTime(idleTime)

	m.db = gormDB
	if err := m.Ping(ctx); err != nil {
		m.db = nil
		_ = sqlDB.Close()
		return nil, err
	}

	m.migrationMgr = migration.NewMigrationManager(gormDB, m.logger, m.timeProvider)
	m.connectionMonitor = NewConnectionPoolMonitor(m, m.logger, m.timeProvider)
	if err := m.connectionMonitor.Start(poolMonitorInterval); err != nil {
		m.logger.Warn("Failed to start connection pool monitoring", map[string]any{"error": err.Error()})
	}

	fields := m.connectionFields()
	fields["max_open_conns"] = maxOpen
	fields["max_idle_conns"] = maxIdle
	m.logger.Info("Successfully connected to database", fields)

	return m.db, nil
}

// Ping checks the database is reachable within the query timeout
func (m *Manager) Ping(ctx context.Context) error {
	db := m.db
	if db == nil {
		return fmt.Errorf("database is not connected")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	ctx, cancel := m.WithTimeout(ctx)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Migrate brings the schema up to date
func (m *Manager) Migrate(ctx context.Context) error {
	if m.migrationMgr == nil {
		return fmt.Errorf("database is not connected")
	}
	return m.migrationMgr.MigrateAll(ctx)
}

// DB returns the GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close stops monitoring and closes the connection
func (m *Manager) Close() error {
	m.logger.Info("Closing database connection", nil)

	if m.connectionMonitor != nil {
		m.connectionMonitor.Stop()
	}
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// WithTimeout returns a context bounded by the configured query timeout
func (m *Manager) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return m.timeProvider.WithTimeout(ctx, coreport.Duration(m.config.QueryTimeout))
}

// CreateUnitOfWork creates a new UnitOfWork instance
func (m *Manager) CreateUnitOfWork() *UnitOfWork {
	return NewUnitOfWork(m.db, m.logger, m.timeProvider)
}

// MigrationManager returns the migration manager
func (m *Manager) MigrationManager() *migration.MigrationManager {
	return m.migrationMgr
}

// PoolMetrics returns the last sampled pool metrics
func (m *Manager) PoolMetrics() ConnectionPoolMetrics {
	if m.connectionMonitor == nil {
		return ConnectionPoolMetrics{}
	}
	return m.connectionMonitor.GetMetrics()
}

func (m *Manager) connectionFields() map[string]any {
	if m.config.Driver == DriverSQLite {
		return map[string]any{"driver": m.config.Driver, "path": m.config.Path}
	}
	return map[string]any{
		"driver": m.config.Driver,
		"host":   m.config.Host,
		"port":   m.config.Port,
		"name":   m.config.Database,
	}
}
