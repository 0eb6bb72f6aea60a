package database

import (
	"fmt"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
)

// ConnectionPoolMetrics tracks database connection pool metrics
type ConnectionPoolMetrics struct {
	OpenConnections    int
	IdleConnections    int
	MaxOpenConnections int
	InUse              int
	WaitCount          int64
	WaitDuration       time.Duration
	MaxIdleClosed      int64
	MaxLifetimeClosed  int64
}

// ConnectionPoolMonitor samples pool stats and warns when the pool runs dry
type ConnectionPoolMonitor struct {
	db           *Manager
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	metricsCache *ConnectionPoolMetrics
	mutex        sync.RWMutex
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewConnectionPoolMonitor creates a new connection pool monitor
func NewConnectionPoolMonitor(db *Manager, logger coreport.Logger, timeProvider coreport.TimeProvider) *ConnectionPoolMonitor {
	return &ConnectionPoolMonitor{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
		stopChan:     make(chan struct{}),
	}
}

// Start collects once and then every interval until Stop
func (m *ConnectionPoolMonitor) Start(interval time.Duration) error {
	if err := m.collectMetrics(); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-m.timeProvider.After(coreport.Duration(interval)):
				if err := m.collectMetrics(); err != nil {
					m.logger.Error("Failed to collect connection pool metrics", map[string]any{
						"error": err.Error(),
					})
				}
			case <-m.stopChan:
				return
			}
		}
	}()

	return nil
}

// Stop stops the monitoring
func (m *ConnectionPoolMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// GetMetrics returns the last sampled metrics
func (m *ConnectionPoolMonitor) GetMetrics() ConnectionPoolMetrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.metricsCache == nil {
		return ConnectionPoolMetrics{}
	}
	return *m.metricsCache
}

func (m *ConnectionPoolMonitor) collectMetrics() error {
	sqlDB, err := m.db.DB().DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	stats := sqlDB.Stats()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.metricsCache = &ConnectionPoolMetrics{
		OpenConnections:    stats.OpenConnections,
		IdleConnections:    stats.Idle,
		MaxOpenConnections: stats.MaxOpenConnections,
		InUse:              stats.InUse,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}

	// single-connection sqlite pools are always "exhausted"
	if stats.MaxOpenConnections > 1 && float64(stats.InUse) > float64(stats.MaxOpenConnections)*0.8 {
		m.logger.Warn("Database connection pool nearly exhausted", map[string]any{
			"in_use":     stats.InUse,
			"max_open":   stats.MaxOpenConnections,
			"idle":       stats.Idle,
			"wait_count": stats.WaitCount,
			"wait_time":  stats.WaitDuration.String(),
		})
	}

	return nil
}
