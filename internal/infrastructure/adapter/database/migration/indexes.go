package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"gorm.io/gorm"
)

// IndexManager creates the indexes AutoMigrate can't declare
type IndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *gorm.DB, logger coreport.Logger) *IndexManager {
	return &IndexManager{
		db:     db,
		logger: logger,
	}
}

// portableIndexes work on both postgres and sqlite
var portableIndexes = []struct {
	name string
	sql  string
}{
	{
		// at most one PENDING attempt per order
		name: "idx_payment_attempts_one_pending",
		sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_attempts_one_pending
			ON payment_attempts (order_id) WHERE status = 'PENDING'`,
	},
	{
		// the sweeper scans only PENDING rows by age
		name: "idx_payment_attempts_pending_created",
		sql: `CREATE INDEX IF NOT EXISTS idx_payment_attempts_pending_created
			ON payment_attempts (created_at) WHERE status = 'PENDING'`,
	},
	{
		name: "idx_orders_user_status",
		sql: `CREATE INDEX IF NOT EXISTS idx_orders_user_status
			ON orders (user_id, payment_status)`,
	},
}

// CreateIndexes creates the partial and composite indexes
func (m *IndexManager) CreateIndexes(ctx context.Context) error {
	m.logger.Info("Creating database indexes", nil)

	for _, index := range portableIndexes {
		if err := m.db.WithContext(ctx).Exec(index.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": index.name,
				"error": err.Error(),
			})
			return err
		}
	}

	return nil
}

// ApplyPostgresTweaks applies postgres-only storage settings. Failures are logged, not returned.
func (m *IndexManager) ApplyPostgresTweaks(ctx context.Context) {
	m.logger.Info("Applying PostgreSQL tweaks", nil)

	tweaks := map[string]string{
		"anomalies_created_at_brin": `CREATE INDEX IF NOT EXISTS idx_payment_anomalies_created_at_brin
			ON payment_anomalies USING BRIN (created_at) WITH (pages_per_range = 32)`,
		// attempts are updated exactly once after insert
		"payment_attempts_fillfactor": `ALTER TABLE payment_attempts SET (fillfactor = 85)`,
	}

	for name, sql := range tweaks {
		if err := m.db.WithContext(ctx).Exec(sql).Error; err != nil {
			m.logger.Warn("Failed to apply PostgreSQL tweak", map[string]any{
				"tweak": name,
				"error": err.Error(),
			})
		}
	}
}
