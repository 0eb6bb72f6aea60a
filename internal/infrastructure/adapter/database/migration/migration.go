package migration

import (
	"context"
	"errors"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

const (
	// CurrentSchemaVersion represents the current database schema version
	CurrentSchemaVersion = "1.1.0"
)

// MigrationManager manages database migrations
type MigrationManager struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	indexMgr     *IndexManager
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *MigrationManager {
	return &MigrationManager{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
		indexMgr:     NewIndexManager(db, logger),
	}
}

// MigrateAll brings the schema to CurrentSchemaVersion
func (m *MigrationManager) MigrateAll(ctx context.Context) error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": CurrentSchemaVersion,
		"dialect":        m.db.Dialector.Name(),
	})

	if err := m.db.WithContext(ctx).AutoMigrate(&model.MigrationVersion{}); err != nil {
		m.logger.Error("Failed to create migration version table", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	currentVersion, err := m.GetCurrentVersion(ctx)
	if err != nil {
		m.logger.Error("Failed to check current schema version", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if currentVersion == CurrentSchemaVersion {
		m.logger.Info("Database already at target version, skipping migration", map[string]any{
			"version": currentVersion,
		})
		return nil
	}

	m.logger.Info("Current database version", map[string]any{
		"version": currentVersion,
	})

	if err := m.runVersionedMigrations(ctx, currentVersion); err != nil {
		m.logger.Error("Failed to run versioned migrations", map[string]any{
			"error":           err.Error(),
			"current_version": currentVersion,
			"target_version":  CurrentSchemaVersion,
		})
		return err
	}

	if err := m.autoMigrateModels(ctx); err != nil {
		m.logger.Error("Failed to auto-migrate models", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if err := m.indexMgr.CreateIndexes(ctx); err != nil {
		m.logger.Error("Failed to create indexes", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if m.isPostgres() {
		m.indexMgr.ApplyPostgresTweaks(ctx)
	}

	if err := m.setVersion(ctx, CurrentSchemaVersion, "Payment ledger schema"); err != nil {
		m.logger.Error("Failed to update schema version", map[string]any{
			"error":   err.Error(),
			"version": CurrentSchemaVersion,
		})
		return err
	}

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": CurrentSchemaVersion,
	})
	return nil
}

// GetCurrentVersion gets the current migration version, empty for a fresh database
func (m *MigrationManager) GetCurrentVersion(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var version model.MigrationVersion
	result := m.db.WithContext(ctx).Order("id desc").First(&version)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}

	return version.Version, nil
}

func (m *MigrationManager) setVersion(ctx context.Context, version string, details string) error {
	migrationVersion := model.MigrationVersion{
		Version:   version,
		AppliedAt: m.timeProvider.Now(),
		Details:   details,
	}

	return m.db.WithContext(ctx).Create(&migrationVersion).Error
}

func (m *MigrationManager) autoMigrateModels(ctx context.Context) error {
	m.logger.Info("Auto-migrating database models", nil)

	return m.db.WithContext(ctx).AutoMigrate(
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentAttempt{},
		&model.Anomaly{},
	)
}

// runVersionedMigrations runs the steps AutoMigrate can't express
func (m *MigrationManager) runVersionedMigrations(ctx context.Context, currentVersion string) error {
	m.logger.Info("Running versioned migrations", map[string]any{
		"from": currentVersion,
		"to":   CurrentSchemaVersion,
	})

	switch currentVersion {
	case "":
		// fresh database, AutoMigrate creates everything
		return nil
	case "1.0.0":
		return NewAddResultMetadata(m.db, m.logger).Run(ctx)
	}

	return nil
}

func (m *MigrationManager) isPostgres() bool {
	return m.db.Dialector.Name() == "postgres"
}
