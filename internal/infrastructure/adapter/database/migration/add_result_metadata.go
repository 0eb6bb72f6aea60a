package migration

import (
	"context"
	"encoding/json"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AddResultMetadata adds payment_attempts.result_metadata to 1.0.0 schemas and
// backfills it for attempts that were already settled
type AddResultMetadata struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAddResultMetadata creates a new migration instance
func NewAddResultMetadata(db *gorm.DB, logger coreport.Logger) *AddResultMetadata {
	return &AddResultMetadata{
		db:     db,
		logger: logger,
	}
}

// Run executes the migration
func (m *AddResultMetadata) Run(ctx context.Context) error {
	db := m.db.WithContext(ctx)
	migrator := db.Migrator()

	if !migrator.HasTable(&model.PaymentAttempt{}) {
		return nil
	}

	if !migrator.HasColumn(&model.PaymentAttempt{}, "ResultMetadata") {
		m.logger.Info("Adding result_metadata column to payment_attempts", nil)
		if err := migrator.AddColumn(&model.PaymentAttempt{}, "ResultMetadata"); err != nil {
			m.logger.Error("Failed to add result_metadata column", map[string]any{"error": err.Error()})
			return err
		}
	}

	var settled []model.PaymentAttempt
	if err := db.Where("status <> ? AND result_metadata IS NULL", "PENDING").Find(&settled).Error; err != nil {
		m.logger.Error("Failed to load settled attempts for backfill", map[string]any{"error": err.Error()})
		return err
	}

	for _, attempt := range settled {
		metadata, err := json.Marshal(map[string]string{
			"status": attempt.Status,
			"code":   attempt.ResultCode,
		})
		if err != nil {
			return err
		}
		if err := db.Model(&model.PaymentAttempt{}).
			Where("id = ?", attempt.ID).
			UpdateColumn("result_metadata", datatypes.JSON(metadata)).Error; err != nil {
			m.logger.Error("Failed to backfill result_metadata", map[string]any{
				"id":    attempt.ID,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Backfilled result_metadata", map[string]any{"rows": len(settled)})
	return nil
}
