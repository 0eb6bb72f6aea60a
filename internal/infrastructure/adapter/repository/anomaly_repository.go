package repository

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// AnomalyRepository appends anomaly audit rows
type AnomalyRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAnomalyRepository creates a new AnomalyRepository instance
func NewAnomalyRepository(db *gorm.DB, logger coreport.Logger) *AnomalyRepository {
	return &AnomalyRepository{db: db, logger: logger}
}

// Record stores one anomaly
func (r *AnomalyRepository) Record(ctx context.Context, anomaly *entity.Anomaly) error {
	anomalyModel := model.Anomaly{
		CorrelationID:  anomaly.CorrelationID,
		StoredStatus:   string(anomaly.StoredStatus),
		IncomingStatus: string(anomaly.IncomingStatus),
		IncomingCode:   anomaly.IncomingCode,
		Channel:        string(anomaly.Channel),
		Detail:         anomaly.Detail,
		CreatedAt:      anomaly.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&anomalyModel).Error; err != nil {
		r.logger.Error("Database error when recording anomaly", map[string]any{
			"correlation_id": anomaly.CorrelationID,
			"error":          err.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	anomaly.ID = anomalyModel.ID
	return nil
}

// ListByCorrelationID returns the anomalies recorded for an attempt, oldest first
func (r *AnomalyRepository) ListByCorrelationID(ctx context.Context, correlationID string) ([]*entity.Anomaly, error) {
	var models []model.Anomaly
	err := r.db.WithContext(ctx).
		Where("correlation_id = ?", correlationID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	anomalies := make([]*entity.Anomaly, 0, len(models))
	for _, m := range models {
		anomalies = append(anomalies, &entity.Anomaly{
			ID:             m.ID,
			CorrelationID:  m.CorrelationID,
			StoredStatus:   entity.AttemptStatus(m.StoredStatus),
			IncomingStatus: entity.AttemptStatus(m.IncomingStatus),
			IncomingCode:   m.IncomingCode,
			Channel:        entity.Channel(m.Channel),
			Detail:         m.Detail,
			CreatedAt:      m.CreatedAt,
		})
	}
	return anomalies, nil
}
