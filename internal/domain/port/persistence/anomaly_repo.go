package persistence

import (
	"context"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// AnomalyRepository keeps contradicting late signals for manual audit
type AnomalyRepository interface {
	Record(ctx context.Context, anomaly *entity.Anomaly) error
	ListByCorrelationID(ctx context.Context, correlationID string) ([]*entity.Anomaly, error)
}
