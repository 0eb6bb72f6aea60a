package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentAttemptRepository implements the attempt ledger using GORM
type PaymentAttemptRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewPaymentAttemptRepository creates a new PaymentAttemptRepository instance
func NewPaymentAttemptRepository(db *gorm.DB, logger coreport.Logger) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// resultMetadata is the JSON snapshot stored with a settled attempt
type resultMetadata struct {
	Status      entity.AttemptStatus `json:"status"`
	Code        string               `json:"code"`
	Description string               `json:"description,omitempty"`
	ReceiptRef  string               `json:"receipt_ref,omitempty"`
	PaidAt      *time.Time           `json:"paid_at,omitempty"`
	SettledAt   time.Time            `json:"settled_at"`
}

func attemptToModel(attempt *entity.PaymentAttempt) *model.PaymentAttempt {
	return &model.PaymentAttempt{
		ID:              attempt.ID,
		CorrelationID:   attempt.CorrelationID,
		SecondaryID:     attempt.SecondaryID,
		OrderID:         attempt.OrderID,
		Method:          string(attempt.Method),
		Phone:           attempt.Phone.String(),
		Amount:          attempt.Amount.Decimal(),
		Status:          string(attempt.Status),
		ReceiptRef:      attempt.ReceiptRef,
		ResultCode:      attempt.ResultCode,
		ResultDesc:      attempt.ResultDesc,
		TransactionDate: attempt.TransactionDate,
		CreatedAt:       attempt.CreatedAt.UTC(),
		UpdatedAt:       attempt.UpdatedAt.UTC(),
	}
}

func attemptToEntity(m *model.PaymentAttempt) *entity.PaymentAttempt {
	return &entity.PaymentAttempt{
		ID:              m.ID,
		CorrelationID:   m.CorrelationID,
		SecondaryID:     m.SecondaryID,
		OrderID:         m.OrderID,
		Method:          entity.PaymentMethod(m.Method),
		Phone:           entity.CanonicalPhone(m.Phone),
		Amount:          entity.NewAmount(m.Amount),
		Status:          entity.AttemptStatus(m.Status),
		ReceiptRef:      m.ReceiptRef,
		ResultCode:      m.ResultCode,
		ResultDesc:      m.ResultDesc,
		TransactionDate: m.TransactionDate,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// handleDatabaseError standardizes database error handling
func (r *PaymentAttemptRepository) handleDatabaseError(operation string, err error, correlationID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Debug("Payment attempt not found", map[string]any{
			"correlation_id": correlationID,
		})
		return errs.ErrAttemptNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"correlation_id": correlationID,
		"error":          err.Error(),
		"error_type":     r.errorClassifier.Classify(err),
	})

	if r.errorClassifier.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateAttempt, correlationID)
	}

	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// Create inserts a new PENDING attempt
func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt *entity.PaymentAttempt) error {
	attemptModel := attemptToModel(attempt)

	if err := r.db.WithContext(ctx).Create(attemptModel).Error; err != nil {
		if r.errorClassifier.IsPendingConflict(err) {
			r.logger.Warn("Order already has a pending payment attempt", map[string]any{
				"order_id":       attempt.OrderID,
				"correlation_id": attempt.CorrelationID,
			})
			return fmt.Errorf("%w: order %d already has a pending attempt", errs.ErrDuplicateAttempt, attempt.OrderID)
		}
		return r.handleDatabaseError("creating payment attempt", err, attempt.CorrelationID)
	}

	attempt.ID = attemptModel.ID
	r.logger.Debug("Payment attempt created", map[string]any{
		"id":             attempt.ID,
		"correlation_id": attempt.CorrelationID,
		"order_id":       attempt.OrderID,
	})
	return nil
}

// GetByCorrelationID loads an attempt by its gateway identifier
func (r *PaymentAttemptRepository) GetByCorrelationID(ctx context.Context, correlationID string) (*entity.PaymentAttempt, error) {
	var attemptModel model.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("correlation_id = ?", correlationID).
		First(&attemptModel).Error
	if err != nil {
		return nil, r.handleDatabaseError("getting payment attempt", err, correlationID)
	}

	return attemptToEntity(&attemptModel), nil
}

// TransitionFromPending moves the attempt out of PENDING with a conditional update.
// Exactly one concurrent caller sees true.
func (r *PaymentAttemptRepository) TransitionFromPending(
	ctx context.Context,
	correlationID string,
	outcome entity.Outcome,
	at time.Time,
) (bool, error) {
	if !outcome.Status.IsTerminal() {
		return false, nil
	}

	metadata, err := json.Marshal(resultMetadata{
		Status:      outcome.Status,
		Code:        outcome.Code,
		Description: outcome.Description,
		ReceiptRef:  outcome.ReceiptRef,
		PaidAt:      outcome.PaidAt,
		SettledAt:   at,
	})
	if err != nil {
		return false, fmt.Errorf("%w: failed to encode result metadata: %s", errs.ErrInternalServer, err.Error())
	}

	updates := map[string]any{
		"status":          string(outcome.Status),
		"result_code":     outcome.Code,
		"result_desc":     outcome.Description,
		"result_metadata": datatypes.JSON(metadata),
		"updated_at":      at,
	}
	if outcome.Status == entity.StatusSuccess {
		if outcome.ReceiptRef != "" {
			updates["receipt_ref"] = outcome.ReceiptRef
		}
		if outcome.PaidAt != nil {
			updates["transaction_date"] = *outcome.PaidAt
		}
	}

	result := r.db.WithContext(ctx).
		Model(&model.PaymentAttempt{}).
		Where("correlation_id = ? AND status = ?", correlationID, string(entity.StatusPending)).
		Updates(updates)
	if result.Error != nil {
		return false, r.handleDatabaseError("transitioning payment attempt", result.Error, correlationID)
	}

	swapped := result.RowsAffected == 1
	r.logger.Debug("Payment attempt compare-and-swap", map[string]any{
		"correlation_id": correlationID,
		"status":         outcome.Status,
		"swapped":        swapped,
	})
	return swapped, nil
}

// ListPending returns PENDING attempts created before olderThan, oldest first
func (r *PaymentAttemptRepository) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.PaymentAttempt, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(entity.StatusPending), olderThan.UTC()).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []model.PaymentAttempt
	if err := query.Find(&models).Error; err != nil {
		return nil, r.handleDatabaseError("listing pending payment attempts", err, "")
	}

	return attemptsToEntities(models), nil
}

// ListByOrder returns every attempt made for an order, newest first
func (r *PaymentAttemptRepository) ListByOrder(ctx context.Context, orderID uint64) ([]*entity.PaymentAttempt, error) {
	var models []model.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, r.handleDatabaseError("listing payment attempts for order", err, "")
	}

	return attemptsToEntities(models), nil
}

func attemptsToEntities(models []model.PaymentAttempt) []*entity.PaymentAttempt {
	attempts := make([]*entity.PaymentAttempt, 0, len(models))
	for i := range models {
		attempts = append(attempts, attemptToEntity(&models[i]))
	}
	return attempts
}
