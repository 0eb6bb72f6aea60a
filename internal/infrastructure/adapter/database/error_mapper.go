package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"gorm.io/gorm"
)

// EntityType represents the type of entity for errors mapping
type EntityType string

const (
	// EntityTypeAttempt represents a payment attempt row
	EntityTypeAttempt EntityType = "payment_attempt"
	// EntityTypeOrder represents an order row
	EntityTypeOrder EntityType = "order"
)

// ErrorMapper maps raw database errors that escape the repositories to domain errors
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a database error to a domain error. Errors that already carry a
// domain sentinel pass through unchanged.
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil || isDomainError(err) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s: record not found", errs.ErrInternalServer, operation)
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint"):
		return fmt.Errorf("%w: %s", errs.ErrDuplicateAttempt, operation)

	case strings.Contains(errMsg, "check constraint") ||
		strings.Contains(errMsg, "foreign key constraint"):
		return errs.ErrConstraintViolation

	case strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded"):
		return fmt.Errorf("%w: %s operation timed out", errs.ErrDatabaseConnection, operation)

	case strings.Contains(errMsg, "deadlock") ||
		strings.Contains(errMsg, "serialization") ||
		strings.Contains(errMsg, "database is locked") ||
		strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "no connection"):
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, operation)

	default:
		return fmt.Errorf("%w: %s: %v", errs.ErrInternalServer, operation, err)
	}
}

// MapEntityNotFoundError maps gorm.ErrRecordNotFound to the entity's not-found error
func (m *ErrorMapper) MapEntityNotFoundError(err error, entityType EntityType) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		switch entityType {
		case EntityTypeAttempt:
			return errs.ErrAttemptNotFound
		case EntityTypeOrder:
			return errs.ErrOrderNotFound
		}
	}

	return m.MapError(err, string(entityType))
}

func isDomainError(err error) bool {
	for _, target := range []error{
		errs.ErrAttemptNotFound,
		errs.ErrOrderNotFound,
		errs.ErrOrderCompleted,
		errs.ErrDuplicateAttempt,
		errs.ErrDatabaseConnection,
		errs.ErrConstraintViolation,
		errs.ErrInvalidFormat,
		errs.ErrInvalidRequest,
		errs.ErrForbidden,
		errs.ErrInternalServer,
		errs.ErrAnomaly,
		errs.ErrGateway,
		errs.ErrAuth,
		errs.ErrUnsupportedMethod,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
