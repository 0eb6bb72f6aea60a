package repository

import (
	"strings"
)

// ErrorType represents the type of database error that occurred
type ErrorType string

const (
	DuplicateKeyError ErrorType = "duplicate_key"
	TransientError    ErrorType = "transient"
	LockError         ErrorType = "lock"
	ConnectionError   ErrorType = "connection"
	ConstraintError   ErrorType = "constraint"
)

// pendingIndexName is the partial unique index allowing one PENDING attempt per order
const pendingIndexName = "idx_payment_attempts_one_pending"

// ErrorClassifier classifies driver errors from postgres and sqlite by message
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// Classify returns the type of error
func (c *ErrorClassifier) Classify(err error) ErrorType {
	switch {
	case err == nil:
		return ""
	case c.IsDuplicateKeyError(err):
		return DuplicateKeyError
	case c.IsLockError(err):
		return LockError
	case c.IsTransientError(err):
		return TransientError
	case c.IsConnectionError(err):
		return ConnectionError
	case c.IsConstraintError(err):
		return ConstraintError
	default:
		return ""
	}
}

// IsDuplicateKeyError checks if the error is a unique violation
func (c *ErrorClassifier) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// IsPendingConflict checks if a unique violation came from the one-pending-per-order index.
// sqlite names the columns instead of the index.
func (c *ErrorClassifier) IsPendingConflict(err error) bool {
	if !c.IsDuplicateKeyError(err) {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, pendingIndexName) ||
		strings.Contains(msg, "payment_attempts.order_id")
}

// IsTransientError checks if an error is transient and can be retried
func (c *ErrorClassifier) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "server closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "database is locked")
}

// IsLockError checks if the error is due to locking
func (c *ErrorClassifier) IsLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock wait timeout") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "serialization failure") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// IsConnectionError checks if the error is related to database connectivity
func (c *ErrorClassifier) IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection") ||
		strings.Contains(msg, "dial") ||
		strings.Contains(msg, "network") ||
		c.IsTransientError(err)
}

// IsConstraintError checks if the error is related to constraint violations
func (c *ErrorClassifier) IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "constraint") ||
		strings.Contains(msg, "violates") ||
		strings.Contains(msg, "foreign key") ||
		strings.Contains(msg, "not null") ||
		c.IsDuplicateKeyError(err)
}
