package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassifier(t *testing.T) {
	c := NewErrorClassifier()

	testCases := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"nil", nil, ""},
		{"postgres unique", errors.New(`ERROR: duplicate key value violates unique constraint "idx_payment_attempts_one_pending" (SQLSTATE 23505)`), DuplicateKeyError},
		{"sqlite unique", errors.New("UNIQUE constraint failed: payment_attempts.correlation_id"), DuplicateKeyError},
		{"serialization", errors.New("ERROR: could not serialize access due to concurrent update"), LockError},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), LockError},
		{"reset", errors.New("read tcp: connection reset by peer"), TransientError},
		{"dial", errors.New("dial tcp 10.0.0.1:5432: no route"), ConnectionError},
		{"foreign key", errors.New("violates foreign key constraint"), ConstraintError},
		{"other", errors.New("something else"), ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.Classify(tc.err))
		})
	}
}

func TestIsPendingConflict(t *testing.T) {
	c := NewErrorClassifier()

	assert.True(t, c.IsPendingConflict(errors.New(`duplicate key value violates unique constraint "idx_payment_attempts_one_pending"`)))
	assert.True(t, c.IsPendingConflict(errors.New("UNIQUE constraint failed: payment_attempts.order_id")))
	assert.False(t, c.IsPendingConflict(errors.New("UNIQUE constraint failed: payment_attempts.correlation_id")))
	assert.False(t, c.IsPendingConflict(errors.New("connection refused")))
}
