package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input      string
			wholeUnits int64
			formatted  string
		}{
			{"1500.00", 1500, "1500.00"},
			{"1500", 1500, "1500.00"},
			{" 99.5 ", 99, "99.50"},
			{"0.01", 0, "0.01"},
			{"1234567.89", 1234567, "1234567.89"},
			{"10.100", 10, "10.10"},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				amount, err := ParseAmount(tc.input)
				require.NoError(t, err)
				assert.Equal(t, tc.wholeUnits, amount.WholeUnits())
				assert.Equal(t, tc.formatted, amount.String())
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		testCases := []struct {
			input       string
			description string
		}{
			{"", "Empty string"},
			{"   ", "Whitespace only"},
			{"-1.00", "Negative amount"},
			{"0", "Zero"},
			{"1.234", "Too many decimal places"},
			{"abc", "Non-numeric"},
			{"1,000.00", "Comma as thousands separator"},
			{"$100", "Currency symbol"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ParseAmount(tc.input)
				assert.ErrorIs(t, err, errs.ErrInvalidFormat)
			})
		}
	})
}

func TestAmountArithmetic(t *testing.T) {
	price := NewAmount(decimal.RequireFromString("250.50"))

	total := price.Mul(3).Add(NewAmount(decimal.NewFromInt(100)))
	assert.Equal(t, "851.50", total.String())
	assert.Equal(t, int64(851), total.WholeUnits())
	assert.True(t, total.Equal(NewAmount(decimal.RequireFromString("851.5"))))
	assert.False(t, total.IsZero())
	assert.True(t, Amount{}.IsZero())
}
