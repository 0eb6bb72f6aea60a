package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	t.Run("Same number in every accepted shape", func(t *testing.T) {
		inputs := []string{
			"0712345678",
			"254712345678",
			"712345678",
			"+254 712 345 678",
			"0712-345-678",
			"(0712) 345678",
		}

		for _, input := range inputs {
			t.Run(input, func(t *testing.T) {
				phone, err := NormalizePhone(input)
				require.NoError(t, err)
				assert.Equal(t, CanonicalPhone("254712345678"), phone)
			})
		}
	})

	t.Run("Second carrier range", func(t *testing.T) {
		for _, input := range []string{"0112345678", "254112345678", "112345678"} {
			phone, err := NormalizePhone(input)
			require.NoError(t, err, input)
			assert.Equal(t, "254112345678", phone.String())
		}
	})

	t.Run("Invalid inputs", func(t *testing.T) {
		testCases := []struct {
			input       string
			description string
		}{
			{"", "Empty string"},
			{"abc", "No digits"},
			{"071234567", "Local form one digit short"},
			{"07123456789", "Local form one digit long"},
			{"0812345678", "Local form with unknown carrier digit"},
			{"254812345678", "International form with unknown carrier digit"},
			{"25471234567", "International form too short"},
			{"2547123456789", "International form too long"},
			{"812345678", "Short form with unknown carrier digit"},
			{"71234567", "Short form too short"},
			{"255712345678", "Foreign country code"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				phone, err := NormalizePhone(tc.input)
				assert.Empty(t, phone)
				assert.ErrorIs(t, err, errs.ErrInvalidFormat)
			})
		}
	})
}
