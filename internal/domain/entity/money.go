package entity

import (
	"strings"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// Amount is a positive monetary value in the store currency
type Amount struct {
	value decimal.Decimal
}

// NewAmount wraps a decimal value
func NewAmount(value decimal.Decimal) Amount {
	return Amount{value: value}
}

// ParseAmount validates a textual amount such as "1500" or "1500.00"
func ParseAmount(raw string) (Amount, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Amount{}, errs.NewInvalidFormatError("amount", raw, "empty value")
	}

	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, errs.NewInvalidFormatError("amount", raw, "not a decimal number")
	}
	if !value.IsPositive() {
		return Amount{}, errs.NewInvalidFormatError("amount", raw, "amount must be positive")
	}
	if value.Exponent() < -MaxDecimalPlaces && !value.Equal(value.Truncate(MaxDecimalPlaces)) {
		return Amount{}, errs.NewInvalidFormatError("amount", raw, "too many decimal places")
	}

	return Amount{value: value}, nil
}

// Decimal returns the underlying decimal value
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// WholeUnits returns the amount as the whole-unit integer gateways expect.
// Fractional subunits are dropped.
func (a Amount) WholeUnits() int64 {
	return a.value.Truncate(0).IntPart()
}

// String returns the amount with exactly two decimal places
func (a Amount) String() string {
	return a.value.StringFixed(MaxDecimalPlaces)
}

// IsZero reports whether the amount was never set
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// Add returns the sum of two amounts
func (a Amount) Add(other Amount) Amount {
	return Amount{value: a.value.Add(other.value)}
}

// Mul returns the amount multiplied by a quantity
func (a Amount) Mul(quantity int) Amount {
	return Amount{value: a.value.Mul(decimal.NewFromInt(int64(quantity)))}
}

// Equal compares two amounts by value
func (a Amount) Equal(other Amount) bool {
	return a.value.Equal(other.value)
}
