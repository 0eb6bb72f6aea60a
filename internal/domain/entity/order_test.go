package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTestOrder() *Order {
	return &Order{
		ID:            42,
		UserID:        3,
		PaymentStatus: PaymentPending,
		Items: []OrderItem{
			{ID: 1, Title: "Kikoi", Quantity: 2, UnitPrice: NewAmount(decimal.RequireFromString("500.00"))},
			{ID: 2, Title: "Sandals", Quantity: 1, UnitPrice: NewAmount(decimal.RequireFromString("500.00"))},
		},
	}
}

func TestOrderTotal(t *testing.T) {
	order := newTestOrder()
	assert.Equal(t, "1500.00", order.Total().String())
	assert.Equal(t, int64(1500), order.Total().WholeUnits())

	empty := &Order{}
	assert.True(t, empty.Total().IsZero())
}

func TestOrderMarkCompleted(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	order := newTestOrder()

	assert.True(t, order.MarkCompleted(at))
	assert.Equal(t, PaymentCompleted, order.PaymentStatus)
	assert.True(t, order.Ordered)
	assert.Equal(t, &at, order.OrderedAt)
	for _, item := range order.Items {
		assert.True(t, item.Ordered, item.Title)
	}

	later := at.Add(time.Hour)
	assert.False(t, order.MarkCompleted(later))
	assert.Equal(t, at, *order.OrderedAt)
}

func TestOrderOwnership(t *testing.T) {
	order := newTestOrder()
	assert.True(t, order.IsOwnedBy(3))
	assert.False(t, order.IsOwnedBy(4))
	assert.False(t, order.IsOwnedBy(0))
}

func TestPaymentStatusFor(t *testing.T) {
	assert.Equal(t, PaymentCompleted, PaymentStatusFor(StatusSuccess))
	assert.Equal(t, PaymentFailed, PaymentStatusFor(StatusFailed))
	assert.Equal(t, PaymentCancelled, PaymentStatusFor(StatusCancelled))
	assert.Equal(t, PaymentPending, PaymentStatusFor(StatusPending))
}

func TestBillingFullName(t *testing.T) {
	assert.Equal(t, "Amina Otieno", Billing{FirstName: "Amina", LastName: "Otieno"}.FullName())
	assert.Equal(t, "Amina", Billing{FirstName: "Amina"}.FullName())
	assert.Equal(t, "Otieno", Billing{LastName: "Otieno"}.FullName())
}
