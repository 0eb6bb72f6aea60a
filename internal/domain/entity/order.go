package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the commercial payment state of an order
type PaymentStatus string

// PaymentStatus constants
const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// Billing is the snapshot of customer details captured at checkout
type Billing struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
}

// FullName joins first and last name
func (b Billing) FullName() string {
	switch {
	case b.FirstName == "":
		return b.LastName
	case b.LastName == "":
		return b.FirstName
	default:
		return b.FirstName + " " + b.LastName
	}
}

// OrderItem is a line item; Ordered flips once the owning order is paid
type OrderItem struct {
	ID        uint64
	OrderID   uint64
	Title     string
	Quantity  int
	UnitPrice Amount
	Ordered   bool
}

// Total returns quantity times unit price
func (i OrderItem) Total() Amount {
	return i.UnitPrice.Mul(i.Quantity)
}

// Order is owned by the storefront; reconciliation only flips its payment fields
type Order struct {
	ID            uint64
	UserID        uint64
	Reference     string
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	Ordered       bool // fulfillment eligible
	OrderedAt     *time.Time
	Billing       Billing
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Total sums every line item
func (o *Order) Total() Amount {
	total := NewAmount(decimal.Zero)
	for _, item := range o.Items {
		total = total.Add(item.Total())
	}
	return total
}

// IsCompleted reports whether the order has already been paid
func (o *Order) IsCompleted() bool {
	return o.PaymentStatus == PaymentCompleted
}

// IsOwnedBy reports whether the order belongs to the user
func (o *Order) IsOwnedBy(userID uint64) bool {
	return userID != 0 && o.UserID == userID
}

// MarkCompleted sets the commercial completion fields.
// Returns false when the order was already completed so callers can skip side effects.
func (o *Order) MarkCompleted(at time.Time) bool {
	if o.IsCompleted() {
		return false
	}
	o.PaymentStatus = PaymentCompleted
	o.Ordered = true
	o.OrderedAt = &at
	for i := range o.Items {
		o.Items[i].Ordered = true
	}
	o.UpdatedAt = at
	return true
}

// PaymentStatusFor maps a terminal attempt status onto the order's payment status
func PaymentStatusFor(status AttemptStatus) PaymentStatus {
	switch status {
	case StatusSuccess:
		return PaymentCompleted
	case StatusFailed:
		return PaymentFailed
	case StatusCancelled:
		return PaymentCancelled
	default:
		return PaymentPending
	}
}
