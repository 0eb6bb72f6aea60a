package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the storefront order row; reconciliation writes only its payment columns
type Order struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement"`
	UserID           uint64 `gorm:"not null;index"`
	Reference        string `gorm:"size:64"`
	PaymentStatus    string `gorm:"not null;size:20;default:PENDING"`
	PaymentMethod    string `gorm:"size:20"`
	Ordered          bool   `gorm:"not null;default:false"`
	OrderedAt        *time.Time
	BillingFirstName string      `gorm:"size:100"`
	BillingLastName  string      `gorm:"size:100"`
	BillingEmail     string      `gorm:"size:255"`
	BillingPhone     string      `gorm:"size:20"`
	BillingAddress   string      `gorm:"size:255"`
	BillingCity      string      `gorm:"size:100"`
	Items            []OrderItem `gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time   `gorm:"not null"`
	UpdatedAt        time.Time   `gorm:"not null"`
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a line item of an order
type OrderItem struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `gorm:"not null;index"`
	Title     string          `gorm:"not null;size:255"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Ordered   bool            `gorm:"not null;default:false"`
}

// TableName specifies the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}
