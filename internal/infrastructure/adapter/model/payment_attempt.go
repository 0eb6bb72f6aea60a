package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentAttempt is the ledger row for one gateway payment
type PaymentAttempt struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	CorrelationID   string          `gorm:"uniqueIndex;not null;size:100"`
	SecondaryID     string          `gorm:"size:100"`
	OrderID         uint64          `gorm:"not null;index"`
	Method          string          `gorm:"not null;size:20"`
	Phone           string          `gorm:"size:20"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status          string          `gorm:"not null;size:20;index"`
	ReceiptRef      *string         `gorm:"size:50"`
	ResultCode      string          `gorm:"size:30"`
	ResultDesc      string          `gorm:"type:text"`
	TransactionDate *time.Time
	// ResultMetadata keeps the outcome that settled the attempt, as received
	ResultMetadata datatypes.JSON
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name for PaymentAttempt
func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}
