package model

import (
	"time"
)

// Anomaly is an append-only audit row for a signal that contradicted a settled attempt
type Anomaly struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	CorrelationID  string    `gorm:"not null;size:100;index"`
	StoredStatus   string    `gorm:"not null;size:20"`
	IncomingStatus string    `gorm:"not null;size:20"`
	IncomingCode   string    `gorm:"size:30"`
	Channel        string    `gorm:"not null;size:20"`
	Detail         string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name for Anomaly
func (Anomaly) TableName() string {
	return "payment_anomalies"
}
