package entity

import "time"

// Anomaly is a late signal that contradicted an attempt's terminal status.
// It is kept for manual audit; the attempt itself is never changed.
type Anomaly struct {
	ID             uint64
	CorrelationID  string
	StoredStatus   AttemptStatus
	IncomingStatus AttemptStatus
	IncomingCode   string
	Channel        Channel
	Detail         string
	CreatedAt      time.Time
}
