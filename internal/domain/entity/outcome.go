package entity

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Push gateway result codes
const (
	ResultCodeSuccess        = "0"
	ResultCodeFailed         = "1"
	ResultCodeUserCancelled  = "1032"
	ResultCodeRequestTimeout = "1037"
	// ResultCodeProcessing is what the query endpoint answers while the customer hasn't acted yet
	ResultCodeProcessing = "500.001.1001"
)

// Outcome is a gateway result already mapped onto the attempt lifecycle.
// Status PENDING means the gateway hasn't decided yet.
type Outcome struct {
	Status      AttemptStatus
	Code        string
	Description string
	ReceiptRef  string
	PaidAt      *time.Time
}

// IsPending reports whether the outcome leaves the attempt undecided
func (o Outcome) IsPending() bool {
	return !o.Status.IsTerminal()
}

// StatusFromResultCode maps a push gateway result code through the fixed code table:
// 0 success, 1032/1037 cancelled or timed out by the user, 1 failed, anything else still pending.
func StatusFromResultCode(code string) AttemptStatus {
	switch normalizeCode(code) {
	case ResultCodeSuccess:
		return StatusSuccess
	case ResultCodeUserCancelled, ResultCodeRequestTimeout:
		return StatusCancelled
	case ResultCodeFailed:
		return StatusFailed
	default:
		return StatusPending
	}
}

// OutcomeFromResultCode builds an outcome from a push gateway result code
func OutcomeFromResultCode(code, description string) Outcome {
	return Outcome{
		Status:      StatusFromResultCode(code),
		Code:        normalizeCode(code),
		Description: description,
	}
}

// normalizeCode turns numeric codes such as " 0" or "1032.0" into their canonical text
func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if n, err := strconv.ParseFloat(code, 64); err == nil && !math.IsInf(n, 0) && n == math.Trunc(n) {
		return strconv.FormatInt(int64(n), 10)
	}
	return code
}
