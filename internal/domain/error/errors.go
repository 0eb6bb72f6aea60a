package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidFormat    = 4001
	CodeInvalidRequest   = 4002
	CodeDuplicateAttempt = 4004
	CodeForbidden        = 4030
	CodeAttemptNotFound  = 4040
	CodeOrderNotFound    = 4041
	CodeOrderCompleted   = 4090
	CodeAnomaly          = 4091

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeGatewayUnavailable = 5030
	CodeGatewayAuth        = 5031
)

// Base error types
var (
	// ErrInvalidFormat is returned when a phone number or amount cannot be canonicalized
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAuth is returned when the gateway rejects merchant credentials or a bearer token
	ErrAuth = errors.New("gateway authentication failed")

	// ErrGateway is returned for non-2xx, malformed or unreachable upstream responses
	ErrGateway = errors.New("payment service unavailable")

	// ErrAttemptNotFound is returned when a signal references an unknown correlation id
	ErrAttemptNotFound = errors.New("payment attempt not found")

	// ErrOrderNotFound is returned when the referenced order doesn't exist
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderCompleted is returned when checkout is attempted on an already paid order
	ErrOrderCompleted = errors.New("order is already paid")

	// ErrAnomaly is returned when a signal contradicts a terminal status
	ErrAnomaly = errors.New("signal contradicts terminal payment status")

	// ErrDuplicateAttempt is returned when an attempt with the same correlation id already exists
	ErrDuplicateAttempt = errors.New("payment attempt with this correlation id already exists")

	// ErrUnsupportedMethod is returned when no gateway is registered for a payment method
	ErrUnsupportedMethod = errors.New("unsupported payment method")

	// ErrForbidden is returned when the caller doesn't own the requested resource
	ErrForbidden = errors.New("caller does not own this resource")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return CodeInvalidFormat
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrUnsupportedMethod):
		return CodeInvalidRequest
	case errors.Is(err, ErrDuplicateAttempt):
		return CodeDuplicateAttempt
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrAttemptNotFound):
		return CodeAttemptNotFound
	case errors.Is(err, ErrOrderNotFound):
		return CodeOrderNotFound
	case errors.Is(err, ErrOrderCompleted):
		return CodeOrderCompleted
	case errors.Is(err, ErrAnomaly):
		return CodeAnomaly
	case errors.Is(err, ErrAuth):
		return CodeGatewayAuth
	case errors.Is(err, ErrGateway):
		return CodeGatewayUnavailable
	default:
		return CodeInternalServer
	}
}

// InvalidFormatError describes which input failed canonicalization
type InvalidFormatError struct {
	Field  string
	Value  string
	Reason string
}

// Error implements the error interface
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is checks if the target error is an ErrInvalidFormat
func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// LogFields returns a map of fields for structured logging
func (e *InvalidFormatError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "invalid_format",
		"field":      e.Field,
		"value":      e.Value,
		"reason":     e.Reason,
		"error_code": CodeInvalidFormat,
	}
}

// NewInvalidFormatError creates a new detailed format error
func NewInvalidFormatError(field, value, reason string) error {
	return &InvalidFormatError{Field: field, Value: value, Reason: reason}
}

// GatewayError wraps every failure crossing the gateway client boundary.
// Timeout is set when the call hit its deadline; callers treat that as "still pending".
type GatewayError struct {
	Gateway    string
	Op         string
	StatusCode int
	Timeout    bool
	Err        error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed with status %d: %v", e.Gateway, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Gateway, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrGateway so callers can match any gateway failure
func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway
}

// LogFields returns a map of fields for structured logging
func (e *GatewayError) LogFields() map[string]any {
	fields := map[string]any{
		"error_type":  "gateway_error",
		"gateway":     e.Gateway,
		"operation":   e.Op,
		"status_code": e.StatusCode,
		"timeout":     e.Timeout,
		"error_code":  ErrorCode(e),
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	return fields
}

// NewGatewayError creates a new gateway error
func NewGatewayError(gateway, op string, statusCode int, err error) *GatewayError {
	return &GatewayError{Gateway: gateway, Op: op, StatusCode: statusCode, Err: err}
}

// AnomalyError records a late signal that contradicts the stored terminal status
type AnomalyError struct {
	CorrelationID string
	Stored        string
	Incoming      string
	Channel       string
}

// Error implements the error interface
func (e *AnomalyError) Error() string {
	return fmt.Sprintf("anomaly on attempt %s: stored %s, %s reported %s",
		e.CorrelationID, e.Stored, e.Channel, e.Incoming)
}

// Is checks if the target error is an ErrAnomaly
func (e *AnomalyError) Is(target error) bool {
	return target == ErrAnomaly
}

// LogFields returns a map of fields for structured logging
func (e *AnomalyError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "anomaly",
		"correlation_id":  e.CorrelationID,
		"stored_status":   e.Stored,
		"incoming_status": e.Incoming,
		"channel":         e.Channel,
		"error_code":      CodeAnomaly,
	}
}

// NewAnomalyError creates a new anomaly error
func NewAnomalyError(correlationID, stored, incoming, channel string) error {
	return &AnomalyError{
		CorrelationID: correlationID,
		Stored:        stored,
		Incoming:      incoming,
		Channel:       channel,
	}
}

// IsInvalidFormatError checks if the error is a format error
func IsInvalidFormatError(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

// IsGatewayError checks if the error came from a gateway client
func IsGatewayError(err error) bool {
	return errors.Is(err, ErrGateway)
}

// IsGatewayTimeout checks if the error is a gateway call that hit its deadline
func IsGatewayTimeout(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Timeout
}

// IsAuthError checks if the error is a credential or token failure
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsAnomalyError checks if the error is an anomaly
func IsAnomalyError(err error) bool {
	return errors.Is(err, ErrAnomaly)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrAttemptNotFound) || errors.Is(err, ErrOrderNotFound)
}
