package handler

import (
	"errors"
	"net/http"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// statusFor maps a domain error to an HTTP status and a user-facing message
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrInvalidFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrInvalidRequest), errors.Is(err, errs.ErrUnsupportedMethod):
		return http.StatusBadRequest, err.Error()
	// a foreign payment is indistinguishable from a missing one
	case errors.Is(err, errs.ErrForbidden), errors.Is(err, errs.ErrAttemptNotFound):
		return http.StatusNotFound, "Payment not found"
	case errors.Is(err, errs.ErrOrderNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, errs.ErrOrderCompleted):
		return http.StatusConflict, "Order is already paid"
	case errors.Is(err, errs.ErrDuplicateAttempt):
		return http.StatusConflict, "A payment for this order is already in progress"
	case errors.Is(err, errs.ErrGateway):
		return http.StatusServiceUnavailable, "Payment service unavailable, please try again"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeError(c *gin.Context, err error) {
	status, message := statusFor(err)
	code := errs.ErrorCode(err)
	if errors.Is(err, errs.ErrForbidden) {
		code = errs.CodeAttemptNotFound
	}
	c.JSON(status, dto.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
