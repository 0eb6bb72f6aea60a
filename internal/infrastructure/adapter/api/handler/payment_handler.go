package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/gateway/mpesa"
	"github.com/gin-gonic/gin"
)

// PaymentHandler receives every post-initiation signal and status poll
type PaymentHandler struct {
	reconciliation usecase.ReconciliationUseCase
	completionURL  string
	logger         coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance.
// completionURL is where the browser lands after the Pesapal redirect.
func NewPaymentHandler(
	reconciliation usecase.ReconciliationUseCase,
	completionURL string,
	logger coreport.Logger,
) *PaymentHandler {
	if completionURL == "" {
		completionURL = "/"
	}
	return &PaymentHandler{
		reconciliation: reconciliation,
		completionURL:  completionURL,
		logger:         logger,
	}
}

// MpesaCallback handles POST /payments/mpesa/callback
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    errs.ErrorCode(errs.ErrInvalidRequest),
			Message: "Unreadable body",
		})
		return
	}

	callback, err := mpesa.ParseCallback(body)
	if err != nil {
		h.logger.Warn("Malformed M-Pesa callback", coreport.ErrorFields(err, nil))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    errs.ErrorCode(err),
			Message: "Malformed callback",
		})
		return
	}

	result, err := h.reconciliation.HandleCallback(c.Request.Context(), callback.CheckoutRequestID, callback.Outcome())
	if err != nil {
		// unknown ids get a 404; Daraja stops retrying on any answer
		if !errors.Is(err, errs.ErrAttemptNotFound) {
			h.logger.Error("Failed to apply M-Pesa callback", coreport.ErrorFields(err, map[string]any{
				"correlation_id": callback.CheckoutRequestID,
			}))
		}
		writeError(c, err)
		return
	}

	h.logger.Info("M-Pesa callback applied", map[string]any{
		"correlation_id": callback.CheckoutRequestID,
		"result_code":    callback.ResultCode,
		"result":         result.Kind,
		"metadata":       callback.Metadata(),
	})
	c.JSON(http.StatusOK, dto.CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}

// PesapalIPN handles GET /payments/pesapal/ipn. It always answers 200 so
// Pesapal doesn't keep retrying; failures are logged and left to the sweeper.
func (h *PaymentHandler) PesapalIPN(c *gin.Context) {
	trackingID := c.Query("OrderTrackingId")
	if trackingID == "" {
		h.logger.Warn("Pesapal IPN without tracking id", map[string]any{"query": c.Request.URL.RawQuery})
		c.JSON(http.StatusOK, dto.IPNAck{Status: "OK"})
		return
	}

	result, err := h.reconciliation.HandleIPN(c.Request.Context(), trackingID)
	if err != nil {
		h.logger.Warn("Pesapal IPN not applied", coreport.ErrorFields(err, map[string]any{
			"correlation_id": trackingID,
		}))
	} else {
		h.logger.Info("Pesapal IPN applied", map[string]any{
			"correlation_id": trackingID,
			"result":         result.Kind,
		})
	}
	c.JSON(http.StatusOK, dto.IPNAck{Status: "OK"})
}

// PesapalCallback handles GET /payments/pesapal/callback, the browser return
// after paying. It reconciles like an IPN and redirects to the completion page.
func (h *PaymentHandler) PesapalCallback(c *gin.Context) {
	trackingID := c.Query("OrderTrackingId")
	if trackingID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    errs.ErrorCode(errs.ErrInvalidRequest),
			Message: "Missing OrderTrackingId",
		})
		return
	}

	status := entity.StatusPending
	result, err := h.reconciliation.Reconcile(c.Request.Context(), trackingID, entity.ChannelRedirect)
	switch {
	case errors.Is(err, errs.ErrAttemptNotFound):
		writeError(c, err)
		return
	case err != nil:
		h.logger.Warn("Pesapal return not reconciled", coreport.ErrorFields(err, map[string]any{
			"correlation_id": trackingID,
		}))
	case result.Attempt != nil:
		status = result.Attempt.Status
	}

	c.Redirect(http.StatusFound, h.completionLocation(trackingID, status))
}

func (h *PaymentHandler) completionLocation(trackingID string, status entity.AttemptStatus) string {
	location, err := url.Parse(h.completionURL)
	if err != nil {
		return h.completionURL
	}
	query := location.Query()
	query.Set("payment", trackingID)
	query.Set("status", string(status))
	location.RawQuery = query.Encode()
	return location.String()
}

// PollStatus handles GET /payments/:correlationId/status for the owning user
func (h *PaymentHandler) PollStatus(c *gin.Context) {
	correlationID := c.Param("correlationId")
	userID := middleware.UserID(c)

	poll, err := h.reconciliation.Poll(c.Request.Context(), userID, correlationID)
	if err != nil {
		if status, _ := statusFor(err); status >= http.StatusInternalServerError {
			h.logger.Error("Status poll failed", coreport.ErrorFields(err, map[string]any{
				"correlation_id": correlationID,
				"user_id":        userID,
			}))
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{
		CorrelationID: poll.CorrelationID,
		Status:        string(poll.Status),
		Message:       poll.Message,
		ReceiptRef:    poll.ReceiptRef,
		Amount:        poll.Amount.String(),
		RetryLater:    poll.RetryLater,
	})
}
