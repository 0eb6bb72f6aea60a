package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler starts payments
type CheckoutHandler struct {
	checkout usecase.CheckoutUseCase
	logger   coreport.Logger
}

// NewCheckoutHandler creates a new checkout handler instance
func NewCheckoutHandler(checkout usecase.CheckoutUseCase, logger coreport.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

// Checkout handles POST /payments/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    errs.ErrorCode(errs.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	userID := middleware.UserID(c)
	result, err := h.checkout.Start(c.Request.Context(), usecase.CheckoutRequest{
		UserID:  userID,
		OrderID: req.OrderID,
		Method:  entity.PaymentMethod(req.Method),
		Phone:   req.Phone,
		Billing: entity.Billing{
			FirstName: req.Billing.FirstName,
			LastName:  req.Billing.LastName,
			Email:     req.Billing.Email,
			Phone:     req.Billing.Phone,
			Address:   req.Billing.Address,
			City:      req.Billing.City,
		},
	})
	if err != nil {
		h.logger.Warn("Checkout failed", coreport.ErrorFields(err, map[string]any{
			"user_id":  userID,
			"order_id": req.OrderID,
			"method":   req.Method,
		}))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CheckoutResponse{
		CorrelationID: result.CorrelationID,
		OrderID:       result.OrderID,
		Method:        string(result.Method),
		Status:        string(result.Status),
		Message:       result.Message,
		RedirectURL:   result.RedirectURL,
		Simulated:     result.Simulated,
	})
}
