package routes

import (
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	paymentHandler *handler.PaymentHandler,
	checkoutHandler *handler.CheckoutHandler,
	healthHandler *handler.HealthHandler,
) {
	router.GET("/healthz", healthHandler.Healthz)

	payments := router.Group("/payments")
	{
		// gateway-facing, unauthenticated
		payments.POST("/mpesa/callback", paymentHandler.MpesaCallback)
		payments.GET("/pesapal/ipn", paymentHandler.PesapalIPN)
		payments.GET("/pesapal/callback", paymentHandler.PesapalCallback)

		owned := payments.Group("", middleware.RequireUser())
		owned.POST("/checkout", checkoutHandler.Checkout)
		owned.GET("/:correlationId/status", paymentHandler.PollStatus)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, clock coreport.TimeProvider) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, clock))
}
