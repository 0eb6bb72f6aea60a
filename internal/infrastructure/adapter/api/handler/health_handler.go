package handler

import (
	"context"
	"net/http"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// Pinger checks a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	db     Pinger
	clock  coreport.TimeProvider
	logger coreport.Logger
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(db Pinger, clock coreport.TimeProvider, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{db: db, clock: clock, logger: logger}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := h.clock.WithTimeout(c.Request.Context(), coreport.Duration(2*time.Second))
	defer cancel()

	resp := dto.HealthResponse{
		Status:   "ok",
		Database: "ok",
		Time:     h.clock.Now().UTC().Format(time.RFC3339),
	}
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("Health check failed", coreport.ErrorFields(err, nil))
		resp.Status = "degraded"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
