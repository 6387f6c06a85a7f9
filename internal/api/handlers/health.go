package handlers

import (
	"context"
	"net/http"

	"github.com/dhima/client-service/internal/api/response"
	"github.com/dhima/client-service/internal/health"
	"github.com/dhima/client-service/internal/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceName is reported by the welcome and health endpoints.
const ServiceName = "client-service"

// HealthChecker runs an on-demand pool check.
type HealthChecker interface {
	Check(ctx context.Context) (health.Report, error)
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger  logging.Logger
	checker HealthChecker
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(logger logging.Logger, checker HealthChecker) *HealthHandler {
	return &HealthHandler{logger: logger, checker: checker}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Service string `json:"service" example:"client-service"`
	health.Report
} // @name HealthResponse

// Health godoc
// @Summary Health check endpoint
// @Description Pings every registered MySQL pool
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	report, err := h.checker.Check(c.Request.Context())
	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
		h.logger.Warn("health check failed",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
	}
	response.Success(c, status, HealthResponse{Service: ServiceName, Report: report}, "")
}

// Welcome godoc
// @Summary Welcome message
// @Tags System
// @Produce plain
// @Success 200 {string} string "Welcome to the app"
// @Router / [get]
func Welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the app")
}
