package handlers

import (
	"github.com/dhima/client-service/internal/api/response"
	"github.com/dhima/client-service/internal/health"
	"github.com/dhima/client-service/internal/logging"
	"github.com/gin-gonic/gin"
)

// ReportSource exposes the latest scheduled health report.
type ReportSource interface {
	Last() (health.Report, bool)
}

// MetricsHandler handles metrics requests.
type MetricsHandler struct {
	logger  logging.Logger
	pools   health.Source
	reports ReportSource
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(logger logging.Logger, pools health.Source, reports ReportSource) *MetricsHandler {
	return &MetricsHandler{logger: logger, pools: pools, reports: reports}
}

// PoolMetrics is the connection pool snapshot of one named pool.
type PoolMetrics struct {
	Name  string           `json:"name" example:"_default_"`
	Stats health.PoolStats `json:"stats"`
} // @name PoolMetrics

// MetricsResponse represents the metrics response.
type MetricsResponse struct {
	Pools      []PoolMetrics  `json:"pools"`
	LastHealth *health.Report `json:"last_health,omitempty"`
} // @name MetricsResponse

// Metrics godoc
// @Summary Get pool metrics
// @Description Returns connection statistics for every pool and the last scheduled health report
// @Tags System
// @Produce json
// @Success 200 {object} MetricsResponse
// @Router /metrics [get]
func (h *MetricsHandler) Metrics(c *gin.Context) {
	pools := h.pools()
	metrics := MetricsResponse{Pools: make([]PoolMetrics, 0, len(pools))}
	for _, pool := range pools {
		metrics.Pools = append(metrics.Pools, PoolMetrics{
			Name:  pool.Name(),
			Stats: health.StatsFrom(pool.Stats()),
		})
	}
	if h.reports != nil {
		if report, ok := h.reports.Last(); ok {
			metrics.LastHealth = &report
		}
	}

	response.OK(c, metrics)
}
