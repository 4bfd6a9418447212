package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"example.com/factory/services/fulfillment/internal/metrics"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// MetricsHandler serves operational counters and timings
type MetricsHandler struct {
	metrics *metrics.Metrics
	tracer  tracing.Tracer
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(m *metrics.Metrics, tracer tracing.Tracer) *MetricsHandler {
	return &MetricsHandler{metrics: m, tracer: tracer}
}

// HandleGetMetrics returns a snapshot of all counters and timers
func (h *MetricsHandler) HandleGetMetrics(c *gin.Context) {
	snapshot := h.metrics.Snapshot()
	snapshot["goroutines"] = runtime.NumGoroutine()
	c.JSON(http.StatusOK, snapshot)
}

// RegisterRoutes registers the handler's routes
func (h *MetricsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/metrics", h.HandleGetMetrics)
}
