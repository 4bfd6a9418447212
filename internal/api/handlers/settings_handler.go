package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// SettingsHandler exposes runtime fulfillment settings
type SettingsHandler struct {
	svc    *service.Service
	tracer tracing.Tracer
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(svc *service.Service, tracer tracing.Tracer) *SettingsHandler {
	return &SettingsHandler{svc: svc, tracer: tracer}
}

// LotSizeThresholdRequest updates the production planning threshold
type LotSizeThresholdRequest struct {
	Threshold int `json:"threshold" binding:"required"`
}

// HandleGetLotSizeThreshold returns the active threshold
func (h *SettingsHandler) HandleGetLotSizeThreshold(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"threshold": h.svc.LotSizeThreshold(c)})
}

// HandleSetLotSizeThreshold updates the threshold at runtime
func (h *SettingsHandler) HandleSetLotSizeThreshold(c *gin.Context) {
	var req LotSizeThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.SetLotSizeThreshold(c, req.Threshold); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threshold": req.Threshold})
}

// RegisterRoutes registers the handler's routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings/lot-size-threshold", h.HandleGetLotSizeThreshold)
	rg.PUT("/settings/lot-size-threshold", h.HandleSetLotSizeThreshold)
}
