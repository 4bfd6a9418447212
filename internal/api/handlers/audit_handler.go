package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"example.com/factory/services/fulfillment/internal/model"
	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// AuditHandler serves order audit trails
type AuditHandler struct {
	svc    *service.Service
	tracer tracing.Tracer
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(svc *service.Service, tracer tracing.Tracer) *AuditHandler {
	return &AuditHandler{svc: svc, tracer: tracer}
}

var auditSourceTypes = map[string]model.SourceType{
	"customer-orders":       model.SourceCustomerOrder,
	"warehouse-orders":      model.SourceWarehouseOrder,
	"production-orders":     model.SourceProductionOrder,
	"control-orders":        model.SourceControlOrder,
	"workstation-orders":    model.SourceWorkstationOrder,
	"final-assembly-orders": model.SourceFinalAssemblyOrder,
	"supply-orders":         model.SourceSupplyOrder,
}

// HandleGetAuditTrail returns the recorded events of one order, oldest first
func (h *AuditHandler) HandleGetAuditTrail(c *gin.Context) {
	sourceType, ok := auditSourceTypes[c.Param("sourceType")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order kind"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	events, err := h.svc.AuditTrail(c, sourceType, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// RegisterRoutes registers the handler's routes
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders/:sourceType/:id/audit", h.HandleGetAuditTrail)
}
