package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// SupplyOrderHandler handles supply order HTTP requests
type SupplyOrderHandler struct {
	svc    *service.Service
	tracer tracing.Tracer
}

// NewSupplyOrderHandler creates a new supply order handler
func NewSupplyOrderHandler(svc *service.Service, tracer tracing.Tracer) *SupplyOrderHandler {
	return &SupplyOrderHandler{svc: svc, tracer: tracer}
}

// HandleList returns all supply orders
func (h *SupplyOrderHandler) HandleList(c *gin.Context) {
	orders, err := h.svc.ListSupplyOrders(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// HandleGet returns one supply order
func (h *SupplyOrderHandler) HandleGet(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetSupplyOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleFulfill supplies every requested part line
func (h *SupplyOrderHandler) HandleFulfill(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-fulfill-supply-order")
	defer h.tracer.EndTransaction(txn)

	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.FulfillSupplyOrder(c, id)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleReject declines the supply request
func (h *SupplyOrderHandler) HandleReject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.RejectSupplyOrder(c, id, bindReason(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleCancel withdraws the supply request
func (h *SupplyOrderHandler) HandleCancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.CancelSupplyOrder(c, id, bindReason(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RegisterRoutes registers the handler's routes
func (h *SupplyOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/supply-orders", h.HandleList)
	rg.GET("/supply-orders/:id", h.HandleGet)
	rg.POST("/supply-orders/:id/fulfill", h.HandleFulfill)
	rg.POST("/supply-orders/:id/reject", h.HandleReject)
	rg.POST("/supply-orders/:id/cancel", h.HandleCancel)
}
