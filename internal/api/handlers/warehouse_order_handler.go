package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// WarehouseOrderHandler handles warehouse order HTTP requests
type WarehouseOrderHandler struct {
	svc    *service.Service
	tracer tracing.Tracer
}

// NewWarehouseOrderHandler creates a new warehouse order handler
func NewWarehouseOrderHandler(svc *service.Service, tracer tracing.Tracer) *WarehouseOrderHandler {
	return &WarehouseOrderHandler{svc: svc, tracer: tracer}
}

// HandleList returns all warehouse orders
func (h *WarehouseOrderHandler) HandleList(c *gin.Context) {
	orders, err := h.svc.ListWarehouseOrders(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// HandleGet returns one warehouse order
func (h *WarehouseOrderHandler) HandleGet(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetWarehouseOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleConfirm confirms a pending warehouse order
func (h *WarehouseOrderHandler) HandleConfirm(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-confirm-warehouse-order")
	defer h.tracer.EndTransaction(txn)

	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.ConfirmWarehouseOrder(c, id)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleFulfill fulfills a warehouse order against supermarket stock
func (h *WarehouseOrderHandler) HandleFulfill(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-fulfill-warehouse-order")
	defer h.tracer.EndTransaction(txn)

	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.FulfillWarehouseOrder(c, id)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RegisterRoutes registers the handler's routes
func (h *WarehouseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/warehouse-orders", h.HandleList)
	rg.GET("/warehouse-orders/:id", h.HandleGet)
	rg.POST("/warehouse-orders/:id/confirm", h.HandleConfirm)
	rg.POST("/warehouse-orders/:id/fulfill", h.HandleFulfill)
}
