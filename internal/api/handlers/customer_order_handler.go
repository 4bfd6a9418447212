package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// CustomerOrderHandler handles customer order HTTP requests
type CustomerOrderHandler struct {
	svc    *service.Service
	tracer tracing.Tracer
}

// NewCustomerOrderHandler creates a new customer order handler
func NewCustomerOrderHandler(svc *service.Service, tracer tracing.Tracer) *CustomerOrderHandler {
	return &CustomerOrderHandler{svc: svc, tracer: tracer}
}

// HandleCreate creates a new customer order
func (h *CustomerOrderHandler) HandleCreate(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-create-customer-order")
	defer h.tracer.EndTransaction(txn)

	var req service.CreateCustomerOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	order, err := h.svc.CreateCustomerOrder(c, req)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	h.tracer.AddAttribute(txn, "order_number", order.OrderNumber)
	c.JSON(http.StatusCreated, order)
}

// HandleList returns all customer orders
func (h *CustomerOrderHandler) HandleList(c *gin.Context) {
	orders, err := h.svc.ListCustomerOrders(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// HandleGet returns one customer order
func (h *CustomerOrderHandler) HandleGet(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetCustomerOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleDelete removes a pending customer order
func (h *CustomerOrderHandler) HandleDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomerOrder(c, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleConfirm confirms a pending customer order
func (h *CustomerOrderHandler) HandleConfirm(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-confirm-customer-order")
	defer h.tracer.EndTransaction(txn)

	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.ConfirmCustomerOrder(c, id)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleFulfill routes a confirmed order down its fulfillment scenario
func (h *CustomerOrderHandler) HandleFulfill(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-fulfill-customer-order")
	defer h.tracer.EndTransaction(txn)

	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.FulfillCustomerOrder(c, id)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	h.tracer.AddAttribute(txn, "scenario", string(order.TriggerScenario))
	c.JSON(http.StatusOK, order)
}

// HandleComplete completes a processing customer order
func (h *CustomerOrderHandler) HandleComplete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.CompleteCustomerOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleCancel cancels a customer order
func (h *CustomerOrderHandler) HandleCancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.CancelCustomerOrder(c, id, bindReason(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RegisterRoutes registers the handler's routes
func (h *CustomerOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/customer-orders", h.HandleCreate)
	rg.GET("/customer-orders", h.HandleList)
	rg.GET("/customer-orders/:id", h.HandleGet)
	rg.DELETE("/customer-orders/:id", h.HandleDelete)
	rg.POST("/customer-orders/:id/confirm", h.HandleConfirm)
	rg.POST("/customer-orders/:id/fulfill", h.HandleFulfill)
	rg.POST("/customer-orders/:id/complete", h.HandleComplete)
	rg.POST("/customer-orders/:id/cancel", h.HandleCancel)
}
