package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// ProductionOrderHandler handles production and control order HTTP requests
type ProductionOrderHandler struct {
	svc    *service.Service
	tracer tracing.Tracer
}

// NewProductionOrderHandler creates a new production order handler
func NewProductionOrderHandler(svc *service.Service, tracer tracing.Tracer) *ProductionOrderHandler {
	return &ProductionOrderHandler{svc: svc, tracer: tracer}
}

// HandleList returns all production orders
func (h *ProductionOrderHandler) HandleList(c *gin.Context) {
	orders, err := h.svc.ListProductionOrders(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// HandleGet returns one production order
func (h *ProductionOrderHandler) HandleGet(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetProductionOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleListControlOrders returns the control orders of a production order
func (h *ProductionOrderHandler) HandleListControlOrders(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	orders, err := h.svc.ListControlOrders(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// HandleConfirm confirms a created production order
func (h *ProductionOrderHandler) HandleConfirm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.ConfirmProductionOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleSchedule submits the order to the production scheduler
func (h *ProductionOrderHandler) HandleSchedule(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-schedule-production-order")
	defer h.tracer.EndTransaction(txn)

	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.ScheduleProductionOrder(c, id)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	h.tracer.AddAttribute(txn, "schedule_id", order.ScheduleID)
	c.JSON(http.StatusOK, order)
}

// HandleDispatch releases the order to the workstations
func (h *ProductionOrderHandler) HandleDispatch(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-dispatch-production-order")
	defer h.tracer.EndTransaction(txn)

	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.DispatchProductionOrder(c, id)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleStart records shop floor activity
func (h *ProductionOrderHandler) HandleStart(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.StartProductionOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleComplete completes the production order
func (h *ProductionOrderHandler) HandleComplete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.CompleteProductionOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleCancel cancels the production order
func (h *ProductionOrderHandler) HandleCancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.CancelProductionOrder(c, id, bindReason(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RegisterRoutes registers the handler's routes
func (h *ProductionOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/production-orders", h.HandleList)
	rg.GET("/production-orders/:id", h.HandleGet)
	rg.GET("/production-orders/:id/control-orders", h.HandleListControlOrders)
	rg.POST("/production-orders/:id/confirm", h.HandleConfirm)
	rg.POST("/production-orders/:id/schedule", h.HandleSchedule)
	rg.POST("/production-orders/:id/dispatch", h.HandleDispatch)
	rg.POST("/production-orders/:id/start", h.HandleStart)
	rg.POST("/production-orders/:id/complete", h.HandleComplete)
	rg.POST("/production-orders/:id/cancel", h.HandleCancel)
}
