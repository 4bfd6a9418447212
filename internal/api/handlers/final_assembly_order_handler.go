package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// FinalAssemblyOrderHandler handles final assembly order HTTP requests
type FinalAssemblyOrderHandler struct {
	svc    *service.Service
	tracer tracing.Tracer
}

// NewFinalAssemblyOrderHandler creates a new final assembly order handler
func NewFinalAssemblyOrderHandler(svc *service.Service, tracer tracing.Tracer) *FinalAssemblyOrderHandler {
	return &FinalAssemblyOrderHandler{svc: svc, tracer: tracer}
}

// HandleList returns all final assembly orders
func (h *FinalAssemblyOrderHandler) HandleList(c *gin.Context) {
	orders, err := h.svc.ListFinalAssemblyOrders(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// HandleGet returns one final assembly order
func (h *FinalAssemblyOrderHandler) HandleGet(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetFinalAssemblyOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleStart begins final assembly
func (h *FinalAssemblyOrderHandler) HandleStart(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.StartFinalAssemblyOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleComplete finishes assembling the product
func (h *FinalAssemblyOrderHandler) HandleComplete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.CompleteFinalAssemblyOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleSubmit hands the product to the plant warehouse
func (h *FinalAssemblyOrderHandler) HandleSubmit(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-submit-final-assembly-order")
	defer h.tracer.EndTransaction(txn)

	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.SubmitFinalAssemblyOrder(c, id)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RegisterRoutes registers the handler's routes
func (h *FinalAssemblyOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/final-assembly-orders", h.HandleList)
	rg.GET("/final-assembly-orders/:id", h.HandleGet)
	rg.POST("/final-assembly-orders/:id/start", h.HandleStart)
	rg.POST("/final-assembly-orders/:id/complete", h.HandleComplete)
	rg.POST("/final-assembly-orders/:id/submit", h.HandleSubmit)
}
