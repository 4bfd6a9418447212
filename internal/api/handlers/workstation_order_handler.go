package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// WorkstationOrderHandler handles workstation order HTTP requests
type WorkstationOrderHandler struct {
	svc    *service.Service
	tracer tracing.Tracer
}

// NewWorkstationOrderHandler creates a new workstation order handler
func NewWorkstationOrderHandler(svc *service.Service, tracer tracing.Tracer) *WorkstationOrderHandler {
	return &WorkstationOrderHandler{svc: svc, tracer: tracer}
}

// HandleList returns workstation orders, optionally for one workstation
func (h *WorkstationOrderHandler) HandleList(c *gin.Context) {
	workstationID := 0
	if raw := c.Query("workstation"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workstation filter"})
			return
		}
		workstationID = parsed
	}
	orders, err := h.svc.ListWorkstationOrders(c, workstationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// HandleGet returns one workstation order
func (h *WorkstationOrderHandler) HandleGet(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetWorkstationOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleStart begins work at the station
func (h *WorkstationOrderHandler) HandleStart(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.StartWorkstationOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleHalt pauses an in-progress order
func (h *WorkstationOrderHandler) HandleHalt(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.HaltWorkstationOrder(c, id, bindReason(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleResume continues a halted order
func (h *WorkstationOrderHandler) HandleResume(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.ResumeWorkstationOrder(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleComplete finishes the order and credits its output
func (h *WorkstationOrderHandler) HandleComplete(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-complete-workstation-order")
	defer h.tracer.EndTransaction(txn)

	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.CompleteWorkstationOrder(c, id)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleWaitingForParts blocks the order on a new supply order
func (h *WorkstationOrderHandler) HandleWaitingForParts(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.RequestParts(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RegisterRoutes registers the handler's routes
func (h *WorkstationOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/workstation-orders", h.HandleList)
	rg.GET("/workstation-orders/:id", h.HandleGet)
	rg.POST("/workstation-orders/:id/start", h.HandleStart)
	rg.POST("/workstation-orders/:id/halt", h.HandleHalt)
	rg.POST("/workstation-orders/:id/resume", h.HandleResume)
	rg.POST("/workstation-orders/:id/complete", h.HandleComplete)
	rg.POST("/workstation-orders/:id/waiting-for-parts", h.HandleWaitingForParts)
}
