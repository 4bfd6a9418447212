package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// WebhookHandler manages webhook subscriptions for terminal order events
type WebhookHandler struct {
	svc    *service.Service
	tracer tracing.Tracer
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(svc *service.Service, tracer tracing.Tracer) *WebhookHandler {
	return &WebhookHandler{svc: svc, tracer: tracer}
}

// SubscribeRequest registers a callback URL for an event
type SubscribeRequest struct {
	URL   string `json:"url" binding:"required"`
	Event string `json:"event"`
}

// HandleSubscribe registers a webhook
func (h *WebhookHandler) HandleSubscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub, err := h.svc.Subscribe(c, req.URL, req.Event)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// HandleList returns all webhook subscriptions
func (h *WebhookHandler) HandleList(c *gin.Context) {
	subs, err := h.svc.ListSubscriptions(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// HandleUnsubscribe removes a webhook subscription
func (h *WebhookHandler) HandleUnsubscribe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Unsubscribe(c, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers the handler's routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks", h.HandleSubscribe)
	rg.GET("/webhooks", h.HandleList)
	rg.DELETE("/webhooks/:id", h.HandleUnsubscribe)
}
