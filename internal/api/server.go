package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/config"
	"example.com/factory/services/fulfillment/internal/api/handlers"
	"example.com/factory/services/fulfillment/internal/metrics"
	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	svc        *service.Service
	tracer     tracing.Tracer
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, svc *service.Service, tracer tracing.Tracer) *Server {
	server := &Server{
		config: cfg,
		svc:    svc,
		tracer: tracer,
	}
	server.router = server.setupRouter()
	server.httpServer = &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      server.router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
	}
	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	handlers.NewCustomerOrderHandler(s.svc, s.tracer).RegisterRoutes(v1)
	handlers.NewWarehouseOrderHandler(s.svc, s.tracer).RegisterRoutes(v1)
	handlers.NewProductionOrderHandler(s.svc, s.tracer).RegisterRoutes(v1)
	handlers.NewWorkstationOrderHandler(s.svc, s.tracer).RegisterRoutes(v1)
	handlers.NewFinalAssemblyOrderHandler(s.svc, s.tracer).RegisterRoutes(v1)
	handlers.NewSupplyOrderHandler(s.svc, s.tracer).RegisterRoutes(v1)
	handlers.NewAuditHandler(s.svc, s.tracer).RegisterRoutes(v1)
	handlers.NewWebhookHandler(s.svc, s.tracer).RegisterRoutes(v1)
	handlers.NewSettingsHandler(s.svc, s.tracer).RegisterRoutes(v1)
	handlers.NewMetricsHandler(metrics.Default(), s.tracer).RegisterRoutes(v1)

	return router
}

// requestLogger logs each request with its latency and status
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(started)).
			Msg("request")
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}
	return nil
}
