package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/aide-systems/aide-core/internal/api/handlers"
	"github.com/aide-systems/aide-core/internal/api/middleware"
	realtime "github.com/aide-systems/aide-core/internal/api/websocket"
	"github.com/aide-systems/aide-core/internal/config"
	"github.com/aide-systems/aide-core/internal/monitoring"
	"github.com/aide-systems/aide-core/internal/services"
	"github.com/aide-systems/aide-core/pkg/cache"
	"github.com/aide-systems/aide-core/pkg/logger"
)

// Deps are the long-lived components the HTTP layer is built on
type Deps struct {
	Store      cache.Store
	Hub        *realtime.Hub
	Automation *services.AutomationClient
	Generator  *services.MetricsGenerator
	Router     *services.WebhookRouter
	Chat       *services.ChatRelay
	Triggers   *services.TriggerService
	Reports    *services.ReportJobs
}

type Server struct {
	config     *config.Config
	logger     logger.Logger
	deps       Deps
	router     *gin.Engine
	httpServer *http.Server
}

func NewServer(cfg *config.Config, log logger.Logger, deps Deps) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		config: cfg,
		logger: log,
		deps:   deps,
		router: gin.New(),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.CORSMiddleware(s.config.CORS))
	if s.config.IsDevelopment() && s.config.LogLevel == "debug" {
		s.router.Use(middleware.RequestLoggerWithBody(s.logger))
	} else {
		s.router.Use(middleware.RequestLogger(s.logger))
	}
	if s.config.Monitoring.Enabled {
		s.router.Use(middleware.MetricsMiddleware())
	}
	s.router.Use(middleware.ErrorHandler(s.logger))

	// OpenAPI specification and Swagger UI at /swagger/index.html
	s.router.StaticFile("/api/openapi.yaml", handlers.ResolveOpenAPIPath())
	s.router.GET("/api/openapi.json", handlers.GetOpenAPISpec)
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/api/openapi.json")))

	if s.config.Monitoring.Enabled {
		monitoring.SetupPrometheusMetrics(s.router, s.config.Monitoring.MetricsPath)
	}
}

func (s *Server) setupRoutes() {
	d := s.deps

	healthHandler := handlers.NewHealthHandler(d.Store, d.Hub, d.Triggers, d.Router, d.Automation, s.config.WebSocket.Enabled, s.logger)
	webhookHandler := handlers.NewWebhookHandler(d.Router, d.Chat, s.config.Webhook.Mode, s.logger)
	triggerHandler := handlers.NewTriggerHandler(d.Triggers, s.logger)
	metricsHandler := handlers.NewMetricsHandler(d.Generator, d.Triggers, s.logger)
	ingestHandler := handlers.NewIngestHandler(d.Store, d.Hub, s.logger)

	s.router.GET("/", healthHandler.Root)
	s.router.GET("/health", healthHandler.Health)
	s.router.POST("/test/n8n", healthHandler.TestAutomation)

	n8n := s.router.Group("/n8n")
	{
		n8n.POST("/webhook/:workflow_name", webhookHandler.Webhook)
		n8n.POST("/chat/:workflow_name", webhookHandler.Chat)
	}

	api := s.router.Group("/api")
	{
		api.GET("/health", healthHandler.ServiceHealth)
		api.GET("/stats", healthHandler.Stats)

		api.POST("/trigger/n8n", triggerHandler.Trigger)
		api.GET("/triggers/recent", triggerHandler.Recent)

		api.GET("/metrics/current", metricsHandler.Current)
		api.GET("/metrics/historical", metricsHandler.Historical)
		api.POST("/data/ingest", ingestHandler.Ingest)
	}

	if s.config.WebSocket.Enabled {
		wsHandler := handlers.NewWebSocketHandler(d.Hub, d.Generator, s.config.WebSocket, s.logger)
		s.router.GET("/ws", wsHandler.Stream)
	}
}

// Start serves until ctx is cancelled, then drains report jobs and detached
// triggers before shutting the listener down
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Chat relays may wait the full chat timeout for n8n
		WriteTimeout: s.config.Automation.ChatTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("AIDE-CORE REST API server starting", "port", s.config.Port, "webhook_mode", s.config.Webhook.Mode)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down AIDE-CORE gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)

	if s.deps.Reports != nil {
		if rerr := s.deps.Reports.Shutdown(shutdownCtx); rerr != nil {
			s.logger.Warn("Report jobs did not stop in time", "error", rerr)
		}
	}
	if s.deps.Triggers != nil {
		if terr := s.deps.Triggers.Wait(shutdownCtx); terr != nil {
			s.logger.Warn("Detached triggers did not finish in time", "error", terr)
		}
	}

	return err
}

// Handler returns the underlying Gin engine so tests (or embedders) can mount it.
func (s *Server) Handler() http.Handler {
	return s.router
}
