package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aide-systems/aide-core/internal/api"
	realtime "github.com/aide-systems/aide-core/internal/api/websocket"
	"github.com/aide-systems/aide-core/internal/config"
	"github.com/aide-systems/aide-core/internal/messaging"
	"github.com/aide-systems/aide-core/internal/services"
	"github.com/aide-systems/aide-core/internal/tracing"
	"github.com/aide-systems/aide-core/internal/version"
	"github.com/aide-systems/aide-core/pkg/cache"
	"github.com/aide-systems/aide-core/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg = config.ApplyEnvironment(cfg)

	// Initialize logger
	logger := logger.New(cfg.LogLevel)
	logger.Info("Starting AIDE-CORE", "version", version.Version, "commit", version.Commit, "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.TracingEnabled {
		tp, err := tracing.NewTracerProvider(ctx, cfg.Monitoring.ServiceName, version.Version, cfg.Monitoring.OTLPEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled; exporter setup failed", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Tracer shutdown failed", "error", err)
				}
			}()
			logger.Info("OTLP tracing enabled", "endpoint", cfg.Monitoring.OTLPEndpoint)
		}
	}

	// Redis when reachable, in-memory otherwise
	store := cache.Open(cfg.Cache, logger)
	defer func() {
		if err := cache.Close(store); err != nil {
			logger.Warn("Cache close failed", "error", err)
		}
	}()

	hub := realtime.NewHub(logger)
	if cfg.Messaging.NATS.Enabled {
		pub, err := messaging.NewPublisher(cfg.Messaging.NATS, logger)
		if err != nil {
			logger.Warn("NATS mirror disabled; connection failed", "url", cfg.Messaging.NATS.URL, "error", err)
		} else {
			hub.SetMirror(pub)
			defer pub.Close()
			logger.Info("Mirroring broadcasts to NATS", "subject_prefix", cfg.Messaging.NATS.SubjectPrefix)
		}
	}

	automation, err := services.NewAutomationClient(cfg.Automation, logger)
	if err != nil {
		logger.Fatal("Failed to initialize automation client", "error", err)
	}
	logger.Info("Automation engine selected", "environment", automation.Environment(), "endpoint", automation.Endpoint())

	generator := services.NewMetricsGenerator(nil, 0)
	reports := services.NewReportJobs(hub, cfg.Webhook.ReportDelay, logger)

	apiServer := api.NewServer(cfg, logger, api.Deps{
		Store:      store,
		Hub:        hub,
		Automation: automation,
		Generator:  generator,
		Router:     services.NewWebhookRouter(store, hub, reports, generator, cfg.Webhook.EnvelopeTTL, logger),
		Chat:       services.NewChatRelay(automation, cfg.Automation.ChatTimeout, logger),
		Triggers:   services.NewTriggerService(automation, store, cfg, logger),
		Reports:    reports,
	})

	if err := apiServer.Start(ctx); err != nil {
		logger.Fatal("Server failed to start", "error", err)
	}

	logger.Info("AIDE-CORE shutdown complete")
}
