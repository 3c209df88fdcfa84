package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aide-systems/aide-core/internal/services"
	"github.com/aide-systems/aide-core/internal/version"
	"github.com/aide-systems/aide-core/pkg/cache"
	"github.com/aide-systems/aide-core/pkg/logger"
)

// SubscriberCounter reports the number of open real-time channels
type SubscriberCounter interface {
	Count() int
}

// TriggerCounter reports the size of the trigger log
type TriggerCounter interface {
	Total(ctx context.Context) (int64, error)
}

// WebhookTracker reports the most recent inbound webhook
type WebhookTracker interface {
	Last() *services.LastWebhook
}

// Prober checks connectivity with the automation engine
type Prober interface {
	Probe(ctx context.Context) *services.ProbeResult
	Environment() string
}

type HealthHandler struct {
	store     cache.Store
	hub       SubscriberCounter
	triggers  TriggerCounter
	webhooks  WebhookTracker
	prober    Prober
	wsEnabled bool
	logger    logger.Logger
}

func NewHealthHandler(store cache.Store, hub SubscriberCounter, triggers TriggerCounter, webhooks WebhookTracker, prober Prober, wsEnabled bool, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		hub:       hub,
		triggers:  triggers,
		webhooks:  webhooks,
		prober:    prober,
		wsEnabled: wsEnabled,
		logger:    log,
	}
}

// Root handles GET / with a short service description
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "AIDE v2 API",
		"status":  "online",
		"version": version.Version,
		"endpoints": gin.H{
			"n8n_webhook": "/n8n/webhook/{workflow_name}",
			"n8n_chat":    "/n8n/chat/{workflow_name}",
			"metrics":     "/api/metrics/current",
			"trigger":     "/api/trigger/n8n",
			"websocket":   "ws://" + c.Request.Host + "/ws",
			"docs":        "/swagger/index.html",
		},
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "n8n_env": h.prober.Environment()})
}

// ServiceHealth handles GET /api/health. The relay stays healthy while
// running on the in-memory store; redis is reported offline.
func (h *HealthHandler) ServiceHealth(c *gin.Context) {
	redis := "offline"
	if cache.IsAvailable(h.store) {
		redis = "online"
	}
	ws := "offline"
	if h.wsEnabled {
		ws = "online"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"services": gin.H{
			"api":       "online",
			"redis":     redis,
			"websocket": ws,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Stats handles GET /api/stats
func (h *HealthHandler) Stats(c *gin.Context) {
	total, err := h.triggers.Total(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to read trigger log length", "error", err)
		total = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"active_connections": h.hub.Count(),
		"redis_available":    cache.IsAvailable(h.store),
		"last_webhook":       h.webhooks.Last(),
		"total_triggers":     total,
	})
}

// TestAutomation handles POST /test/n8n
func (h *HealthHandler) TestAutomation(c *gin.Context) {
	result := h.prober.Probe(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"environment": h.prober.Environment(),
		"test_result": result,
	})
}
