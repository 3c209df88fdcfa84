package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aide-systems/aide-core/internal/services"
	"github.com/aide-systems/aide-core/pkg/cache"
	"github.com/aide-systems/aide-core/pkg/logger"
)

func healthRoutes(tracker fakeTracker) http.Handler {
	store := cache.NewMemoryStore(logger.NewNop())
	h := NewHealthHandler(store, &fakeHub{count: 3}, &fakeTriggers{total: 7}, tracker, fakeProber{env: "test"}, true, logger.NewNop())
	r := newEngine()
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/api/health", h.ServiceHealth)
	r.GET("/api/stats", h.Stats)
	r.POST("/test/n8n", h.TestAutomation)
	return r
}

func TestHealthHandler_Health(t *testing.T) {
	w, body := doJSON(t, healthRoutes(fakeTracker{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["n8n_env"])
}

func TestHealthHandler_ServiceHealthOnMemoryStore(t *testing.T) {
	w, body := doJSON(t, healthRoutes(fakeTracker{}), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	svcs := body["services"].(map[string]interface{})
	assert.Equal(t, "online", svcs["api"])
	assert.Equal(t, "offline", svcs["redis"])
	assert.Equal(t, "online", svcs["websocket"])
}

func TestHealthHandler_Stats(t *testing.T) {
	w, body := doJSON(t, healthRoutes(fakeTracker{}), http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), body["active_connections"])
	assert.Equal(t, false, body["redis_available"])
	assert.Equal(t, float64(7), body["total_triggers"])
	assert.Nil(t, body["last_webhook"])

	last := &services.LastWebhook{Workflow: "alert_monitoring", ReceivedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	_, body = doJSON(t, healthRoutes(fakeTracker{last: last}), http.MethodGet, "/api/stats", "")
	lw := body["last_webhook"].(map[string]interface{})
	assert.Equal(t, "alert_monitoring", lw["workflow"])
}

func TestHealthHandler_TestAutomation(t *testing.T) {
	w, body := doJSON(t, healthRoutes(fakeTracker{}), http.MethodPost, "/test/n8n", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", body["environment"])
	res := body["test_result"].(map[string]interface{})
	assert.Equal(t, "success", res["status"])
	assert.Equal(t, float64(200), res["status_code"])
}

func TestHealthHandler_Root(t *testing.T) {
	w, body := doJSON(t, healthRoutes(fakeTracker{}), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AIDE v2 API", body["name"])
	endpoints := body["endpoints"].(map[string]interface{})
	assert.Equal(t, "/n8n/webhook/{workflow_name}", endpoints["n8n_webhook"])
	assert.Equal(t, "ws://example.com/ws", endpoints["websocket"])
}
