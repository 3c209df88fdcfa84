package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/aide-systems/aide-core/internal/api/middleware"
	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/internal/services"
	"github.com/aide-systems/aide-core/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newEngine returns a gin engine with the JSON error handler installed
func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(logger.NewNop()))
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	}
	return w, out
}

type fakeDispatcher struct {
	name    string
	payload map[string]interface{}
	err     error
}

func (f *fakeDispatcher) Handle(ctx context.Context, name string, payload map[string]interface{}) (*models.WebhookAck, error) {
	f.name, f.payload = name, payload
	if f.err != nil {
		return nil, f.err
	}
	return &models.WebhookAck{Status: "success", Workflow: name, Message: "Webhook " + name + " processed successfully"}, nil
}

type fakeChat struct {
	calls int
	err   error
}

func (f *fakeChat) Handle(ctx context.Context, name string, payload map[string]interface{}) (*models.StructuredChatResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return models.NewStructuredChatResponse("chat:" + name), nil
}

type fakeTriggers struct {
	mu       sync.Mutex
	got      []models.OutboundTrigger
	critical [][]models.AlertRecord
	records  []models.TriggerRecord
	total    int64
	err      error
}

func (f *fakeTriggers) Trigger(ctx context.Context, t models.OutboundTrigger) (*models.TriggerResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, t)
	if f.err != nil {
		return nil, f.err
	}
	return &models.TriggerResult{Status: "triggered", Workflow: t.WorkflowName, TriggerID: "t-1", N8NResponse: models.NewStructuredChatResponse("ok")}, nil
}

func (f *fakeTriggers) Recent(ctx context.Context, limit int) ([]models.TriggerRecord, error) {
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeTriggers) Total(ctx context.Context) (int64, error) { return f.total, f.err }

func (f *fakeTriggers) NotifyCritical(alerts []models.AlertRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.critical = append(f.critical, alerts)
}

type fakeHub struct {
	mu       sync.Mutex
	messages []models.HubMessage
	count    int
}

func (h *fakeHub) Broadcast(ctx context.Context, msg models.HubMessage) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	return h.count
}

func (h *fakeHub) Count() int { return h.count }

type fakeTracker struct{ last *services.LastWebhook }

func (f fakeTracker) Last() *services.LastWebhook { return f.last }

type fakeProber struct{ env string }

func (f fakeProber) Environment() string { return f.env }

func (f fakeProber) Probe(ctx context.Context) *services.ProbeResult {
	return &services.ProbeResult{URL: "http://n8n.local/webhook-test/aide", Status: "success", StatusCode: 200}
}
