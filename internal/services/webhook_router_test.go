package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/pkg/cache"
	"github.com/aide-systems/aide-core/pkg/logger"
)

type routerFixture struct {
	router *WebhookRouter
	store  *cache.MemoryStore
	hub    *fakeHub
	queue  *fakeQueue
	now    time.Time
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	store := cache.NewMemoryStore(logger.NewNop())
	hub := newFakeHub()
	queue := &fakeQueue{}
	gen := NewMetricsGenerator(fixedClock(now), 11)
	r := NewWebhookRouter(store, hub, queue, gen, time.Hour, logger.NewNop())
	r.now = fixedClock(now)
	return &routerFixture{router: r, store: store, hub: hub, queue: queue, now: now}
}

func requireKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	var re *models.RelayError
	require.True(t, errors.As(err, &re), "expected RelayError, got %v", err)
	assert.Equal(t, kind, re.Kind)
}

func TestWebhookRouter_DataIngestion(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	ack, err := f.router.Handle(ctx, "data_ingestion", map[string]interface{}{
		"data": []interface{}{map[string]interface{}{"v": 1.0}, map[string]interface{}{"v": 2.0}, map[string]interface{}{"v": 3.0}},
	})
	require.NoError(t, err)
	assert.Equal(t, "success", ack.Status)
	assert.Equal(t, "Webhook data_ingestion processed successfully", ack.Message)
	require.NotNil(t, ack.RecordsProcessed)
	assert.Equal(t, 3, *ack.RecordsProcessed)

	msgs := f.hub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "data_update", msgs[0].Type())
	assert.Equal(t, "n8n", msgs[0]["source"])
	assert.Equal(t, "data_ingestion", msgs[0]["workflow"])
	data := msgs[0]["data"].(map[string]interface{})
	assert.Equal(t, 3, data["records_processed"])
	assert.Equal(t, "processed", data["status"])

	raw, err := f.store.Get(ctx, EnvelopeKey("data_ingestion"))
	require.NoError(t, err)
	var env models.WebhookEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "data_ingestion", env.WorkflowName)
	assert.Contains(t, string(env.RawPayload), `"data"`)

	last := f.router.Last()
	require.NotNil(t, last)
	assert.Equal(t, "data_ingestion", last.Workflow)
	assert.Equal(t, f.now, last.ReceivedAt)
}

func TestWebhookRouter_DataIngestionCounts(t *testing.T) {
	f := newRouterFixture(t)

	ack, err := f.router.Handle(context.Background(), "data_ingestion", map[string]interface{}{
		"data": map[string]interface{}{"a": 1.0, "b": 2.0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, *ack.RecordsProcessed)

	ack, err = f.router.Handle(context.Background(), "data_ingestion", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 0, *ack.RecordsProcessed)

	_, err = f.router.Handle(context.Background(), "data_ingestion", map[string]interface{}{"data": 5.0})
	requireKind(t, err, models.KindInternalHandlerError)
}

func TestWebhookRouter_AlertMonitoring(t *testing.T) {
	f := newRouterFixture(t)

	_, err := f.router.Handle(context.Background(), "alert_monitoring", map[string]interface{}{
		"alerts": []interface{}{
			map[string]interface{}{"id": "a1", "type": "low_reservoir", "message": "NE low"},
			map[string]interface{}{"id": "a2", "severity": "critical"},
		},
	})
	require.NoError(t, err)

	msgs := f.hub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "alert", msgs[0].Type())
	alerts := msgs[0]["alerts"].([]models.InboundAlert)
	require.Len(t, alerts, 2)
	assert.Equal(t, models.SeverityInfo, alerts[0].Severity)
	assert.Equal(t, "critical", alerts[1].Severity)
	assert.Equal(t, f.now, alerts[0].Timestamp)

	_, err = f.router.Handle(context.Background(), "alert_monitoring", map[string]interface{}{"alerts": []interface{}{"bad"}})
	requireKind(t, err, models.KindInternalHandlerError)
}

func TestWebhookRouter_ReportGeneration(t *testing.T) {
	f := newRouterFixture(t)
	payload := map[string]interface{}{"report_type": "weekly"}

	ack, err := f.router.Handle(context.Background(), "report_generation", payload)
	require.NoError(t, err)
	assert.Equal(t, "success", ack.Status)
	require.Len(t, f.queue.payloads, 1)
	assert.Equal(t, "weekly", f.queue.payloads[0]["report_type"])
	assert.Empty(t, f.hub.Messages())
}

func TestWebhookRouter_MLPrediction(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	ack, err := f.router.Handle(ctx, "ml_prediction", map[string]interface{}{"type": "price_forecast"})
	require.NoError(t, err)
	pred, ok := ack.Result.(models.Prediction)
	require.True(t, ok)
	assert.Equal(t, "price_forecast", pred.PredictionType)

	raw, err := f.store.Get(ctx, latestPredictionKey)
	require.NoError(t, err)
	var cached models.Prediction
	require.NoError(t, json.Unmarshal(raw, &cached))
	assert.Equal(t, pred.Values, cached.Values)
}

func TestWebhookRouter_UnknownWorkflow(t *testing.T) {
	f := newRouterFixture(t)

	ack, err := f.router.Handle(context.Background(), "something_else", nil)
	require.NoError(t, err)
	assert.Equal(t, "success", ack.Status)
	assert.Nil(t, ack.RecordsProcessed)
	assert.Nil(t, ack.Result)
	assert.Empty(t, f.hub.Messages())

	_, err = f.store.Get(context.Background(), EnvelopeKey("something_else"))
	assert.NoError(t, err, "unknown workflows are still recorded")
}

func TestWebhookRouter_LastOnlyTracksSuccess(t *testing.T) {
	f := newRouterFixture(t)
	assert.Nil(t, f.router.Last())

	_, err := f.router.Handle(context.Background(), "data_ingestion", map[string]interface{}{"data": "oops"})
	require.Error(t, err)
	assert.Nil(t, f.router.Last())
}
