package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/internal/monitoring"
	"github.com/aide-systems/aide-core/internal/tracing"
	"github.com/aide-systems/aide-core/pkg/cache"
	"github.com/aide-systems/aide-core/pkg/logger"
)

const latestPredictionKey = "latest_prediction"

// EnvelopeKey is the cache key holding the last envelope of a workflow
func EnvelopeKey(workflowName string) string {
	return "webhook:" + workflowName
}

// ReportQueue accepts deferred report generation requests
type ReportQueue interface {
	Enqueue(payload map[string]interface{})
}

// LastWebhook describes the most recent inbound call
type LastWebhook struct {
	Workflow   string    `json:"workflow"`
	ReceivedAt time.Time `json:"received_at"`
}

// WebhookRouter receives workflow callbacks from the automation engine and
// dispatches them by workflow kind
type WebhookRouter struct {
	store       cache.Store
	hub         Broadcaster
	reports     ReportQueue
	generator   *MetricsGenerator
	envelopeTTL time.Duration
	tracer      *tracing.RelayTracer
	logger      logger.Logger
	now         func() time.Time

	mu   sync.RWMutex
	last *LastWebhook
}

func NewWebhookRouter(store cache.Store, hub Broadcaster, reports ReportQueue, generator *MetricsGenerator, envelopeTTL time.Duration, log logger.Logger) *WebhookRouter {
	return &WebhookRouter{
		store:       store,
		hub:         hub,
		reports:     reports,
		generator:   generator,
		envelopeTTL: envelopeTTL,
		tracer:      tracing.NewRelayTracer(),
		logger:      log,
		now:         time.Now,
	}
}

// Handle stores the envelope and runs the workflow's side effects. Any
// failure, panics included, is reported as an internal handler error.
func (r *WebhookRouter) Handle(ctx context.Context, workflowName string, payload map[string]interface{}) (ack *models.WebhookAck, err error) {
	ctx, span := r.tracer.StartWebhookSpan(ctx, workflowName)
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			err = models.NewInternalHandlerError(fmt.Errorf("panic handling workflow %s: %v", workflowName, p))
			ack = nil
		}
		if err != nil {
			r.tracer.RecordError(span, err)
			r.logger.Error("Webhook handling failed", "workflow", workflowName, "error", err)
		}
		monitoring.RecordWebhook(workflowName, err == nil)
	}()

	if payload == nil {
		payload = map[string]interface{}{}
	}
	received := r.now()
	r.storeEnvelope(ctx, workflowName, payload, received)

	ack = &models.WebhookAck{
		Status:    "success",
		Workflow:  workflowName,
		Timestamp: received,
		Message:   fmt.Sprintf("Webhook %s processed successfully", workflowName),
	}

	switch models.ParseWorkflowKind(workflowName) {
	case models.WorkflowDataIngestion:
		n, err := countRecords(payload["data"])
		if err != nil {
			return nil, models.NewInternalHandlerError(err)
		}
		processed := map[string]interface{}{
			"timestamp":         received,
			"records_processed": n,
			"status":            "processed",
		}
		r.hub.Broadcast(ctx, models.HubMessage{
			"type":     "data_update",
			"source":   "n8n",
			"workflow": workflowName,
			"data":     processed,
		})
		ack.RecordsProcessed = &n

	case models.WorkflowAlertMonitoring:
		alerts, err := normalizeAlerts(payload["alerts"], received)
		if err != nil {
			return nil, models.NewInternalHandlerError(err)
		}
		r.hub.Broadcast(ctx, models.HubMessage{
			"type":   "alert",
			"source": "n8n",
			"alerts": alerts,
		})

	case models.WorkflowReportGeneration:
		r.reports.Enqueue(payload)

	case models.WorkflowMLPrediction:
		prediction := r.generator.Forecast(payload)
		if err := r.store.Set(ctx, latestPredictionKey, prediction, 0); err != nil {
			r.logger.Warn("Failed to cache prediction", "error", err)
		}
		ack.Result = prediction

	default:
		r.logger.Debug("Unknown workflow acknowledged without side effects", "workflow", workflowName)
	}

	r.mu.Lock()
	r.last = &LastWebhook{Workflow: workflowName, ReceivedAt: received}
	r.mu.Unlock()

	return ack, nil
}

// Last returns the most recent successfully handled webhook, or nil
func (r *WebhookRouter) Last() *LastWebhook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return nil
	}
	l := *r.last
	return &l
}

func (r *WebhookRouter) storeEnvelope(ctx context.Context, workflowName string, payload map[string]interface{}, received time.Time) {
	raw, err := json.Marshal(payload)
	if err != nil {
		r.logger.Warn("Failed to encode webhook payload", "workflow", workflowName, "error", err)
		return
	}
	env := models.WebhookEnvelope{
		ID:           uuid.NewString(),
		WorkflowName: workflowName,
		ReceivedAt:   received,
		RawPayload:   raw,
	}
	if err := r.store.Set(ctx, EnvelopeKey(workflowName), env, r.envelopeTTL); err != nil {
		r.logger.Warn("Failed to cache webhook envelope", "workflow", workflowName, "error", err)
	}
}

// countRecords counts array elements or object keys; absent counts zero
func countRecords(data interface{}) (int, error) {
	switch d := data.(type) {
	case nil:
		return 0, nil
	case []interface{}:
		return len(d), nil
	case map[string]interface{}:
		return len(d), nil
	default:
		return 0, fmt.Errorf("field 'data' must be an array or object, got %T", data)
	}
}

func normalizeAlerts(raw interface{}, received time.Time) ([]models.InboundAlert, error) {
	alerts := []models.InboundAlert{}
	if raw == nil {
		return alerts, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field 'alerts' must be an array, got %T", raw)
	}
	for i, item := range list {
		a, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("alert %d must be an object, got %T", i, item)
		}
		severity := a["severity"]
		if severity == nil {
			severity = models.SeverityInfo
		}
		alerts = append(alerts, models.InboundAlert{
			ID:        a["id"],
			Type:      a["type"],
			Severity:  severity,
			Message:   a["message"],
			Timestamp: received,
		})
	}
	return alerts, nil
}
