package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aide-systems/aide-core/internal/config"
	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/pkg/cache"
	"github.com/aide-systems/aide-core/pkg/logger"
)

// CriticalAlertWorkflow is triggered whenever a snapshot carries critical alerts
const CriticalAlertWorkflow = "critical_alert_handler"

type triggerMetadata struct {
	Source    string `json:"source"`
	Version   string `json:"version"`
	TriggerID string `json:"trigger_id"`
}

type triggerBody struct {
	Workflow    string                 `json:"workflow"`
	TriggerType models.TriggerType     `json:"trigger_type"`
	Timestamp   time.Time              `json:"timestamp"`
	AIDEData    map[string]interface{} `json:"aide_data"`
	Metadata    triggerMetadata        `json:"metadata"`
}

// TriggerService starts workflows in the automation engine and keeps the
// bounded trigger log. The log records intent: the entry is written before
// the call and stays even when the call fails.
type TriggerService struct {
	client  AutomationPoster
	store   cache.Store
	logCfg  config.TriggerLogConfig
	timeout time.Duration
	source  string
	version string
	logger  logger.Logger
	now     func() time.Time

	wg sync.WaitGroup
}

func NewTriggerService(client AutomationPoster, store cache.Store, cfg *config.Config, log logger.Logger) *TriggerService {
	return &TriggerService{
		client:  client,
		store:   store,
		logCfg:  cfg.TriggerLog,
		timeout: cfg.Automation.TriggerTimeout,
		source:  cfg.Automation.Source,
		version: cfg.Automation.Version,
		logger:  log,
		now:     time.Now,
	}
}

func (s *TriggerService) Trigger(ctx context.Context, t models.OutboundTrigger) (*models.TriggerResult, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	if t.Payload == nil {
		t.Payload = map[string]interface{}{}
	}
	id := uuid.NewString()

	s.appendRecord(ctx, models.TriggerRecord{
		ID:        id,
		Workflow:  t.WorkflowName,
		Timestamp: t.CreatedAt,
		Type:      t.TriggerType,
	})

	body := triggerBody{
		Workflow:    t.WorkflowName,
		TriggerType: t.TriggerType,
		Timestamp:   t.CreatedAt,
		AIDEData:    t.Payload,
		Metadata:    triggerMetadata{Source: s.source, Version: s.version, TriggerID: id},
	}

	s.logger.Info("Triggering automation workflow", "workflow", t.WorkflowName, "trigger_type", t.TriggerType, "trigger_id", id)

	resp, err := s.client.Post(ctx, body, s.timeout,
		WithCallKind(CallTrigger),
		WithHeader("X-AIDE-Workflow", t.WorkflowName),
	)
	if err != nil {
		return nil, err
	}

	return &models.TriggerResult{
		Status:      "triggered",
		Workflow:    t.WorkflowName,
		TriggerID:   id,
		N8NResponse: resp,
	}, nil
}

func (s *TriggerService) appendRecord(ctx context.Context, rec models.TriggerRecord) {
	if err := s.store.Push(ctx, s.logCfg.Key, rec); err != nil {
		s.logger.Warn("Failed to append trigger record", "workflow", rec.Workflow, "error", err)
		return
	}
	if err := s.store.Trim(ctx, s.logCfg.Key, s.logCfg.MaxEntries); err != nil {
		s.logger.Warn("Failed to trim trigger log", "error", err)
	}
}

// NotifyCritical triggers the critical alert workflow on a detached
// goroutine and returns immediately
func (s *TriggerService) NotifyCritical(alerts []models.AlertRecord) {
	if len(alerts) == 0 {
		return
	}
	t := models.OutboundTrigger{
		WorkflowName: CriticalAlertWorkflow,
		TriggerType:  models.TriggerAlert,
		Payload:      map[string]interface{}{"alerts": alerts},
		CreatedAt:    s.now(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.Trigger(context.Background(), t); err != nil {
			s.logger.Warn("Critical alert trigger failed", "alerts", len(alerts), "error", err)
		}
	}()
}

// Wait blocks until every detached trigger has finished or ctx is done
func (s *TriggerService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recent returns up to limit trigger records, newest first. Entries that no
// longer decode are skipped.
func (s *TriggerService) Recent(ctx context.Context, limit int) ([]models.TriggerRecord, error) {
	if limit <= 0 {
		return []models.TriggerRecord{}, nil
	}
	raw, err := s.store.Range(ctx, s.logCfg.Key, 0, int64(limit-1))
	if err != nil {
		return nil, err
	}
	out := make([]models.TriggerRecord, 0, len(raw))
	for _, b := range raw {
		var rec models.TriggerRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			s.logger.Debug("Skipping undecodable trigger record", "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Total returns the number of records currently in the trigger log
func (s *TriggerService) Total(ctx context.Context) (int64, error) {
	return s.store.Length(ctx, s.logCfg.Key)
}
