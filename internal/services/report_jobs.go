package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/pkg/logger"
)

// Broadcaster delivers a message to every real-time subscriber
type Broadcaster interface {
	Broadcast(ctx context.Context, msg models.HubMessage) int
}

// ReportJobs runs deferred report generation. Completed reports are
// announced with a report_ready broadcast. Jobs still waiting when the queue
// shuts down are dropped.
type ReportJobs struct {
	hub    Broadcaster
	delay  time.Duration
	logger logger.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReportJobs(hub Broadcaster, delay time.Duration, log logger.Logger) *ReportJobs {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReportJobs{
		hub:    hub,
		delay:  delay,
		logger: log,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Enqueue schedules a report and returns immediately
func (j *ReportJobs) Enqueue(payload map[string]interface{}) {
	reportType := "daily"
	if t, ok := payload["report_type"].(string); ok && t != "" {
		reportType = t
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		timer := time.NewTimer(j.delay)
		defer timer.Stop()
		select {
		case <-j.ctx.Done():
			j.logger.Warn("Report job dropped on shutdown", "report_type", reportType)
			return
		case <-timer.C:
		}

		// once the timer has fired the announcement survives Shutdown
		report := j.buildReport(reportType)
		n := j.hub.Broadcast(context.WithoutCancel(j.ctx), models.HubMessage{"type": "report_ready", "report": report})
		j.logger.Info("Report ready", "report_id", report.ID, "report_type", reportType, "delivered", n)
	}()
}

func (j *ReportJobs) buildReport(reportType string) models.ReportResult {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	id := fmt.Sprintf("report_%s_%s", j.now().Format("20060102_150405"), suffix)
	return models.ReportResult{
		ID:     id,
		Type:   reportType,
		Status: "completed",
		URL:    "/reports/" + id + ".pdf",
	}
}

// Shutdown cancels pending jobs and waits for running ones to return
func (j *ReportJobs) Shutdown(ctx context.Context) error {
	j.cancel()
	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
