package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/internal/monitoring"
	"github.com/aide-systems/aide-core/internal/services"
	"github.com/aide-systems/aide-core/pkg/logger"
)

const (
	defaultHistoricalHours = 24
	maxHistoricalHours     = 720
)

// CriticalNotifier is told about critical alerts found in a snapshot
type CriticalNotifier interface {
	NotifyCritical(alerts []models.AlertRecord)
}

type MetricsHandler struct {
	generator *services.MetricsGenerator
	notifier  CriticalNotifier
	logger    logger.Logger
}

func NewMetricsHandler(generator *services.MetricsGenerator, notifier CriticalNotifier, log logger.Logger) *MetricsHandler {
	return &MetricsHandler{generator: generator, notifier: notifier, logger: log}
}

// Current handles GET /api/metrics/current. Critical alerts are handed to
// the notifier without waiting for the automation engine.
func (h *MetricsHandler) Current(c *gin.Context) {
	snapshot := h.generator.CurrentSnapshot()
	alerts := services.EvaluateAlerts(snapshot)
	for _, a := range alerts {
		monitoring.RecordAlert(string(a.Type), a.Severity)
	}

	if critical := services.CriticalAlerts(alerts); len(critical) > 0 {
		h.logger.Warn("Critical grid alerts detected", "count", len(critical))
		h.notifier.NotifyCritical(critical)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"data":      snapshot,
		"alerts":    alerts,
		"timestamp": snapshot.Timestamp,
	})
}

// Historical handles GET /api/metrics/historical?hours=24&subsystem=SE_CO
func (h *MetricsHandler) Historical(c *gin.Context) {
	hours := defaultHistoricalHours
	if s := c.Query("hours"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxHistoricalHours {
			_ = c.Error(models.NewValidationError("hours must be an integer between 1 and 720"))
			return
		}
		hours = n
	}

	resp := gin.H{"status": "success"}
	if s := strings.TrimSpace(c.Query("subsystem")); s != "" {
		if !knownRegion(s) {
			_ = c.Error(models.NewValidationError("Unknown subsystem: " + s))
			return
		}
		resp["subsystem"] = s
	}

	start, end, points := h.generator.Historical(hours)
	resp["period"] = gin.H{
		"start": start.Format(time.RFC3339),
		"end":   end.Format(time.RFC3339),
	}
	resp["data"] = points
	c.JSON(http.StatusOK, resp)
}

func knownRegion(s string) bool {
	for _, r := range models.Regions {
		if r == s {
			return true
		}
	}
	return false
}
