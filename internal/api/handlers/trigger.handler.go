package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/pkg/logger"
)

const (
	defaultRecentTriggers = 20
	maxRecentTriggers     = 1000
)

// TriggerRunner starts workflows and reads back the trigger log
type TriggerRunner interface {
	Trigger(ctx context.Context, t models.OutboundTrigger) (*models.TriggerResult, error)
	Recent(ctx context.Context, limit int) ([]models.TriggerRecord, error)
}

type TriggerHandler struct {
	triggers TriggerRunner
	logger   logger.Logger
}

func NewTriggerHandler(triggers TriggerRunner, log logger.Logger) *TriggerHandler {
	return &TriggerHandler{triggers: triggers, logger: log}
}

type triggerRequest struct {
	WorkflowName string                 `json:"workflow_name"`
	TriggerType  string                 `json:"trigger_type"`
	Data         map[string]interface{} `json:"data"`
	Timestamp    *models.Timestamp      `json:"timestamp"`
}

// Trigger handles POST /api/trigger/n8n
func (h *TriggerHandler) Trigger(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(models.NewValidationError("Invalid trigger request: " + err.Error()))
		return
	}
	if req.WorkflowName == "" {
		_ = c.Error(models.NewValidationError("Field 'workflow_name' is required"))
		return
	}
	tt, err := models.ParseTriggerType(req.TriggerType)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Set("workflow", req.WorkflowName)

	t := models.OutboundTrigger{
		WorkflowName: req.WorkflowName,
		TriggerType:  tt,
		Payload:      req.Data,
	}
	if req.Timestamp != nil {
		t.CreatedAt = req.Timestamp.Time
	}

	res, err := h.triggers.Trigger(c.Request.Context(), t)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Recent handles GET /api/triggers/recent?limit=20
func (h *TriggerHandler) Recent(c *gin.Context) {
	limit := defaultRecentTriggers
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxRecentTriggers {
			_ = c.Error(models.NewValidationError("limit must be an integer between 1 and 1000"))
			return
		}
		limit = n
	}

	records, err := h.triggers.Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(models.NewInternalHandlerError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"triggers": records,
		"count":    len(records),
	})
}
