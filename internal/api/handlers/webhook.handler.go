package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aide-systems/aide-core/internal/config"
	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/pkg/logger"
)

// WebhookDispatcher handles workflow callbacks in router mode
type WebhookDispatcher interface {
	Handle(ctx context.Context, workflowName string, payload map[string]interface{}) (*models.WebhookAck, error)
}

// ChatForwarder relays a chat message to the automation engine
type ChatForwarder interface {
	Handle(ctx context.Context, workflowName string, payload map[string]interface{}) (*models.StructuredChatResponse, error)
}

type WebhookHandler struct {
	router WebhookDispatcher
	chat   ChatForwarder
	mode   string
	logger logger.Logger
}

func NewWebhookHandler(router WebhookDispatcher, chat ChatForwarder, mode string, log logger.Logger) *WebhookHandler {
	if mode == "" {
		mode = config.WebhookModeRouter
	}
	return &WebhookHandler{router: router, chat: chat, mode: mode, logger: log}
}

// Webhook handles POST /n8n/webhook/:workflow_name using the configured mode
func (h *WebhookHandler) Webhook(c *gin.Context) {
	if h.mode == config.WebhookModeChat {
		h.Chat(c)
		return
	}

	name := c.Param("workflow_name")
	c.Set("workflow", name)

	payload, err := bindPayload(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ack, err := h.router.Handle(c.Request.Context(), name, payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

// Chat handles POST /n8n/chat/:workflow_name
func (h *WebhookHandler) Chat(c *gin.Context) {
	name := c.Param("workflow_name")
	c.Set("workflow", name)

	payload, err := bindPayload(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.chat.Handle(c.Request.Context(), name, payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// bindPayload decodes the request body as a JSON object. An empty body is an
// empty object.
func bindPayload(c *gin.Context) (map[string]interface{}, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, models.NewValidationError("Unable to read request body")
	}
	payload := map[string]interface{}{}
	if len(raw) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, models.NewValidationError("Request body must be a JSON object")
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return payload, nil
}
