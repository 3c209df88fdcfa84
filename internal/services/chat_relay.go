package services

import (
	"context"
	"time"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/pkg/logger"
)

const defaultSessionID = "default"

// chatRequest is the exact body the automation engine's chat webhook expects
type chatRequest struct {
	ChatInput string `json:"chatInput"`
	SessionID string `json:"sessionId"`
}

// ChatRelay forwards a chat message to the automation engine and returns its
// structured reply. It touches neither the cache nor the hub.
type ChatRelay struct {
	client  AutomationPoster
	timeout time.Duration
	logger  logger.Logger
}

func NewChatRelay(client AutomationPoster, timeout time.Duration, log logger.Logger) *ChatRelay {
	return &ChatRelay{client: client, timeout: timeout, logger: log}
}

func (r *ChatRelay) Handle(ctx context.Context, workflowName string, payload map[string]interface{}) (*models.StructuredChatResponse, error) {
	input := nonEmptyString(payload["chatInput"])
	if input == "" {
		input = nonEmptyString(payload["message"])
	}
	if input == "" {
		return nil, models.NewValidationError("Field 'chatInput' or 'message' is required")
	}

	session := defaultSessionID
	if s, ok := payload["sessionId"].(string); ok {
		session = s
	}

	r.logger.Info("Relaying chat message", "workflow", workflowName, "session_id", session, "input_length", len(input))

	return r.client.Post(ctx, chatRequest{ChatInput: input, SessionID: session}, r.timeout,
		WithCallKind(CallChat),
		WithHeader("X-AIDE-Workflow", workflowName),
	)
}

func nonEmptyString(v interface{}) string {
	s, _ := v.(string)
	return s
}
