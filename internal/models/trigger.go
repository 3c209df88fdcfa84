package models

import (
	"fmt"
	"time"
)

type TriggerType string

const (
	TriggerManual     TriggerType = "manual"
	TriggerScheduled  TriggerType = "scheduled"
	TriggerAlert      TriggerType = "alert"
	TriggerDataUpdate TriggerType = "data_update"
)

// ParseTriggerType validates a trigger type received from a caller
func ParseTriggerType(s string) (TriggerType, error) {
	switch t := TriggerType(s); t {
	case TriggerManual, TriggerScheduled, TriggerAlert, TriggerDataUpdate:
		return t, nil
	default:
		return "", NewValidationError(fmt.Sprintf("Invalid trigger_type: %q", s))
	}
}

// OutboundTrigger is a request to start a workflow in the automation engine
type OutboundTrigger struct {
	WorkflowName string                 `json:"workflow_name"`
	TriggerType  TriggerType            `json:"trigger_type"`
	Payload      map[string]interface{} `json:"data"`
	CreatedAt    time.Time              `json:"timestamp"`
}

// TriggerRecord is the compact entry kept in the trigger log
type TriggerRecord struct {
	ID        string      `json:"id"`
	Workflow  string      `json:"workflow"`
	Timestamp time.Time   `json:"timestamp"`
	Type      TriggerType `json:"type"`
}

// TriggerResult is returned once the automation engine answered a trigger
type TriggerResult struct {
	Status      string                  `json:"status"`
	Workflow    string                  `json:"workflow"`
	TriggerID   string                  `json:"trigger_id"`
	N8NResponse *StructuredChatResponse `json:"n8n_response"`
}

// StructuredChatResponse is the normalised reply of the automation engine
type StructuredChatResponse struct {
	Text          string                   `json:"text"`
	Tables        []map[string]interface{} `json:"tables"`
	Columns       []string                 `json:"columns"`
	SQLQuery      string                   `json:"sql_query"`
	Visualization map[string]interface{}   `json:"visualization,omitempty"`
}

// NewStructuredChatResponse returns a response with every default applied
func NewStructuredChatResponse(text string) *StructuredChatResponse {
	return &StructuredChatResponse{
		Text:    text,
		Tables:  []map[string]interface{}{},
		Columns: []string{},
	}
}
