package models

import (
	"encoding/json"
	"time"
)

// WorkflowKind is the closed set of workflows the router knows how to handle
type WorkflowKind string

const (
	WorkflowDataIngestion    WorkflowKind = "data_ingestion"
	WorkflowAlertMonitoring  WorkflowKind = "alert_monitoring"
	WorkflowReportGeneration WorkflowKind = "report_generation"
	WorkflowMLPrediction     WorkflowKind = "ml_prediction"
	WorkflowUnknown          WorkflowKind = ""
)

// ParseWorkflowKind maps a workflow name onto a known kind; anything else is
// WorkflowUnknown and is acknowledged without side effects
func ParseWorkflowKind(name string) WorkflowKind {
	switch k := WorkflowKind(name); k {
	case WorkflowDataIngestion, WorkflowAlertMonitoring, WorkflowReportGeneration, WorkflowMLPrediction:
		return k
	default:
		return WorkflowUnknown
	}
}

// WebhookEnvelope is the record of one inbound call
type WebhookEnvelope struct {
	ID           string          `json:"id"`
	WorkflowName string          `json:"workflow_name"`
	ReceivedAt   time.Time       `json:"received_at"`
	RawPayload   json.RawMessage `json:"raw_payload"`
}

// WebhookAck is returned to the automation engine after an inbound call
type WebhookAck struct {
	Status           string      `json:"status"`
	Workflow         string      `json:"workflow"`
	Timestamp        time.Time   `json:"timestamp"`
	Message          string      `json:"message"`
	RecordsProcessed *int        `json:"records_processed,omitempty"`
	Result           interface{} `json:"result,omitempty"`
}

// InboundAlert is an alert reported by the alert-monitoring workflow
type InboundAlert struct {
	ID        interface{} `json:"id"`
	Type      interface{} `json:"type"`
	Severity  interface{} `json:"severity"`
	Message   interface{} `json:"message"`
	Timestamp interface{} `json:"timestamp"`
}

// HubMessage is the JSON shape sent to every subscriber
type HubMessage map[string]interface{}

// Type returns the message type used for routing and metrics
func (m HubMessage) Type() string {
	if t, ok := m["type"].(string); ok {
		return t
	}
	return "unknown"
}
