package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aide-systems/aide-core/internal/config"
	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/internal/monitoring"
	"github.com/aide-systems/aide-core/internal/tracing"
	"github.com/aide-systems/aide-core/pkg/logger"
)

const (
	maxResponseBytes = 10 << 20
	errorBodyPreview = 200

	CallChat    = "chat"
	CallTrigger = "trigger"
	CallProbe   = "probe"
)

// AutomationPoster is the outbound half of the relay
type AutomationPoster interface {
	Post(ctx context.Context, body interface{}, timeout time.Duration, opts ...CallOption) (*models.StructuredChatResponse, error)
}

type callOptions struct {
	kind    string
	headers map[string]string
}

type CallOption func(*callOptions)

// WithCallKind labels the call in metrics and traces
func WithCallKind(kind string) CallOption {
	return func(o *callOptions) { o.kind = kind }
}

func WithHeader(key, value string) CallOption {
	return func(o *callOptions) { o.headers[key] = value }
}

// AutomationClient posts JSON to the automation engine webhook. The endpoint
// is chosen once at construction from the configured environment.
type AutomationClient struct {
	client      *http.Client
	endpoint    string
	environment string
	source      string
	probeTTL    time.Duration
	tracer      *tracing.RelayTracer
	logger      logger.Logger
}

func NewAutomationClient(cfg config.AutomationConfig, log logger.Logger) (*AutomationClient, error) {
	env, err := config.NormalizeAutomationEnv(cfg.Environment)
	if err != nil {
		return nil, err
	}
	endpoint := cfg.WebhookURL()
	if err := config.ValidateEndpoint(endpoint); err != nil {
		return nil, fmt.Errorf("automation endpoint for %s: %w", env, err)
	}

	log.Info("Automation engine endpoint selected", "environment", env, "url", endpoint)

	return &AutomationClient{
		// Per-call timeouts come from the request context
		client:      &http.Client{},
		endpoint:    endpoint,
		environment: env,
		source:      cfg.Source,
		probeTTL:    cfg.ProbeTimeout,
		tracer:      tracing.NewRelayTracer(),
		logger:      log,
	}, nil
}

func (c *AutomationClient) Endpoint() string    { return c.endpoint }
func (c *AutomationClient) Environment() string { return c.environment }

// Post sends one JSON request and normalises the reply. It never retries.
func (c *AutomationClient) Post(ctx context.Context, body interface{}, timeout time.Duration, opts ...CallOption) (*models.StructuredChatResponse, error) {
	o := callOptions{kind: CallChat, headers: map[string]string{}}
	for _, opt := range opts {
		opt(&o)
	}

	status, raw, err := c.do(ctx, o, body, timeout)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, models.NewUpstreamProtocolError(status, preview(raw))
	}
	return NormalizeResponse(raw), nil
}

// do performs the request and returns the status and body. Transport
// failures come back as RelayError.
func (c *AutomationClient) do(ctx context.Context, o callOptions, body interface{}, timeout time.Duration) (int, []byte, error) {
	start := time.Now()
	ctx, span := c.tracer.StartOutboundSpan(ctx, o.kind, c.endpoint)
	defer span.End()

	fail := func(err *models.RelayError) (int, []byte, error) {
		monitoring.RecordOutboundCall(o.kind, err.Kind.String(), time.Since(start))
		c.tracer.RecordError(span, err)
		c.logger.Error("Automation engine call failed", "kind", o.kind, "url", c.endpoint, "error", err)
		return 0, nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fail(models.NewInternalHandlerError(fmt.Errorf("marshal outbound body: %w", err)))
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fail(models.NewInternalHandlerError(fmt.Errorf("build request: %w", err)))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.source != "" {
		req.Header.Set("X-AIDE-Source", c.source)
	}
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("Posting to automation engine", "kind", o.kind, "url", c.endpoint, "bytes", len(payload))

	resp, err := c.client.Do(req)
	if err != nil {
		return fail(classifyTransportError(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail(classifyTransportError(err))
	}

	elapsed := time.Since(start)
	c.tracer.RecordOutcome(span, resp.StatusCode, elapsed)
	result := "success"
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result = models.KindUpstreamProtocolError.String()
	}
	monitoring.RecordOutboundCall(o.kind, result, elapsed)
	c.logger.Debug("Automation engine replied", "kind", o.kind, "status", resp.StatusCode, "duration", elapsed)

	return resp.StatusCode, raw, nil
}

func classifyTransportError(err error) *models.RelayError {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewUpstreamTimeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewUpstreamTimeout(err)
	}
	return models.NewUpstreamUnavailable(err)
}

func preview(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > errorBodyPreview {
		return s[:errorBodyPreview] + "..."
	}
	return s
}

// ProbeResult describes one connectivity check against the automation engine
type ProbeResult struct {
	URL               string             `json:"url"`
	Status            string             `json:"status"`
	StatusCode        int                `json:"status_code,omitempty"`
	ResponseStructure *ResponseStructure `json:"response_structure,omitempty"`
	ResponsePreview   string             `json:"response_preview,omitempty"`
	Error             string             `json:"error,omitempty"`
}

type ResponseStructure struct {
	HasText          bool `json:"has_text"`
	HasVisualization bool `json:"has_visualization"`
	HasTables        bool `json:"has_tables"`
	HasSQL           bool `json:"has_sql"`
}

// Probe sends a sample chat message and reports what came back. It never
// fails; problems are described in the result.
func (c *AutomationClient) Probe(ctx context.Context) *ProbeResult {
	body := chatRequest{
		ChatInput: "What is the total energy generation today?",
		SessionID: "test-session",
	}
	res := &ProbeResult{URL: c.endpoint}

	status, raw, err := c.do(ctx, callOptions{kind: CallProbe, headers: map[string]string{}}, body, c.probeTTL)
	if err != nil {
		res.Status = "error"
		res.Error = err.Error()
		return res
	}

	res.StatusCode = status
	res.Status = "error"
	if status == http.StatusOK {
		res.Status = "success"
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		res.ResponsePreview = preview(raw)
		return res
	}
	_, hasQuery := obj["query"]
	_, hasSQL := obj["sql_query"]
	_, hasText := obj["text"]
	_, hasViz := obj["visualization"]
	_, hasTables := obj["tables"]
	res.ResponseStructure = &ResponseStructure{
		HasText:          hasText,
		HasVisualization: hasViz,
		HasTables:        hasTables,
		HasSQL:           hasQuery || hasSQL,
	}
	return res
}
