// Package monitoring exposes the Prometheus metrics of AIDE-CORE.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.MetricsMiddleware())
//	monitoring.SetupPrometheusMetrics(router, "/metrics")
//
// Available Metrics:
//
//   - aide_core_http_requests_total{method, endpoint, status_code}
//   - aide_core_http_request_duration_seconds{method, endpoint}
//   - aide_core_cache_operations_total{operation, result}
//   - aide_core_cache_primary_available
//   - aide_core_webhooks_total{workflow, result}
//   - aide_core_outbound_calls_total{kind, result}
//   - aide_core_outbound_call_duration_seconds{kind}
//   - aide_core_broadcast_sends_total{type, result}
//   - aide_core_active_subscribers
//   - aide_core_alerts_total{type, severity}
//   - aide_core_errors_total{type, component}
//   - aide_core_build_info{version, component}
package monitoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/internal/version"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aide_core_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aide_core_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	cacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aide_core_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"}, // result: hit, miss, success, error, fallback
	)

	cachePrimaryAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aide_core_cache_primary_available",
			Help: "1 when the last operation against the primary cache succeeded",
		},
	)

	webhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aide_core_webhooks_total",
			Help: "Inbound webhook calls by workflow",
		},
		[]string{"workflow", "result"},
	)

	outboundCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aide_core_outbound_calls_total",
			Help: "Calls made to the automation engine",
		},
		[]string{"kind", "result"}, // kind: chat, trigger, probe
	)

	outboundCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aide_core_outbound_call_duration_seconds",
			Help:    "Automation engine call duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)

	broadcastSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aide_core_broadcast_sends_total",
			Help: "Per-subscriber sends performed by the broadcast hub",
		},
		[]string{"type", "result"},
	)

	activeSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aide_core_active_subscribers",
			Help: "Number of connected real-time subscribers",
		},
	)

	alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aide_core_alerts_total",
			Help: "Alerts derived from metrics snapshots",
		},
		[]string{"type", "severity"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aide_core_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type", "component"}, // type: http, cache, upstream, broadcast
	)
)

// SetupPrometheusMetrics registers the collectors with the default registry
// and exposes them on path
func SetupPrometheusMetrics(router gin.IRoutes, path string) {
	if path == "" {
		path = "/metrics"
	}

	// Registration errors only mean the collector is already registered
	_ = prometheus.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "aide_core_build_info",
		Help: "Build information for AIDE-CORE",
		ConstLabels: prometheus.Labels{
			"version":   version.Version,
			"component": "aide-core",
		},
	}, func() float64 { return 1 }))

	_ = prometheus.Register(httpRequestsTotal)
	_ = prometheus.Register(httpRequestDuration)
	_ = prometheus.Register(cacheOperationsTotal)
	_ = prometheus.Register(cachePrimaryAvailable)
	_ = prometheus.Register(webhooksTotal)
	_ = prometheus.Register(outboundCallsTotal)
	_ = prometheus.Register(outboundCallDuration)
	_ = prometheus.Register(broadcastSendsTotal)
	_ = prometheus.Register(activeSubscribers)
	_ = prometheus.Register(alertsTotal)
	_ = prometheus.Register(errorsTotal)

	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// RecordHTTPRequest records one served HTTP request
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	endpoint := normalizeEndpoint(path)
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	if status >= 500 {
		errorsTotal.WithLabelValues("http", endpoint).Inc()
	}
}

// RecordCacheOperation records cache operation metrics
func RecordCacheOperation(operation, result string) {
	cacheOperationsTotal.WithLabelValues(operation, result).Inc()
	if result == "error" {
		errorsTotal.WithLabelValues("cache", operation).Inc()
	}
}

func SetCachePrimaryAvailable(ok bool) {
	if ok {
		cachePrimaryAvailable.Set(1)
	} else {
		cachePrimaryAvailable.Set(0)
	}
}

// RecordWebhook counts an inbound webhook. Names outside the known workflow
// kinds share the "unknown" label so callers cannot grow the series set.
func RecordWebhook(workflow string, success bool) {
	webhooksTotal.WithLabelValues(workflowLabel(workflow), resultLabel(success)).Inc()
}

func workflowLabel(name string) string {
	if k := models.ParseWorkflowKind(name); k != models.WorkflowUnknown {
		return string(k)
	}
	return "unknown"
}

// RecordOutboundCall records a call to the automation engine; result is the
// error kind or "success"
func RecordOutboundCall(kind, result string, duration time.Duration) {
	outboundCallsTotal.WithLabelValues(kind, result).Inc()
	outboundCallDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if result != "success" {
		errorsTotal.WithLabelValues("upstream", kind).Inc()
	}
}

func RecordBroadcastSend(msgType string, success bool) {
	broadcastSendsTotal.WithLabelValues(msgType, resultLabel(success)).Inc()
	if !success {
		errorsTotal.WithLabelValues("broadcast", msgType).Inc()
	}
}

func SetActiveSubscribers(n int) {
	activeSubscribers.Set(float64(n))
}

func RecordAlert(alertType, severity string) {
	alertsTotal.WithLabelValues(alertType, severity).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// normalizeEndpoint collapses unbounded path segments so label cardinality
// stays fixed
func normalizeEndpoint(path string) string {
	if path == "" {
		return "unmatched"
	}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if isNumeric(part) && i > 0 {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
