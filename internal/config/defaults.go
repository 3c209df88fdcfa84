package config

import "time"

const (
	WebhookModeRouter = "router"
	WebhookModeChat   = "chat"

	AutomationEnvTest       = "test"
	AutomationEnvProduction = "production"
)

// GetDefaultConfig returns the configuration used when no file or
// environment override is present
func GetDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Port:        8000,
		LogLevel:    "info",

		Cache: CacheConfig{
			Addr:              "localhost:6379",
			DB:                0,
			ReconnectInterval: 5 * time.Second,
		},

		Automation: AutomationConfig{
			Environment:    AutomationEnvTest,
			TestURL:        "http://localhost:5678/webhook-test/aide",
			ProductionURL:  "http://localhost:5678/webhook/aide",
			ChatTimeout:    60 * time.Second,
			TriggerTimeout: 30 * time.Second,
			ProbeTimeout:   30 * time.Second,
			Source:         "AIDE_v2",
			Version:        "2.0.0",
		},

		Webhook: WebhookConfig{
			Mode:        WebhookModeRouter,
			EnvelopeTTL: time.Hour,
			ReportDelay: 5 * time.Second,
		},

		TriggerLog: TriggerLogConfig{
			Key:        "n8n_triggers",
			MaxEntries: 1000,
		},

		WebSocket: WebSocketConfig{
			Enabled:         true,
			PushInterval:    5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			MaxMessageSize:  64 * 1024,
		},

		CORS: CORSConfig{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           3600,
		},

		Monitoring: MonitoringConfig{
			Enabled:        true,
			MetricsPath:    "/metrics",
			TracingEnabled: false,
			OTLPEndpoint:   "localhost:4317",
			ServiceName:    "aide-core",
		},

		Messaging: MessagingConfig{
			NATS: NATSConfig{
				Enabled:       false,
				URL:           "nats://localhost:4222",
				SubjectPrefix: "aide.events",
				ClientName:    "aide-core",
				Timeout:       5 * time.Second,
			},
		},
	}
}
