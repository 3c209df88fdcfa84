package config

import "time"

type Config struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	Port        int    `mapstructure:"port" yaml:"port"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`

	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Automation AutomationConfig `mapstructure:"automation" yaml:"automation"`
	Webhook    WebhookConfig    `mapstructure:"webhook" yaml:"webhook"`
	TriggerLog TriggerLogConfig `mapstructure:"trigger_log" yaml:"trigger_log"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket" yaml:"websocket"`
	CORS       CORSConfig       `mapstructure:"cors" yaml:"cors"`
	Monitoring MonitoringConfig `mapstructure:"monitoring" yaml:"monitoring"`
	Messaging  MessagingConfig  `mapstructure:"messaging" yaml:"messaging"`
}

// CacheConfig handles the Redis-backed cache store
type CacheConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	Password          string        `mapstructure:"password" yaml:"password"`
	DB                int           `mapstructure:"db" yaml:"db"`
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval" yaml:"reconnect_interval"`
}

// AutomationConfig describes the n8n automation engine. Exactly two webhook
// endpoints exist; Environment picks one of them once at startup.
type AutomationConfig struct {
	Environment    string        `mapstructure:"environment" yaml:"environment"` // test | production
	TestURL        string        `mapstructure:"test_url" yaml:"test_url"`
	ProductionURL  string        `mapstructure:"production_url" yaml:"production_url"`
	ChatTimeout    time.Duration `mapstructure:"chat_timeout" yaml:"chat_timeout"`
	TriggerTimeout time.Duration `mapstructure:"trigger_timeout" yaml:"trigger_timeout"`
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	Source         string        `mapstructure:"source" yaml:"source"`
	Version        string        `mapstructure:"version" yaml:"version"`
}

// WebhookConfig controls the inbound webhook router
type WebhookConfig struct {
	Mode        string        `mapstructure:"mode" yaml:"mode"` // router | chat
	EnvelopeTTL time.Duration `mapstructure:"envelope_ttl" yaml:"envelope_ttl"`
	ReportDelay time.Duration `mapstructure:"report_delay" yaml:"report_delay"`
}

type TriggerLogConfig struct {
	Key        string `mapstructure:"key" yaml:"key"`
	MaxEntries int64  `mapstructure:"max_entries" yaml:"max_entries"`
}

type WebSocketConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	PushInterval    time.Duration `mapstructure:"push_interval" yaml:"push_interval"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size" yaml:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size" yaml:"write_buffer_size"`
	MaxMessageSize  int64         `mapstructure:"max_message_size" yaml:"max_message_size"`
}

// CORSConfig handles Cross-Origin Resource Sharing
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age"`
}

type MonitoringConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	MetricsPath    string `mapstructure:"metrics_path" yaml:"metrics_path"`
	TracingEnabled bool   `mapstructure:"tracing_enabled" yaml:"tracing_enabled"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	ServiceName    string `mapstructure:"service_name" yaml:"service_name"`
}

// MessagingConfig configures the optional NATS mirror of hub broadcasts
type MessagingConfig struct {
	NATS NATSConfig `mapstructure:"nats" yaml:"nats"`
}

type NATSConfig struct {
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
	URL           string        `mapstructure:"url" yaml:"url"`
	SubjectPrefix string        `mapstructure:"subject_prefix" yaml:"subject_prefix"`
	ClientName    string        `mapstructure:"client_name" yaml:"client_name"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
}
