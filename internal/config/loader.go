package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from various sources with priority order:
// 1. Environment variables
// 2. Configuration file (config.yaml, or CONFIG_PATH)
// 3. Default values
func Load() (*Config, error) {
	v := viper.New()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/aide/")
		v.AddConfigPath("./configs/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars and defaults
	}

	overrideWithEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := LoadSecrets(&config); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults mirrors GetDefaultConfig so that env-only deployments work
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	v.SetDefault("environment", d.Environment)
	v.SetDefault("port", d.Port)
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("cache.addr", d.Cache.Addr)
	v.SetDefault("cache.password", d.Cache.Password)
	v.SetDefault("cache.db", d.Cache.DB)
	v.SetDefault("cache.reconnect_interval", d.Cache.ReconnectInterval)

	v.SetDefault("automation.environment", d.Automation.Environment)
	v.SetDefault("automation.test_url", d.Automation.TestURL)
	v.SetDefault("automation.production_url", d.Automation.ProductionURL)
	v.SetDefault("automation.chat_timeout", d.Automation.ChatTimeout)
	v.SetDefault("automation.trigger_timeout", d.Automation.TriggerTimeout)
	v.SetDefault("automation.probe_timeout", d.Automation.ProbeTimeout)
	v.SetDefault("automation.source", d.Automation.Source)
	v.SetDefault("automation.version", d.Automation.Version)

	v.SetDefault("webhook.mode", d.Webhook.Mode)
	v.SetDefault("webhook.envelope_ttl", d.Webhook.EnvelopeTTL)
	v.SetDefault("webhook.report_delay", d.Webhook.ReportDelay)

	v.SetDefault("trigger_log.key", d.TriggerLog.Key)
	v.SetDefault("trigger_log.max_entries", d.TriggerLog.MaxEntries)

	v.SetDefault("websocket.enabled", d.WebSocket.Enabled)
	v.SetDefault("websocket.push_interval", d.WebSocket.PushInterval)
	v.SetDefault("websocket.write_timeout", d.WebSocket.WriteTimeout)
	v.SetDefault("websocket.read_buffer_size", d.WebSocket.ReadBufferSize)
	v.SetDefault("websocket.write_buffer_size", d.WebSocket.WriteBufferSize)
	v.SetDefault("websocket.max_message_size", d.WebSocket.MaxMessageSize)

	v.SetDefault("cors.allowed_origins", d.CORS.AllowedOrigins)
	v.SetDefault("cors.allowed_methods", d.CORS.AllowedMethods)
	v.SetDefault("cors.allowed_headers", d.CORS.AllowedHeaders)
	v.SetDefault("cors.exposed_headers", d.CORS.ExposedHeaders)
	v.SetDefault("cors.allow_credentials", d.CORS.AllowCredentials)
	v.SetDefault("cors.max_age", d.CORS.MaxAge)

	v.SetDefault("monitoring.enabled", d.Monitoring.Enabled)
	v.SetDefault("monitoring.metrics_path", d.Monitoring.MetricsPath)
	v.SetDefault("monitoring.tracing_enabled", d.Monitoring.TracingEnabled)
	v.SetDefault("monitoring.otlp_endpoint", d.Monitoring.OTLPEndpoint)
	v.SetDefault("monitoring.service_name", d.Monitoring.ServiceName)

	v.SetDefault("messaging.nats.enabled", d.Messaging.NATS.Enabled)
	v.SetDefault("messaging.nats.url", d.Messaging.NATS.URL)
	v.SetDefault("messaging.nats.subject_prefix", d.Messaging.NATS.SubjectPrefix)
	v.SetDefault("messaging.nats.client_name", d.Messaging.NATS.ClientName)
	v.SetDefault("messaging.nats.timeout", d.Messaging.NATS.Timeout)
}

// overrideWithEnvVars explicitly handles the unprefixed environment variables
// used by existing deployments of the relay
func overrideWithEnvVars(v *viper.Viper) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("port", p)
		}
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		v.Set("environment", env)
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		v.Set("log_level", logLevel)
	}

	// Automation engine selection
	if n8nEnv := os.Getenv("N8N_ENV"); n8nEnv != "" {
		v.Set("automation.environment", n8nEnv)
	}

	if testURL := os.Getenv("N8N_TEST_URL"); testURL != "" {
		v.Set("automation.test_url", testURL)
	}

	if prodURL := os.Getenv("N8N_PROD_URL"); prodURL != "" {
		v.Set("automation.production_url", prodURL)
	}

	if chatTimeout := os.Getenv("N8N_CHAT_TIMEOUT"); chatTimeout != "" {
		if d, err := time.ParseDuration(chatTimeout); err == nil {
			v.Set("automation.chat_timeout", d)
		}
	}

	if mode := os.Getenv("WEBHOOK_MODE"); mode != "" {
		v.Set("webhook.mode", mode)
	}

	// Redis cache
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		v.Set("cache.addr", redisAddr)
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			v.Set("cache.db", db)
		}
	}

	// NATS mirror
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		v.Set("messaging.nats.url", natsURL)
		v.Set("messaging.nats.enabled", true)
	}

	if otlp := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); otlp != "" {
		v.Set("monitoring.otlp_endpoint", otlp)
		v.Set("monitoring.tracing_enabled", true)
	}
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Port)
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal"}
	if !contains(validLogLevels, config.LogLevel) {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validEnvironments := []string{"development", "staging", "production", "test"}
	if !contains(validEnvironments, config.Environment) {
		return fmt.Errorf("invalid environment: %s", config.Environment)
	}

	if config.Cache.Addr == "" {
		return fmt.Errorf("cache address is required")
	}

	if _, err := NormalizeAutomationEnv(config.Automation.Environment); err != nil {
		return err
	}
	if err := ValidateEndpoint(config.Automation.TestURL); err != nil {
		return fmt.Errorf("automation test_url: %w", err)
	}
	if err := ValidateEndpoint(config.Automation.ProductionURL); err != nil {
		return fmt.Errorf("automation production_url: %w", err)
	}
	if config.Automation.ChatTimeout <= 0 || config.Automation.TriggerTimeout <= 0 {
		return fmt.Errorf("automation timeouts must be positive")
	}

	if !contains([]string{WebhookModeRouter, WebhookModeChat}, config.Webhook.Mode) {
		return fmt.Errorf("invalid webhook mode: %s", config.Webhook.Mode)
	}

	if config.TriggerLog.Key == "" {
		return fmt.Errorf("trigger log key cannot be empty")
	}
	if config.TriggerLog.MaxEntries < 1 {
		return fmt.Errorf("trigger log max_entries must be at least 1")
	}

	if config.WebSocket.PushInterval <= 0 {
		return fmt.Errorf("websocket push_interval must be positive")
	}

	if config.Messaging.NATS.Enabled && config.Messaging.NATS.URL == "" {
		return fmt.Errorf("NATS url is required when messaging is enabled")
	}

	return nil
}
