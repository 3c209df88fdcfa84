package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearRelayEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_PATH", "PORT", "ENVIRONMENT", "LOG_LEVEL", "N8N_ENV", "N8N_TEST_URL",
		"N8N_PROD_URL", "N8N_CHAT_TIMEOUT", "WEBHOOK_MODE", "REDIS_ADDR", "REDIS_DB",
		"REDIS_PASSWORD", "REDIS_PASSWORD_FILE", "NATS_URL", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigLoading(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearRelayEnv(t)
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

		config, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8000, config.Port)
		assert.Equal(t, "n8n_triggers", config.TriggerLog.Key)
		assert.Equal(t, int64(1000), config.TriggerLog.MaxEntries)
		assert.Equal(t, 5*time.Second, config.WebSocket.PushInterval)
		assert.Equal(t, time.Hour, config.Webhook.EnvelopeTTL)
		assert.Equal(t, WebhookModeRouter, config.Webhook.Mode)
		assert.Equal(t, config.Automation.TestURL, config.Automation.WebhookURL())
	})

	t.Run("load from file", func(t *testing.T) {
		clearRelayEnv(t)
		configContent := `
environment: test
port: 9999
log_level: debug

automation:
  environment: production
  production_url: "http://n8n.internal:5678/webhook/aide"
  chat_timeout: 45s

webhook:
  mode: chat

cache:
  addr: "test-redis:6379"
`
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))
		t.Setenv("CONFIG_PATH", path)

		config, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test", config.Environment)
		assert.Equal(t, 9999, config.Port)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, "test-redis:6379", config.Cache.Addr)
		assert.Equal(t, 45*time.Second, config.Automation.ChatTimeout)
		assert.Equal(t, WebhookModeChat, config.Webhook.Mode)
		assert.Equal(t, "http://n8n.internal:5678/webhook/aide", config.Automation.WebhookURL())
	})

	t.Run("env var precedence", func(t *testing.T) {
		clearRelayEnv(t)
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
		t.Setenv("AIDE_LOG_LEVEL", "warn")
		t.Setenv("PORT", "7777")
		t.Setenv("N8N_ENV", "prod")
		t.Setenv("N8N_PROD_URL", "https://n8n.example.com/webhook/aide")
		t.Setenv("NATS_URL", "nats://bus:4222")

		config, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 7777, config.Port)
		assert.Equal(t, "warn", config.LogLevel)
		assert.Equal(t, "https://n8n.example.com/webhook/aide", config.Automation.WebhookURL())
		assert.True(t, config.Messaging.NATS.Enabled)
		assert.Equal(t, "nats://bus:4222", config.Messaging.NATS.URL)
	})

	t.Run("invalid webhook mode", func(t *testing.T) {
		clearRelayEnv(t)
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
		t.Setenv("WEBHOOK_MODE", "broadcast")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid webhook mode")
	})
}

func TestNormalizeAutomationEnv(t *testing.T) {
	cases := map[string]string{
		"":           AutomationEnvTest,
		"test":       AutomationEnvTest,
		"prod":       AutomationEnvProduction,
		"PRODUCTION": AutomationEnvProduction,
	}
	for in, want := range cases {
		got, err := NormalizeAutomationEnv(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := NormalizeAutomationEnv("staging")
	assert.Error(t, err)
}

func TestSecretsLoading(t *testing.T) {
	clearRelayEnv(t)
	config := GetDefaultConfig()

	t.Setenv("REDIS_PASSWORD", "s3cret")
	require.NoError(t, LoadSecrets(config))
	assert.Equal(t, "s3cret", config.Cache.Password)

	t.Setenv("REDIS_PASSWORD", "")
	path := filepath.Join(t.TempDir(), "redis.pw")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))
	t.Setenv("REDIS_PASSWORD_FILE", path)
	require.NoError(t, LoadSecrets(config))
	assert.Equal(t, "from-file", config.Cache.Password)
}

func TestApplyEnvironment(t *testing.T) {
	config := GetDefaultConfig()
	config.Environment = "test"
	config.Messaging.NATS.Enabled = true

	ApplyEnvironment(config)
	assert.Equal(t, "error", config.LogLevel)
	assert.False(t, config.Messaging.NATS.Enabled)
}

func BenchmarkConfigValidation(b *testing.B) {
	config := GetDefaultConfig()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := validateConfig(config); err != nil {
			b.Fatal(err)
		}
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Environment = "production"
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}
