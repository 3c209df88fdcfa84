package config

import (
	"fmt"
	"strings"
)

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// NormalizeAutomationEnv maps the accepted spellings of the automation
// environment onto test or production
func NormalizeAutomationEnv(env string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", AutomationEnvTest:
		return AutomationEnvTest, nil
	case AutomationEnvProduction, "prod":
		return AutomationEnvProduction, nil
	default:
		return "", fmt.Errorf("invalid automation environment: %s", env)
	}
}

// WebhookURL returns the endpoint selected by Environment
func (a AutomationConfig) WebhookURL() string {
	env, err := NormalizeAutomationEnv(a.Environment)
	if err == nil && env == AutomationEnvProduction {
		return a.ProductionURL
	}
	return a.TestURL
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
