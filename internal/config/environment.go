package config

// ApplyEnvironment tunes a loaded configuration for the deployment
// environment it declares
func ApplyEnvironment(config *Config) *Config {
	switch config.Environment {
	case "production":
		return applyProductionConfig(config)
	case "staging":
		return applyStagingConfig(config)
	case "test":
		return applyTestConfig(config)
	default:
		return config
	}
}

func applyProductionConfig(config *Config) *Config {
	if config.LogLevel == "debug" {
		config.LogLevel = "info"
	}
	config.CORS.AllowCredentials = false
	return config
}

func applyStagingConfig(config *Config) *Config {
	config.Monitoring.TracingEnabled = config.Monitoring.OTLPEndpoint != ""
	return config
}

func applyTestConfig(config *Config) *Config {
	config.LogLevel = "error"
	config.Monitoring.TracingEnabled = false
	config.Messaging.NATS.Enabled = false
	return config
}
