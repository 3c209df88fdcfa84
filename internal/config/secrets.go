package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadSecrets loads sensitive configuration from environment or files
func LoadSecrets(config *Config) error {
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Cache.Password = redisPassword
	} else if passwordFile := os.Getenv("REDIS_PASSWORD_FILE"); passwordFile != "" {
		password, err := os.ReadFile(passwordFile)
		if err != nil {
			return fmt.Errorf("failed to read Redis password file: %w", err)
		}
		config.Cache.Password = strings.TrimSpace(string(password))
	}

	return nil
}
