package config

import (
	"os"
	"strconv"

	"spendlens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Ingest    IngestConfig
	Analytics AnalyticsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// IngestConfig holds file ingestion settings
type IngestConfig struct {
	MaxFileSizeMB int
	// Concurrency bounds the number of files of one upload batch
	// processed in parallel. Per-file isolation is unaffected.
	Concurrency int
}

// AnalyticsConfig holds analysis tuning knobs
type AnalyticsConfig struct {
	// ExcludeUnattributed drops the attribution platform's synthetic
	// "Unpopulated" bucket before any aggregation.
	ExcludeUnattributed bool
	// CartPerPurchase estimates web add-to-cart volume when no cart
	// column exists in the source data.
	CartPerPurchase float64
	// LoginPerOpen estimates app logins when the attribution export
	// carries no login column.
	LoginPerOpen float64
	// AnomalyThreshold is the number of standard deviations beyond
	// which a daily value is flagged.
	AnomalyThreshold float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Ingest: IngestConfig{
			MaxFileSizeMB: getEnvIntOrDefault("MAX_FILE_SIZE_MB", 50),
			Concurrency:   getEnvIntOrDefault("UPLOAD_CONCURRENCY", 4),
		},
		Analytics: AnalyticsConfig{
			ExcludeUnattributed: getEnvBoolOrDefault("EXCLUDE_UNATTRIBUTED", true),
			CartPerPurchase:     getEnvFloatOrDefault("CART_ESTIMATE_MULTIPLIER", 3.0),
			LoginPerOpen:        getEnvFloatOrDefault("LOGIN_ESTIMATE_RATIO", 0.25),
			AnomalyThreshold:    getEnvFloatOrDefault("ANOMALY_THRESHOLD", 2.0),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Ingest.MaxFileSizeMB <= 0 {
		return errors.ConfigInvalid("MAX_FILE_SIZE_MB must be positive")
	}
	if config.Ingest.Concurrency <= 0 {
		return errors.ConfigInvalid("UPLOAD_CONCURRENCY must be positive")
	}
	if config.Analytics.CartPerPurchase < 0 || config.Analytics.LoginPerOpen < 0 {
		return errors.ConfigInvalid("estimation multipliers must be non-negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
