package config

import (
	"os"
	"strconv"
	"time"

	"notelens/domain/chart"
	"notelens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Server   ServerConfig
	Gates    chart.GateConfig
	Pipeline PipelineConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// AIConfig holds the collaborator service settings
type AIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port      string
	AdminPort string
	GinMode   string
}

// PipelineConfig holds analysis pipeline settings
type PipelineConfig struct {
	MaxConcurrentRuns int64
	NotesSampleSize   int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		AI: AIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			BaseURL:     getEnvOrDefault("LLM_BASE_URL", ""),
			Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
			Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.2),
			MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 4000),
		},
		Server: ServerConfig{
			Port:      getEnvOrDefault("PORT", "8080"),
			AdminPort: getEnvOrDefault("ADMIN_PORT", "8081"),
			GinMode:   getEnvOrDefault("GIN_MODE", "debug"),
		},
		Gates:    loadGateConfig(),
		Pipeline: loadPipelineConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// loadGateConfig reads the chart quality thresholds, falling back to
// the shipped defaults per threshold.
func loadGateConfig() chart.GateConfig {
	defaults := chart.DefaultGateConfig()
	return chart.GateConfig{
		PieTopN:             getEnvIntOrDefault("GATE_PIE_TOP_N", defaults.PieTopN),
		LineMinPoints:       getEnvIntOrDefault("GATE_LINE_MIN_POINTS", defaults.LineMinPoints),
		HeatmapMinDensity:   getEnvFloatOrDefault("GATE_HEATMAP_MIN_DENSITY", defaults.HeatmapMinDensity),
		FieldMaxMissingRate: getEnvFloatOrDefault("GATE_FIELD_MAX_MISSING_RATE", defaults.FieldMaxMissingRate),
		BarMaxCategories:    getEnvIntOrDefault("GATE_BAR_MAX_CATEGORIES", defaults.BarMaxCategories),
	}
}

func loadPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxConcurrentRuns: int64(getEnvIntOrDefault("PIPELINE_MAX_CONCURRENT_RUNS", 2)),
		NotesSampleSize:   getEnvIntOrDefault("PIPELINE_NOTES_SAMPLE_SIZE", 20),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.AI.APIKey == "" {
		return errors.ConfigInvalid("OPENAI_API_KEY is required")
	}
	if config.Gates.FieldMaxMissingRate < 0 || config.Gates.FieldMaxMissingRate > 1 {
		return errors.ConfigInvalid("GATE_FIELD_MAX_MISSING_RATE must be within [0,1]")
	}
	if config.Gates.HeatmapMinDensity < 0 || config.Gates.HeatmapMinDensity > 1 {
		return errors.ConfigInvalid("GATE_HEATMAP_MIN_DENSITY must be within [0,1]")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
