// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// AutonomyEnabled gates audit persistence of executed actions
	AutonomyEnabled bool

	Decision   DecisionConfig
	Cache      CacheConfig
	Scheduling ScheduleConfig
}

// DecisionConfig holds the thresholds injected into estimators and policies
type DecisionConfig struct {
	AnomalyThreshold      float64
	ForecastOverrunFactor float64
	AnomalyCountToFreeze  int
	MonteCarloIterations  int
	AutoCategorize        bool // Fill missing categories with the rule categorizer before analysis
}

// CacheConfig holds TTLs for memoized pipeline outputs
type CacheConfig struct {
	ForecastTTL time.Duration
	HealthTTL   time.Duration
	ActionsTTL  time.Duration
}

// ScheduleConfig holds cron expressions for background jobs
type ScheduleConfig struct {
	Enabled          bool
	PipelineCron     string
	CacheCleanupCron string
	PipelineTimeout  time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("ORACLE_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnvAsInt("PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		AutonomyEnabled: getEnvAsBool("AUTONOMY_ENABLED", false),
		Decision: DecisionConfig{
			AnomalyThreshold:      getEnvAsFloat("ANOMALY_THRESHOLD", 2.0),
			ForecastOverrunFactor: getEnvAsFloat("FORECAST_OVERRUN_FACTOR", 1.1),
			AnomalyCountToFreeze:  getEnvAsInt("ANOMALY_COUNT_TO_FREEZE", 1),
			MonteCarloIterations:  getEnvAsInt("MONTE_CARLO_ITERATIONS", 1000),
			AutoCategorize:        getEnvAsBool("AUTO_CATEGORIZE", false),
		},
		Cache: CacheConfig{
			ForecastTTL: getEnvAsDuration("CACHE_FORECAST_TTL", time.Hour),
			HealthTTL:   getEnvAsDuration("CACHE_HEALTH_TTL", 30*time.Minute),
			ActionsTTL:  getEnvAsDuration("CACHE_ACTIONS_TTL", 15*time.Minute),
		},
		Scheduling: ScheduleConfig{
			Enabled:          getEnvAsBool("SCHEDULER_ENABLED", true),
			PipelineCron:     getEnv("PIPELINE_CRON", "0 0 3 * * *"), // daily at 03:00
			CacheCleanupCron: getEnv("CACHE_CLEANUP_CRON", "0 30 * * * *"),
			PipelineTimeout:  getEnvAsDuration("PIPELINE_TIMEOUT", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that numeric settings are in range
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Decision.AnomalyThreshold <= 0 {
		return fmt.Errorf("anomaly threshold must be positive, got %v", c.Decision.AnomalyThreshold)
	}
	if c.Decision.ForecastOverrunFactor <= 0 {
		return fmt.Errorf("forecast overrun factor must be positive, got %v", c.Decision.ForecastOverrunFactor)
	}
	if c.Decision.AnomalyCountToFreeze < 1 {
		return fmt.Errorf("anomaly count to freeze must be at least 1, got %d", c.Decision.AnomalyCountToFreeze)
	}
	if c.Decision.MonteCarloIterations < 1 {
		return fmt.Errorf("monte carlo iterations must be at least 1, got %d", c.Decision.MonteCarloIterations)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
