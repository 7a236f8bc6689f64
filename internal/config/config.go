// Package config loads runtime settings from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	// Storage settings
	StorageBackend  string // "file" or "postgres"
	DataDir         string
	DefaultSnapshot string // key of the undated snapshot
	DatabaseURL     string

	// Content settings
	ExpertsFile         string // YAML roster; embedded roster when empty
	BaselineFile        string // YAML baseline template; embedded template when empty
	MaxResultsPerExpert int

	// Server settings
	Port string

	// App settings
	Debug         bool
	LogFormat     string // "text" | "json"
	RetryAttempts int
	RetryDelay    time.Duration
}

// Load reads .env (if present) and the environment, then validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		// Default values
		StorageBackend:      BackendFile,
		DataDir:             "data",
		DefaultSnapshot:     "insights.json",
		MaxResultsPerExpert: 2,
		Port:                "5000",
		LogFormat:           "text",
		RetryAttempts:       3,
		RetryDelay:          2 * time.Second,
	}

	cfg.StorageBackend = getEnvOrDefault("STORAGE_BACKEND", cfg.StorageBackend)
	cfg.DataDir = getEnvOrDefault("DATA_DIR", cfg.DataDir)
	cfg.DefaultSnapshot = getEnvOrDefault("DEFAULT_SNAPSHOT", cfg.DefaultSnapshot)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.ExpertsFile = os.Getenv("EXPERTS_FILE")
	cfg.BaselineFile = os.Getenv("BASELINE_FILE")
	cfg.MaxResultsPerExpert = getEnvIntOrDefault("MAX_RESULTS_PER_EXPERT", cfg.MaxResultsPerExpert)

	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	if v := os.Getenv("RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.RetryDelay = d
		}
	}

	return cfg, cfg.Validate()
}

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

func (c *Config) Validate() error {
	if c.StorageBackend != BackendFile && c.StorageBackend != BackendPostgres {
		return fmt.Errorf("STORAGE_BACKEND must be '%s' or '%s'", BackendFile, BackendPostgres)
	}
	if c.StorageBackend == BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres backend")
	}
	if c.StorageBackend == BackendFile && c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required for the file backend")
	}
	if c.DefaultSnapshot == "" {
		return fmt.Errorf("DEFAULT_SNAPSHOT must not be empty")
	}
	if c.MaxResultsPerExpert <= 0 {
		return fmt.Errorf("MAX_RESULTS_PER_EXPERT must be positive")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be positive")
	}
	return nil
}
