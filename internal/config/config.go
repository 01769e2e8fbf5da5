// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/aristath/budgetopt/internal/modules/budget"
	"github.com/aristath/budgetopt/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Directory for the settings database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// Solver defaults. Values stored in the settings database win.
	WeightScale     int64
	SolverTimeLimit float64 // seconds, 0 = unlimited
	SolverMaxNodes  int64   // 0 = unlimited
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("BUDGET_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("PORT", 8001),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		WeightScale:     getEnvAsInt64("BUDGET_WEIGHT_SCALE", budget.DefaultScale),
		SolverTimeLimit: getEnvAsFloat("SOLVER_TIME_LIMIT_SECONDS", budget.DefaultTimeLimit.Seconds()),
		SolverMaxNodes:  getEnvAsInt64("SOLVER_MAX_NODES", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabasePath returns the location of the settings database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "config.db")
}

// ApplyDefaults registers the configured solver values as the defaults of
// the settings service.
func (c *Config) ApplyDefaults(svc *settings.Service) error {
	for key, value := range map[string]float64{
		settings.KeyWeightScale:     float64(c.WeightScale),
		settings.KeySolverTimeLimit: c.SolverTimeLimit,
		settings.KeySolverMaxNodes:  float64(c.SolverMaxNodes),
	} {
		if err := svc.SetDefault(key, value); err != nil {
			return fmt.Errorf("failed to apply default for %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks that every value is usable
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be within [1, 65535], got %d", c.Port)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.LogLevel)
	}
	if c.WeightScale < 1 || c.WeightScale > budget.MaxScale {
		return fmt.Errorf("BUDGET_WEIGHT_SCALE must be within [1, %d], got %d", budget.MaxScale, c.WeightScale)
	}
	if c.SolverTimeLimit < 0 {
		return fmt.Errorf("SOLVER_TIME_LIMIT_SECONDS must not be negative, got %g", c.SolverTimeLimit)
	}
	if c.SolverMaxNodes < 0 {
		return fmt.Errorf("SOLVER_MAX_NODES must not be negative, got %d", c.SolverMaxNodes)
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
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
