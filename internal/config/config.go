// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// Analytics conventions. Callers of the engines depend on these being
	// explicit configuration, not hard-wired business logic.
	RiskFreeRate            float64 // Annual risk-free rate as decimal (e.g. 0.045)
	BenchmarkTicker         string  // Broad index used for beta and relative strength
	MomentumStrongThreshold float64 // 3-month return beyond which momentum is "strong"

	Backup *BackupConfig
}

// BackupConfig holds cloud backup configuration (S3-compatible storage).
// Backups are disabled unless all credentials are present.
type BackupConfig struct {
	Enabled         bool
	Endpoint        string // S3-compatible endpoint URL (e.g. Cloudflare R2)
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	RetentionDays   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("SPYGLASS_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:                 absDataDir,
		Port:                    getEnvAsInt("PORT", 8002),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DevMode:                 getEnvAsBool("DEV_MODE", false),
		RiskFreeRate:            getEnvAsFloat("RISK_FREE_RATE", 0.045),
		BenchmarkTicker:         getEnv("BENCHMARK_TICKER", "SPY"),
		MomentumStrongThreshold: getEnvAsFloat("MOMENTUM_STRONG_THRESHOLD", 0.10),
		Backup:                  loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MomentumStrongThreshold <= 0 {
		return fmt.Errorf("momentum strong threshold must be positive, got %v", c.MomentumStrongThreshold)
	}
	if c.BenchmarkTicker == "" {
		return fmt.Errorf("benchmark ticker is required")
	}
	return nil
}

// loadBackupConfig reads backup settings; backups stay disabled unless the
// endpoint, credentials, and bucket are all configured.
func loadBackupConfig() *BackupConfig {
	cfg := &BackupConfig{
		Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
		RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}

	cfg.Enabled = cfg.Endpoint != "" &&
		cfg.AccessKeyID != "" &&
		cfg.SecretAccessKey != "" &&
		cfg.Bucket != ""

	return cfg
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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
