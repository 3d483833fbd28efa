// Package config has the configuration of the ISO 639 converters
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment is the deployment environment the tools run in
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// Config holds all application configuration
type Config struct {
	// Input and output paths
	TwoLetterSource     string
	ThreeLetterSource   string
	MacrolanguageSource string
	NameIndexSource     string // declared, never read
	RetirementsSource   string // declared, never read
	TwoLetterOutput     string
	ThreeLetterOutput   string
	Env                 Environment
	LogLevel            string
	LogDir              string // empty: console only
	LogRetentionWeeks   int    // Number of weeks to keep log files
	MaxLogFileSize      int64  // Maximum log file size in bytes
	ConvertAt           string // empty: run once and exit
	MetricsFile         string // empty: no textfile export
	StatusAddress       string
	StatusPort          string // empty: no status server
}

// Load reads an optional .env file, then loads and validates configuration
// from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		TwoLetterSource:     getEnvWithDefault("ISO639_2_SOURCE", "tmp/iso-639-2.txt"),
		ThreeLetterSource:   getEnvWithDefault("ISO639_3_SOURCE", "tmp/iso-639-3.tab"),
		MacrolanguageSource: getEnvWithDefault("ISO639_3_MACRO_SOURCE", "tmp/iso-639-3-macrolanguages.tab"),
		NameIndexSource:     getEnvWithDefault("ISO639_3_NAME_INDEX_SOURCE", "tmp/iso-639-3_Name_Index.tab"),
		RetirementsSource:   getEnvWithDefault("ISO639_3_RETIREMENTS_SOURCE", "tmp/iso-639-3_Retirements.tab"),
		TwoLetterOutput:     getEnvWithDefault("ISO639_2_OUTPUT", "public/iso-639-2.json"),
		ThreeLetterOutput:   getEnvWithDefault("ISO639_3_OUTPUT", "public/iso-639-3.json"),
		Env:                 Environment(strings.ToLower(getEnvWithDefault("ENV", string(EnvDevelopment)))),
		LogLevel:            strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		LogDir:              os.Getenv("LOG_DIR"),
		LogRetentionWeeks:   getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:      getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		ConvertAt:           os.Getenv("CONVERT_AT"),
		MetricsFile:         os.Getenv("METRICS_FILE"),
		StatusAddress:       getEnvWithDefault("STATUS_ADDRESS", "127.0.0.1"),
		StatusPort:          os.Getenv("STATUS_PORT"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Scheduled reports whether the tools keep running and convert on a schedule
func (c *Config) Scheduled() bool {
	return c.ConvertAt != ""
}

// StatusServerEnabled reports whether the status HTTP server should start
func (c *Config) StatusServerEnabled() bool {
	return c.Scheduled() && c.StatusPort != ""
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	sources := map[string]string{
		"ISO639_2_SOURCE":       cfg.TwoLetterSource,
		"ISO639_3_SOURCE":       cfg.ThreeLetterSource,
		"ISO639_3_MACRO_SOURCE": cfg.MacrolanguageSource,
		"ISO639_2_OUTPUT":       cfg.TwoLetterOutput,
		"ISO639_3_OUTPUT":       cfg.ThreeLetterOutput,
	}
	for name, path := range sources {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("invalid %s: path cannot be blank", name)
		}
	}

	// Validate ENV
	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	// Validate LOG_LEVEL
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	// Validate LOG_RETENTION_WEEKS
	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	// Validate MAX_LOG_FILE_SIZE
	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	// Validate CONVERT_AT
	if cfg.ConvertAt != "" {
		if err := validateConvertAt(cfg.ConvertAt); err != nil {
			return fmt.Errorf("invalid CONVERT_AT: %w", err)
		}
	}

	// The status server only matters when running on a schedule
	if cfg.StatusPort != "" {
		if err := validatePort(cfg.StatusPort); err != nil {
			return fmt.Errorf("invalid STATUS_PORT: %w", err)
		}
		if err := validateAddress(cfg.StatusAddress); err != nil {
			return fmt.Errorf("invalid STATUS_ADDRESS: %w", err)
		}
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env Environment) error {
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction, EnvTest:
		return nil
	}
	return fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE must be positive, got: %d", size)
	}

	// Minimum 1MB, maximum 1GB
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// validateConvertAt validates a ";" separated list of HH:MM times, the format gocron's At() expects
func validateConvertAt(convertAt string) error {
	for _, at := range strings.Split(convertAt, ";") {
		if _, err := time.Parse("15:04", at); err != nil {
			return fmt.Errorf("CONVERT_AT entries must be HH:MM, got: %q", at)
		}
	}
	return nil
}

// validatePort validates a port number
func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("port %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates a listen address
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("address must be a valid IP address or 'localhost', got: %s", address)
	}

	// The status endpoints are meant for local scrapers and probes
	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("address %s is a public IP, use a loopback or private address", address)
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
