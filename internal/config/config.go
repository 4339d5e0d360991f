package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cesargomez89/weathercache/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port            string
	DBPath          string
	ForecastURL     string
	ForecastAPIKey  string
	DefaultLocation string
	Units           string
	SyncInterval    time.Duration
	FetchTimeout    time.Duration
	LogLevel        string
	LogFormat       string

	// parse problems found by Load, reported by Validate
	problems []string
}

// Load reads an optional .env file, then configuration from environment variables with defaults
func Load() *Config {
	// A missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", constants.DefaultPort),
		DBPath:          getEnv("DB_PATH", constants.DefaultDBPath),
		ForecastURL:     getEnv("FORECAST_URL", constants.DefaultForecastURL),
		ForecastAPIKey:  getEnv("FORECAST_API_KEY", ""),
		DefaultLocation: getEnv("DEFAULT_LOCATION", constants.DefaultLocation),
		Units:           getEnv("UNITS", constants.DefaultUnits),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
	cfg.SyncInterval = cfg.getDuration("SYNC_INTERVAL", constants.DefaultSyncInterval)
	cfg.FetchTimeout = cfg.getDuration("FETCH_TIMEOUT", constants.DefaultFetchTimeout)
	return cfg
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	errors := append([]string(nil), c.problems...)

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	// Validate ForecastURL
	if c.ForecastURL == "" {
		errors = append(errors, "FORECAST_URL cannot be empty")
	} else if u, err := url.Parse(c.ForecastURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("FORECAST_URL is not a valid URL: %s", c.ForecastURL))
	}

	if strings.TrimSpace(c.DefaultLocation) == "" {
		errors = append(errors, "DEFAULT_LOCATION cannot be empty")
	}

	if c.Units != constants.UnitsMetric && c.Units != constants.UnitsImperial {
		errors = append(errors, fmt.Sprintf("UNITS must be one of: metric, imperial, got: %s", c.Units))
	}

	if c.SyncInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("SYNC_INTERVAL must be at least 1m, got: %s", c.SyncInterval))
	}

	if c.FetchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("FETCH_TIMEOUT must be positive, got: %s", c.FetchTimeout))
	}

	// Validate LogLevel
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	// Validate LogFormat
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getDuration parses a duration variable, recording a problem and keeping the fallback on bad input.
func (c *Config) getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s is not a valid duration: %s", key, value))
		return fallback
	}
	return d
}
