package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cesargomez89/weathercache/internal/constants"
)

func validConfig() Config {
	return Config{
		Port:            "8080",
		DBPath:          "test.db",
		ForecastURL:     "http://localhost:8000/forecast/daily",
		DefaultLocation: "94043",
		Units:           "metric",
		SyncInterval:    time.Hour,
		FetchTimeout:    10 * time.Second,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

func TestLoad(t *testing.T) {
	// Test default values
	cfg := Load()

	if cfg.Port != constants.DefaultPort {
		t.Errorf("Expected Port to be %s, got %s", constants.DefaultPort, cfg.Port)
	}

	if cfg.DBPath != constants.DefaultDBPath {
		t.Errorf("Expected DBPath to be %s, got %s", constants.DefaultDBPath, cfg.DBPath)
	}

	if cfg.ForecastURL != constants.DefaultForecastURL {
		t.Errorf("Expected ForecastURL to be %s, got %s", constants.DefaultForecastURL, cfg.ForecastURL)
	}

	if cfg.Units != constants.DefaultUnits {
		t.Errorf("Expected Units to be %s, got %s", constants.DefaultUnits, cfg.Units)
	}

	if cfg.SyncInterval != constants.DefaultSyncInterval {
		t.Errorf("Expected SyncInterval to be %v, got %v", constants.DefaultSyncInterval, cfg.SyncInterval)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("FORECAST_URL", "http://example.com:8000/daily")
	t.Setenv("DEFAULT_LOCATION", "99705")
	t.Setenv("UNITS", "imperial")
	t.Setenv("SYNC_INTERVAL", "30m")
	t.Setenv("FETCH_TIMEOUT", "5s")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be 9090, got %s", cfg.Port)
	}

	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected DBPath to be /tmp/test.db, got %s", cfg.DBPath)
	}

	if cfg.DefaultLocation != "99705" {
		t.Errorf("Expected DefaultLocation to be 99705, got %s", cfg.DefaultLocation)
	}

	if cfg.Units != "imperial" {
		t.Errorf("Expected Units to be imperial, got %s", cfg.Units)
	}

	if cfg.SyncInterval != 30*time.Minute {
		t.Errorf("Expected SyncInterval to be 30m, got %v", cfg.SyncInterval)
	}

	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("Expected FetchTimeout to be 5s, got %v", cfg.FetchTimeout)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "soon")

	cfg := Load()
	if cfg.SyncInterval != constants.DefaultSyncInterval {
		t.Errorf("Expected fallback interval, got %v", cfg.SyncInterval)
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error for bad SYNC_INTERVAL")
	}
	if !strings.Contains(err.Error(), "SYNC_INTERVAL") {
		t.Errorf("Expected error to name SYNC_INTERVAL, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DEFAULT_LOCATION=12345\n"), 0o600); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to chdir: %v", err)
	}
	defer os.Chdir(wd) //nolint:errcheck
	defer os.Unsetenv("DEFAULT_LOCATION")

	cfg := Load()
	if cfg.DefaultLocation != "12345" {
		t.Errorf("Expected DefaultLocation from .env, got %s", cfg.DefaultLocation)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"invalid port - not a number", func(c *Config) { c.Port = "abc" }, true},
		{"invalid port - out of range", func(c *Config) { c.Port = "99999" }, true},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
		{"empty forecast url", func(c *Config) { c.ForecastURL = "" }, true},
		{"relative forecast url", func(c *Config) { c.ForecastURL = "forecast/daily" }, true},
		{"empty default location", func(c *Config) { c.DefaultLocation = "  " }, true},
		{"invalid units", func(c *Config) { c.Units = "kelvin" }, true},
		{"imperial units", func(c *Config) { c.Units = "imperial" }, false},
		{"sync interval too short", func(c *Config) { c.SyncInterval = time.Second }, true},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "invalid" }, true},
		{"invalid log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Port = ""
	cfg.Units = "kelvin"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "PORT") || !strings.Contains(err.Error(), "UNITS") {
		t.Errorf("Expected both problems reported, got %v", err)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")

	value := getEnv("TEST_VAR", "default")
	if value != "test_value" {
		t.Errorf("Expected 'test_value', got '%s'", value)
	}

	value = getEnv("NON_EXISTENT_VAR", "default")
	if value != "default" {
		t.Errorf("Expected 'default', got '%s'", value)
	}
}
