package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadValidConfig(t *testing.T) {
	// Set valid environment variables
	_ = os.Setenv("PORT", "8002")
	_ = os.Setenv("ADDRESS", "127.0.0.1")
	_ = os.Setenv("ENV", "dev")
	_ = os.Setenv("LOG_LEVEL", "info")
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	// Clear environment variables to test defaults
	_ = os.Unsetenv("PORT")
	_ = os.Unsetenv("ADDRESS")
	_ = os.Unsetenv("ENV")
	_ = os.Unsetenv("LOG_LEVEL")
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestInvalidPort(t *testing.T) {
	// Test invalid port values (excluding empty string since it uses default)
	testCases := []struct {
		port     string
		expected string
	}{
		{"abc", "PORT must be a valid number"},
		{"0", "PORT must be between 1 and 65535"},
		{"65536", "PORT must be between 1 and 65535"},
		{"80", "PORT 80 is privileged"},
	}

	for _, tc := range testCases {
		_ = os.Setenv("PORT", tc.port)
		_ = os.Setenv("ADDRESS", "127.0.0.1")
		_ = os.Setenv("ENV", "dev")
		_ = os.Setenv("LOG_LEVEL", "info")

		_, err := Load()
		if err == nil {
			t.Errorf("Expected error for port %s, got nil", tc.port)
		}
	}
}

func TestInvalidAddress(t *testing.T) {
	// Test invalid address values (excluding empty string since it uses default)
	testCases := []struct {
		address  string
		expected string
	}{
		{"invalid", "ADDRESS must be a valid IP address"},
	}

	for _, tc := range testCases {
		_ = os.Setenv("PORT", "8002")
		_ = os.Setenv("ADDRESS", tc.address)
		_ = os.Setenv("ENV", "dev")
		_ = os.Setenv("LOG_LEVEL", "info")

		_, err := Load()
		if err == nil {
			t.Errorf("Expected error for address %s, got nil", tc.address)
		}
	}
}

func TestInvalidEnv(t *testing.T) {
	// Test invalid env values (excluding empty string since it uses default)
	testCases := []struct {
		env      string
		expected string
	}{
		{"invalid", "ENV must be one of"},
	}

	for _, tc := range testCases {
		_ = os.Setenv("PORT", "8002")
		_ = os.Setenv("ADDRESS", "127.0.0.1")
		_ = os.Setenv("ENV", tc.env)
		_ = os.Setenv("LOG_LEVEL", "info")

		_, err := Load()
		if err == nil {
			t.Errorf("Expected error for env %s, got nil", tc.env)
		}
	}
}

func TestInvalidLogLevel(t *testing.T) {
	// Test invalid log level values (excluding empty string since it uses default)
	testCases := []struct {
		logLevel string
		expected string
	}{
		{"invalid", "LOG_LEVEL must be one of"},
	}

	for _, tc := range testCases {
		_ = os.Setenv("PORT", "8002")
		_ = os.Setenv("ADDRESS", "127.0.0.1")
		_ = os.Setenv("ENV", "dev")
		_ = os.Setenv("LOG_LEVEL", tc.logLevel)

		_, err := Load()
		if err == nil {
			t.Errorf("Expected error for log level %s, got nil", tc.logLevel)
		}
	}
}

func cleanupEnv() {
	for _, key := range GetEnvVars() {
		_ = os.Unsetenv(key)
	}
}

func TestLoadBackendAndCacheDefaults(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.BackendURL != "http://127.0.0.1:5000" {
		t.Errorf("Expected default backend URL, got %s", cfg.BackendURL)
	}
	if cfg.BackendTimeout != 30*time.Second {
		t.Errorf("Expected default backend timeout 30s, got %s", cfg.BackendTimeout)
	}
	if cfg.BackendProbeInterval != time.Minute {
		t.Errorf("Expected default probe interval 1m, got %s", cfg.BackendProbeInterval)
	}
	if cfg.MaxUploadSize != 8388608 {
		t.Errorf("Expected default upload size 8MB, got %d", cfg.MaxUploadSize)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("Expected default cache TTL 1h, got %s", cfg.CacheTTL)
	}
	if cfg.CacheMaxEntries != 100 {
		t.Errorf("Expected default cache size 100, got %d", cfg.CacheMaxEntries)
	}
	if cfg.CachePruneInterval != 5*time.Minute {
		t.Errorf("Expected default prune interval 5m, got %s", cfg.CachePruneInterval)
	}
}

func TestLoadBackendAndCacheOverrides(t *testing.T) {
	cleanupEnv()
	_ = os.Setenv("BACKEND_URL", "https://inference.internal:5443/")
	_ = os.Setenv("BACKEND_TIMEOUT", "45")
	_ = os.Setenv("CACHE_TTL", "10m")
	_ = os.Setenv("CACHE_MAX_ENTRIES", "500")
	_ = os.Setenv("ENV", "production")
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.BackendURL != "https://inference.internal:5443" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.BackendURL)
	}
	if cfg.BackendTimeout != 45*time.Second {
		t.Errorf("Expected plain seconds to parse, got %s", cfg.BackendTimeout)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("Expected cache TTL 10m, got %s", cfg.CacheTTL)
	}
	if cfg.CacheMaxEntries != 500 {
		t.Errorf("Expected cache size 500, got %d", cfg.CacheMaxEntries)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Expected env alias to resolve to prod, got %s", cfg.Env)
	}
}

func TestInvalidBackendAndCacheSettings(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"ftp scheme", "BACKEND_URL", "ftp://127.0.0.1:5000", "BACKEND_URL must use http or https"},
		{"no host", "BACKEND_URL", "http://", "BACKEND_URL must include a host"},
		{"timeout too short", "BACKEND_TIMEOUT", "10ms", "invalid BACKEND_TIMEOUT"},
		{"probe too long", "BACKEND_PROBE_INTERVAL", "48h", "invalid BACKEND_PROBE_INTERVAL"},
		{"zero cache entries", "CACHE_MAX_ENTRIES", "0", "invalid CACHE_MAX_ENTRIES"},
		{"huge cache", "CACHE_MAX_ENTRIES", "1000000", "invalid CACHE_MAX_ENTRIES"},
		{"upload over body limit", "MAX_UPLOAD_SIZE", "20971520", "exceeds MAX_REQUEST_BODY"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cleanupEnv()
			defer cleanupEnv()
			_ = os.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s, got nil", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %v", tc.expected, err)
			}
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
		hasError bool
	}{
		{"dev", EnvDevelopment, false},
		{"development", EnvDevelopment, false},
		{"staging", EnvStaging, false},
		{"prod", EnvProduction, false},
		{"production", EnvProduction, false},
		{"test", EnvTest, false},
		{"invalid", EnvDevelopment, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := ParseEnvironment(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for %s, got none", tt.input)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for %s: %v", tt.input, err)
				}
				if env != tt.expected {
					t.Errorf("Expected %v, got %v", tt.expected, env)
				}
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	tests := []struct {
		env      Environment
		expected string
	}{
		{EnvDevelopment, "dev"},
		{EnvStaging, "staging"},
		{EnvProduction, "prod"},
		{EnvTest, "test"},
	}

	for _, tt := range tests {
		if got := tt.env.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BACKEND_URL=http://10.0.0.5:5000\nCACHE_MAX_ENTRIES=7\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	if err := LoadEnvFile(); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://10.0.0.5:5000" || cfg.CacheMaxEntries != 7 {
		t.Errorf("Expected values from .env, got %s and %d", cfg.BackendURL, cfg.CacheMaxEntries)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := LoadEnvFile(); err != nil {
		t.Errorf("Missing .env should not be an error, got %v", err)
	}
}
