package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"API_BASE_URL", "HTTP_TIMEOUT", "TOKEN_FILE", "API_TOKEN", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://budget.example.com")
	t.Setenv("HTTP_TIMEOUT", "30s")
	t.Setenv("TOKEN_FILE", "/tmp/token")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.APIBaseURL != "https://budget.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.TokenFile != "/tmp/token" {
		t.Errorf("TokenFile = %q", cfg.TokenFile)
	}
}

func TestLoadIgnoresBadDuration(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	if cfg := Load(); cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v, want default 15s", cfg.HTTPTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		APIBaseURL:  "http://localhost:8000",
		HTTPTimeout: 15 * time.Second,
		LogLevel:    "info",
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad scheme", func(c *Config) { c.APIBaseURL = "ftp://example.com" }, "scheme"},
		{"missing host", func(c *Config) { c.APIBaseURL = "http://" }, "missing host"},
		{"timeout too short", func(c *Config) { c.HTTPTimeout = 100 * time.Millisecond }, "at least 1 second"},
		{"timeout too long", func(c *Config) { c.HTTPTimeout = 10 * time.Minute }, "at most 5 minutes"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() accepted an invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Config{APIBaseURL: "ftp://x", HTTPTimeout: 0, LogLevel: "loud"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() accepted an invalid config")
	}
	for _, fragment := range []string{"scheme", "at least 1 second", "invalid log level"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("Validate() error missing %q: %v", fragment, err)
		}
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"silent", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		cfg := Config{LogLevel: tt.in}
		got, err := cfg.SlogLevel()
		if (err != nil) != tt.wantErr {
			t.Errorf("SlogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
