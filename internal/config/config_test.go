package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	_ = os.Unsetenv("SPLITR_HTTP_PORT")
	_ = os.Unsetenv("SPLITR_DB_PATH")
	_ = os.Unsetenv("SPLITR_TOKEN_TTL")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.HTTPPort)
	}
	if cfg.DBPath != "./data/splitr.db" {
		t.Fatalf("unexpected default db path: %s", cfg.DBPath)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected default token ttl: %s", cfg.TokenTTL)
	}
}

func TestConfigEnvOverride(t *testing.T) {
	_ = os.Setenv("SPLITR_HTTP_PORT", "9999")
	defer func() { _ = os.Unsetenv("SPLITR_HTTP_PORT") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 9999 {
		t.Fatalf("port env override failed, got %d", cfg.HTTPPort)
	}
}

func TestConfigInvalidPort(t *testing.T) {
	_ = os.Setenv("SPLITR_HTTP_PORT", "-1")
	defer func() { _ = os.Unsetenv("SPLITR_HTTP_PORT") }()

	if _, err := New(); err == nil {
		t.Fatal("expected error for negative port")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := Config{LogLevel: tt.name}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
