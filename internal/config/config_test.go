package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 || cfg.SaveInterval != 30*time.Second || cfg.MaxUploadBytes != 8<<20 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MDNS_ENABLED", "true")
	t.Setenv("SAVE_INTERVAL", "5s")
	t.Setenv("ALLOWED_ORIGINS", " a.test , ,b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9000 || !cfg.MDNSEnabled || cfg.SaveInterval != 5*time.Second {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
	if diff := cmp.Diff([]string{"a.test", "b.test"}, cfg.Origins()); diff != "" {
		t.Errorf("Origins() (-want +got):\n%s", diff)
	}
}

func TestLevelFallback(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("Level() = %v, want info", cfg.Level())
	}
}
