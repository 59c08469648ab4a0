package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.HistoryCap != 50 {
		t.Errorf("HistoryCap = %d, want 50", cfg.HistoryCap)
	}
	if cfg.DetectionThreshold != 0.7 {
		t.Errorf("DetectionThreshold = %v, want 0.7", cfg.DetectionThreshold)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9999")
	t.Setenv(EnvHistoryCap, "10")
	t.Setenv(EnvDetectionThreshold, "0.85")
	t.Setenv(EnvShutdownTimeout, "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.HistoryCap != 10 {
		t.Errorf("HistoryCap = %d, want 10", cfg.HistoryCap)
	}
	if cfg.DetectionThreshold != 0.85 {
		t.Errorf("DetectionThreshold = %v, want 0.85", cfg.DetectionThreshold)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv(EnvHistoryCap, "not-a-number")
	t.Setenv(EnvShutdownTimeout, "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HistoryCap != 50 {
		t.Errorf("HistoryCap = %d, want default 50", cfg.HistoryCap)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want default 30s", cfg.ShutdownTimeout)
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	t.Setenv(EnvDetectionThreshold, "1.5")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject detection threshold outside [0,1]")
	}
}

func TestKBPaths(t *testing.T) {
	t.Setenv(EnvKBDir, "/srv/kb")
	t.Setenv(EnvDataDir, "/srv/data")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.AliasTablePath() != "/srv/kb/aliases.yaml" {
		t.Errorf("AliasTablePath() = %q", cfg.AliasTablePath())
	}
	if cfg.RuleTablePath() != "/srv/kb/rules.yaml" {
		t.Errorf("RuleTablePath() = %q", cfg.RuleTablePath())
	}
	if cfg.CatalogPath() != "/srv/kb/course_catalog.json" {
		t.Errorf("CatalogPath() = %q", cfg.CatalogPath())
	}
	if cfg.SQLitePath() != "/srv/data/advisor.db" {
		t.Errorf("SQLitePath() = %q", cfg.SQLitePath())
	}
}
