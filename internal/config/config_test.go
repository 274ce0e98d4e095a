package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		ListenAddr:          ":8080",
		SQLitePath:          ".artifacts/images.db",
		StorageBackend:      "disk",
		DataDir:             "images",
		EngineURL:           "http://localhost:7000",
		EngineModel:         "u2net",
		TimeoutSeconds:      20,
		ForegroundThreshold: 240,
		BackgroundThreshold: 10,
		MaxUploadSize:       10 * 1024 * 1024,
		MaxDimension:        1920,
		ContrastBoost:       1.2,
		SharpnessBoost:      1.1,
		CacheTTL:            24 * time.Hour,
		CleanupSchedule:     "@hourly",
		RetentionDays:       7,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsEmptySQLitePath(t *testing.T) {
	cfg := validConfig()
	cfg.SQLitePath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty sqlite-path")
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown storage backend")
	}
}

func TestValidateRequiresBucketForS3(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "s3"
	cfg.S3Bucket = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for s3 backend without bucket")
	}

	cfg.S3Bucket = "my-images"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid s3 config, got %v", err)
	}
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.TimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}
}

func TestValidateRejectsOutOfRangeThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.ForegroundThreshold = 300
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for threshold above 255")
	}

	cfg = validConfig()
	cfg.BackgroundThreshold = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative threshold")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TimeoutSeconds != 20 {
		t.Errorf("expected default timeout 20, got %d", cfg.TimeoutSeconds)
	}
	if cfg.EngineModel != "u2net" {
		t.Errorf("expected default model u2net, got %s", cfg.EngineModel)
	}
	if cfg.StorageBackend != "disk" {
		t.Errorf("expected default backend disk, got %s", cfg.StorageBackend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestBudget(t *testing.T) {
	cfg := validConfig()
	if cfg.Budget() != 20*time.Second {
		t.Errorf("expected 20s budget, got %s", cfg.Budget())
	}
}
