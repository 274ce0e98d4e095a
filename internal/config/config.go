package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// HTTP server
	ListenAddr string `mapstructure:"listen-addr"`

	// Record store
	SQLitePath string `mapstructure:"sqlite-path"`

	// Blob area
	StorageBackend string `mapstructure:"storage-backend"` // disk or s3
	DataDir        string `mapstructure:"data-dir"`
	S3Bucket       string `mapstructure:"s3-bucket"`
	S3Region       string `mapstructure:"s3-region"`

	// Segmentation engine
	EngineURL           string `mapstructure:"engine-url"`
	EngineModel         string `mapstructure:"engine-model"`
	TimeoutSeconds      int    `mapstructure:"timeout-seconds"`
	AlphaMatting        bool   `mapstructure:"alpha-matting"`
	ForegroundThreshold int    `mapstructure:"foreground-threshold"`
	BackgroundThreshold int    `mapstructure:"background-threshold"`

	// Upload limits and enhancement constants
	MaxUploadSize  int64   `mapstructure:"max-upload-size"`
	MaxDimension   int     `mapstructure:"max-dimension"`
	ContrastBoost  float64 `mapstructure:"contrast-boost"`
	SharpnessBoost float64 `mapstructure:"sharpness-boost"`

	// Result cache (disabled when redis-addr is empty)
	RedisAddr     string        `mapstructure:"redis-addr"`
	RedisPassword string        `mapstructure:"redis-password"`
	RedisDB       int           `mapstructure:"redis-db"`
	CacheTTL      time.Duration `mapstructure:"cache-ttl"`

	// Retention cleanup
	CleanupSchedule string `mapstructure:"cleanup-schedule"`
	RetentionDays   int    `mapstructure:"retention-days"`
}

// Load reads configuration from defaults, an optional config file, and the
// environment (BGREMOVER_ prefix).
func Load() (*Config, error) {
	viper.SetDefault("listen-addr", ":8080")
	viper.SetDefault("sqlite-path", ".artifacts/images.db")
	viper.SetDefault("storage-backend", "disk")
	viper.SetDefault("data-dir", "images")
	viper.SetDefault("s3-bucket", "")
	viper.SetDefault("s3-region", "us-east-1")
	viper.SetDefault("engine-url", "http://localhost:7000")
	viper.SetDefault("engine-model", "u2net")
	viper.SetDefault("timeout-seconds", 20)
	viper.SetDefault("alpha-matting", false)
	viper.SetDefault("foreground-threshold", 240)
	viper.SetDefault("background-threshold", 10)
	viper.SetDefault("max-upload-size", 10*1024*1024)
	viper.SetDefault("max-dimension", 1920)
	viper.SetDefault("contrast-boost", 1.2)
	viper.SetDefault("sharpness-boost", 1.1)
	viper.SetDefault("redis-addr", "")
	viper.SetDefault("redis-password", "")
	viper.SetDefault("redis-db", 0)
	viper.SetDefault("cache-ttl", 24*time.Hour)
	viper.SetDefault("cleanup-schedule", "@hourly")
	viper.SetDefault("retention-days", 7)

	viper.SetEnvPrefix("BGREMOVER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.bg-remover")

	// Config file is optional
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for errors.
func (c *Config) Validate() error {
	if c.SQLitePath == "" {
		return fmt.Errorf("sqlite-path cannot be empty")
	}
	switch c.StorageBackend {
	case "disk":
		if c.DataDir == "" {
			return fmt.Errorf("data-dir cannot be empty with disk storage")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("s3-bucket cannot be empty with s3 storage")
		}
	default:
		return fmt.Errorf("storage-backend must be disk or s3, got %q", c.StorageBackend)
	}
	if c.EngineURL == "" {
		return fmt.Errorf("engine-url cannot be empty")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout-seconds must be positive")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max-upload-size must be positive")
	}
	if c.MaxDimension <= 0 {
		return fmt.Errorf("max-dimension must be positive")
	}
	if c.ContrastBoost <= 0 || c.SharpnessBoost <= 0 {
		return fmt.Errorf("enhancement boosts must be positive")
	}
	if c.ForegroundThreshold < 0 || c.ForegroundThreshold > 255 ||
		c.BackgroundThreshold < 0 || c.BackgroundThreshold > 255 {
		return fmt.Errorf("alpha thresholds must be in [0, 255]")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention-days must be non-negative")
	}
	return nil
}

// Budget returns the engine wall-clock budget as a duration.
func (c *Config) Budget() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
