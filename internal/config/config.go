package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when GEMINI_API_KEY is not configured.
// The service refuses to start without a credential.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

type Config struct {
	ServerPort          string `mapstructure:"SERVER_PORT"`
	GeminiAPIKey        string `mapstructure:"GEMINI_API_KEY"`
	VideoAPIBaseURL     string `mapstructure:"VIDEO_API_BASE_URL"`
	VideoModel          string `mapstructure:"VIDEO_MODEL"`
	PollIntervalSeconds int    `mapstructure:"POLL_INTERVAL_SECONDS"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	TileURL             string `mapstructure:"TILE_URL"`
	TileCacheDir        string `mapstructure:"TILE_CACHE_DIR"`
	SnapshotWidth       int    `mapstructure:"SNAPSHOT_WIDTH"`
	SnapshotHeight      int    `mapstructure:"SNAPSHOT_HEIGHT"`
}

func Load() (Config, error) {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("VIDEO_API_BASE_URL", "https://generativelanguage.googleapis.com")
	viper.SetDefault("VIDEO_MODEL", "veo-2.0-generate-001")
	viper.SetDefault("POLL_INTERVAL_SECONDS", 10)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("TILE_URL", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	viper.SetDefault("TILE_CACHE_DIR", "tiles")
	viper.SetDefault("SNAPSHOT_WIDTH", 1280)
	viper.SetDefault("SNAPSHOT_HEIGHT", 720)

	var cfg Config
	_ = viper.Unmarshal(&cfg)

	if cfg.GeminiAPIKey == "" {
		return Config{}, ErrMissingAPIKey
	}
	return cfg, nil
}

// PollInterval is how long the video job client waits between status checks.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
