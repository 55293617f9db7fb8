package db

import (
	"github.com/redis/go-redis/v9"

	"github.com/harmony365/GPS-Route-Video-Generator/internal/config"
)

// ConnectRedis returns nil when no address is configured; the progress
// hub then runs in single-instance mode.
func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
