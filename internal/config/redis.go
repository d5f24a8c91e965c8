package config

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the toast pub/sub backend and pings it once.
func NewRedisClient(cfg *Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	if cfg.ToastTimeout > 0 {
		opt.DialTimeout = cfg.ToastTimeout
		opt.WriteTimeout = cfg.ToastTimeout
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), opt.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
