// Package redis connects the optional Redis snapshot backend.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"cosurvival/internal/platform/config"
	"cosurvival/pkg/platform/sentinel"
)

// Options turns cfg into go-redis options. Zero-valued tuning fields keep the
// go-redis defaults.
func Options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	setIfPositive(&opts.PoolSize, cfg.PoolSize)
	setIfPositive(&opts.MinIdleConns, cfg.MinIdleConns)
	setIfPositive(&opts.DialTimeout, cfg.DialTimeout)
	setIfPositive(&opts.ReadTimeout, cfg.ReadTimeout)
	setIfPositive(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

// Connect dials Redis and requires one successful PING before returning.
// Connection failures wrap sentinel.ErrUnavailable.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url not configured: %w", sentinel.ErrUnavailable)
	}
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping %s: %w: %w", opts.Addr, sentinel.ErrUnavailable, err)
	}
	return client, nil
}

func setIfPositive[T int | ~int64](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}
