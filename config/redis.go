package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis returns nil without error when no address is configured.
func InitRedis(ctx context.Context, c RedisConfig) (*redis.Client, error) {
	if c.Addr == "" {
		slog.Info("redis not configured, category cache disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", c.Addr, err)
	}

	slog.Info("redis connected", "addr", c.Addr)
	return client, nil
}
