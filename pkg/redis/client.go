package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/steph-crown/movie-moments/config"
)

// Connect opens a client and verifies the connection with a ping.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func Disconnect(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
