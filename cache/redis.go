package cache

import (
	"context"
	"errors"
	"time"

	"polling-backend/config"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRedisNotAvailable is returned when Redis was never configured
	// or the connection failed.
	ErrRedisNotAvailable = errors.New("redis not available")

	client *redis.Client
)

// InitRedis connects to Redis if an address is configured. Redis is
// optional: without it the distributed rate limiter and the sweep lock
// are simply disabled.
func InitRedis(cfg *config.Config) error {
	if cfg.RedisAddr == "" {
		return ErrRedisNotAvailable
	}

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
		return err
	}
	return nil
}

// GetClient returns the shared Redis client.
func GetClient() (*redis.Client, error) {
	if client == nil {
		return nil, ErrRedisNotAvailable
	}
	return client, nil
}

// CloseRedis closes the connection if one was opened.
func CloseRedis() {
	if client != nil {
		_ = client.Close()
		client = nil
	}
}
