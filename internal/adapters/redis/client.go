package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sashanclrp/wappa-expiry/internal/config"
)

// Client wraps a Redis client with configuration.
type Client struct {
	native *redis.Client
}

// NewClient creates a new Redis client with the given configuration.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{native: rdb}, nil
}

// Native returns the underlying redis.Client for advanced operations.
func (c *Client) Native() *redis.Client {
	return c.native
}

// Get retrieves a value by key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.native.Get(ctx, key).Result()
}

// Set stores a value with an expiration.
func (c *Client) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return c.native.Set(ctx, key, value, expiration).Err()
}

// SetEx stores a value with a mandatory TTL in a single atomic operation.
func (c *Client) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.native.SetEx(ctx, key, value, ttl).Err()
}

// Del deletes keys and returns how many were removed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	return c.native.Del(ctx, keys...).Result()
}

// Exists reports whether a key exists.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.native.Exists(ctx, key).Result()
	return n > 0, err
}

// TTL returns the remaining time-to-live of a key.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.native.TTL(ctx, key).Result()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.native.Close()
}
