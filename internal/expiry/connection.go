package expiry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/sashanclrp/wappa-expiry/internal/config"
)

// MessageSource yields raw pub/sub traffic: *redis.Message for data,
// *redis.Subscription and *redis.Pong for control traffic.
type MessageSource interface {
	Receive(ctx context.Context) (any, error)
}

// Connector owns a subscription lifecycle for the listener.
type Connector interface {
	Connect(ctx context.Context) (MessageSource, error)
	Disconnect(ctx context.Context)
}

// Connection is an active keyspace-notification subscription.
type Connection struct {
	pubsub  *redis.PubSub
	Channel string
	DB      int
}

// Receive blocks until the next raw pub/sub message arrives or the
// context is cancelled.
func (c *Connection) Receive(ctx context.Context) (any, error) {
	return c.pubsub.Receive(ctx)
}

// ConnManager owns the Redis connection and subscription used by the expiry
// listener. The client is exclusive to one listener run; it is not shared
// with the rest of the process.
type ConnManager struct {
	cfg    config.RedisConfig
	logger *slog.Logger

	client *redis.Client
	pubsub *redis.PubSub
}

// NewConnManager creates a connection manager for the given Redis target.
func NewConnManager(cfg config.RedisConfig, logger *slog.Logger) *ConnManager {
	return &ConnManager{cfg: cfg, logger: logger}
}

// Connect dials Redis, enables keyspace expiry notifications server-side,
// and subscribes to the expired-key event channel for the configured
// database. Failures propagate to the caller for backoff handling.
func (m *ConnManager) Connect(ctx context.Context) (MessageSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         m.cfg.Addr,
		Password:     m.cfg.Password,
		DB:           m.cfg.DB,
		DialTimeout:  m.cfg.DialTimeout,
		WriteTimeout: m.cfg.WriteTimeout,
		PoolSize:     m.cfg.PoolSize,
		MinIdleConns: m.cfg.MinIdleConns,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	channel := fmt.Sprintf("__keyevent@%d__:expired", m.cfg.DB)
	m.logger.Info("expiry listener connecting", "db", m.cfg.DB, "channel", channel)

	// Server-wide setting; the operator may have locked it down, in which
	// case the feature must already be enabled in redis.conf.
	if err := client.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		m.logger.Warn("failed to enable keyspace notifications, "+
			"ensure notify-keyspace-events includes Ex", "error", err)
	} else {
		m.logger.Info("keyspace notifications enabled", "flags", "Ex")
	}

	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		_ = client.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	m.client = client
	m.pubsub = pubsub

	return &Connection{pubsub: pubsub, Channel: channel, DB: m.cfg.DB}, nil
}

// Disconnect tears down the subscription and connection. Teardown errors
// are logged, not returned, and calling it repeatedly is safe.
func (m *ConnManager) Disconnect(ctx context.Context) {
	if m.pubsub != nil {
		if err := m.pubsub.Unsubscribe(ctx); err != nil {
			m.logger.Warn("error unsubscribing", "error", err)
		}
		if err := m.pubsub.Close(); err != nil {
			m.logger.Warn("error closing subscription", "error", err)
		}
		m.pubsub = nil
	}

	if m.client != nil {
		if err := m.client.Close(); err != nil {
			m.logger.Warn("error closing redis client", "error", err)
		}
		m.client = nil
	}

	m.logger.Debug("redis connection resources released")
}
