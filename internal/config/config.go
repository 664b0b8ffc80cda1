package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application-level configuration.
type Config struct {
	Redis    RedisConfig
	Listener ListenerConfig
	WhatsApp WhatsAppConfig
	Cache    CacheConfig
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

// ListenerConfig holds expiry listener settings.
type ListenerConfig struct {
	// ReconnectBaseDelay is the first backoff delay after a connection failure.
	ReconnectBaseDelay time.Duration
	// ReconnectMaxDelay caps the exponential backoff.
	ReconnectMaxDelay time.Duration
	// MaxReconnectAttempts limits consecutive failures before the listener
	// terminates. Zero means retry forever.
	MaxReconnectAttempts int
	// MaxConcurrentHandlers bounds concurrently running dispatched handlers.
	// Zero means unbounded.
	MaxConcurrentHandlers int
	// DrainTimeout bounds how long shutdown waits for in-flight handlers.
	DrainTimeout time.Duration
}

// WhatsAppConfig holds WhatsApp Business API settings used by the
// bootstrap messenger helper.
type WhatsAppConfig struct {
	APIEndpoint string
	STSEndpoint string
	// SecretName names the AWS Secrets Manager secret holding the STS
	// client credentials. When empty, ClientID/ClientSecret are used as-is.
	SecretName   string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

// CacheConfig holds settings for tenant/user caches.
type CacheConfig struct {
	UserTTL time.Duration
}

// LoadFromEnv loads configuration from environment variables with sensible
// defaults, applying an optional YAML overlay file named by
// EXPIRY_CONFIG_FILE before validation.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Redis: RedisConfig{
			Addr:         getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           getEnvInt("REDIS_DB", 0),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		},
		Listener: ListenerConfig{
			ReconnectBaseDelay:    getEnvDuration("LISTENER_RECONNECT_BASE_DELAY", 10*time.Second),
			ReconnectMaxDelay:     getEnvDuration("LISTENER_RECONNECT_MAX_DELAY", 5*time.Minute),
			MaxReconnectAttempts:  getEnvInt("LISTENER_MAX_RECONNECT_ATTEMPTS", 0),
			MaxConcurrentHandlers: getEnvInt("LISTENER_MAX_CONCURRENT_HANDLERS", 0),
			DrainTimeout:          getEnvDuration("LISTENER_DRAIN_TIMEOUT", 30*time.Second),
		},
		WhatsApp: WhatsAppConfig{
			APIEndpoint:  getEnvOrDefault("WHATSAPP_API_ENDPOINT", "https://graph.facebook.com/v18.0"),
			STSEndpoint:  os.Getenv("WHATSAPP_STS_ENDPOINT"),
			SecretName:   os.Getenv("WHATSAPP_SECRET_NAME"),
			ClientID:     os.Getenv("WHATSAPP_CLIENT_ID"),
			ClientSecret: os.Getenv("WHATSAPP_CLIENT_SECRET"),
			Timeout:      10 * time.Second,
			MaxRetries:   3,
			RetryDelay:   2 * time.Second,
		},
		Cache: CacheConfig{
			UserTTL: getEnvDuration("CACHE_USER_TTL", 24*time.Hour),
		},
	}

	if path := os.Getenv("EXPIRY_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
