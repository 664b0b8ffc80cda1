package config

import (
	"errors"
	"fmt"
)

// Validate validates the application configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis address is required"))
	}

	if c.Redis.DialTimeout <= 0 {
		errs = append(errs, errors.New("redis dial timeout must be positive"))
	}

	if c.Redis.DB < 0 || c.Redis.DB > 15 {
		errs = append(errs, errors.New("redis db must be between 0 and 15"))
	}

	if c.Listener.ReconnectBaseDelay <= 0 {
		errs = append(errs, errors.New("listener reconnect base delay must be positive"))
	}

	if c.Listener.ReconnectMaxDelay < c.Listener.ReconnectBaseDelay {
		errs = append(errs, errors.New("listener reconnect max delay must be >= base delay"))
	}

	if c.Listener.MaxReconnectAttempts < 0 {
		errs = append(errs, errors.New("listener max reconnect attempts must not be negative"))
	}

	if c.Listener.MaxConcurrentHandlers < 0 {
		errs = append(errs, errors.New("listener max concurrent handlers must not be negative"))
	}

	if c.Cache.UserTTL <= 0 {
		errs = append(errs, errors.New("cache user TTL must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}

	return nil
}
