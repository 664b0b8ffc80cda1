package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrNotFound = errors.New("not found")

	// ErrRetriesExhausted is returned by the listener when the configured
	// reconnection attempt ceiling is reached.
	ErrRetriesExhausted = errors.New("reconnection attempts exhausted")

	// ErrContextUnavailable indicates the application context was never
	// initialized (SetHTTPClient/SetRedis not called during startup).
	ErrContextUnavailable = errors.New("application context not available")

	// ErrSessionUnavailable indicates the shared HTTP client is missing
	// from the application context.
	ErrSessionUnavailable = errors.New("shared HTTP session not available")
)

// ListenerError wraps a failure inside the expiry listen loop.
type ListenerError struct {
	Op      string // operation that failed
	Attempt int    // reconnection attempt count at time of failure
	Err     error  // underlying error
}

func (e *ListenerError) Error() string {
	if e.Attempt > 0 {
		return fmt.Sprintf("%s: attempt=%d: %v", e.Op, e.Attempt, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// MessengerError represents a failure constructing or using the outbound
// messaging client for a tenant.
type MessengerError struct {
	Tenant string
	Err    error
}

func (e *MessengerError) Error() string {
	return fmt.Sprintf("messenger: tenant=%s: %v", e.Tenant, e.Err)
}

func (e *MessengerError) Unwrap() error {
	return e.Err
}

// CacheError represents a failure constructing or using a tenant/user cache.
type CacheError struct {
	Tenant string
	UserID string
	Err    error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache: tenant=%s user=%s: %v", e.Tenant, e.UserID, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration-related error.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config: field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
