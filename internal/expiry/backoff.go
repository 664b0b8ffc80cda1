package expiry

import (
	"context"
	"log/slog"
	"time"
)

// BackoffConfig configures reconnection behavior.
type BackoffConfig struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// MaxAttempts limits consecutive failures. Zero means retry forever.
	MaxAttempts int
}

// Backoff tracks consecutive connection failures and computes exponential
// backoff delays. It is a pure state machine: no I/O beyond the sleep in
// Wait, so it is trivially testable.
type Backoff struct {
	cfg      BackoffConfig
	attempts int
	logger   *slog.Logger
}

// NewBackoff creates a backoff tracker.
func NewBackoff(cfg BackoffConfig, logger *slog.Logger) *Backoff {
	return &Backoff{cfg: cfg, logger: logger}
}

// Attempts returns the current consecutive-failure count.
func (b *Backoff) Attempts() int {
	return b.attempts
}

// RecordFailure increments the failure counter.
func (b *Backoff) RecordFailure() {
	b.attempts++
	b.logger.Error("connection failure recorded", "attempt", b.attempts)
}

// Reset zeroes the failure counter. Call after a successful connection.
func (b *Backoff) Reset() {
	if b.attempts > 0 {
		b.logger.Debug("reconnection successful, resetting counter", "attempts", b.attempts)
	}
	b.attempts = 0
}

// ShouldRetry reports whether another connection attempt is allowed.
func (b *Backoff) ShouldRetry() bool {
	if b.cfg.MaxAttempts == 0 {
		return true
	}
	return b.attempts < b.cfg.MaxAttempts
}

// Delay computes the backoff delay for the current attempt count:
// base for the first attempt, then min(base * 2^(n-1), max).
func (b *Backoff) Delay() time.Duration {
	if b.attempts == 0 {
		return b.cfg.BaseDelay
	}

	delay := b.cfg.BaseDelay << (b.attempts - 1)
	// Shift overflow shows up as a non-positive or shrunken delay.
	if delay <= 0 || delay < b.cfg.BaseDelay || delay > b.cfg.MaxDelay {
		return b.cfg.MaxDelay
	}
	return delay
}

// Wait sleeps for the computed delay or until the context is cancelled.
func (b *Backoff) Wait(ctx context.Context) error {
	delay := b.Delay()
	b.logger.Info("reconnecting after backoff", "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
