package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sashanclrp/wappa-expiry/internal/config"
	"github.com/sashanclrp/wappa-expiry/internal/domain"
)

// getTestClient creates a Redis client for testing.
// Skips the test if Redis is not available.
func getTestClient(t *testing.T) *Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client, err := NewClient(config.RedisConfig{
		Addr:         addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           15, // Use a separate DB for tests
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     5,
		MinIdleConns: 1,
	})
	if err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	return client
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTriggerStore_ScheduleAndExists(t *testing.T) {
	client := getTestClient(t)
	defer client.Close()

	store := NewTriggerStore(client, "testtenant", discardLogger())
	ctx := context.Background()

	// Clean up before test
	_, _ = store.Cancel(ctx, "ping", "user-1")

	key, err := store.Schedule(ctx, "ping", "user-1", 1*time.Hour)
	if err != nil {
		t.Fatalf("failed to schedule trigger: %v", err)
	}
	if key != "testtenant:EXPTRIGGER:ping:user-1" {
		t.Errorf("unexpected trigger key: %s", key)
	}

	exists, err := store.Exists(ctx, "ping", "user-1")
	if err != nil {
		t.Fatalf("failed to check trigger: %v", err)
	}
	if !exists {
		t.Error("trigger should exist after scheduling")
	}

	// Clean up
	_, _ = store.Cancel(ctx, "ping", "user-1")
}

func TestTriggerStore_Cancel(t *testing.T) {
	client := getTestClient(t)
	defer client.Close()

	store := NewTriggerStore(client, "testtenant", discardLogger())
	ctx := context.Background()

	_, err := store.Schedule(ctx, "payment_reminder", "TXN_42", 1*time.Hour)
	if err != nil {
		t.Fatalf("failed to schedule trigger: %v", err)
	}

	cancelled, err := store.Cancel(ctx, "payment_reminder", "TXN_42")
	if err != nil {
		t.Fatalf("failed to cancel trigger: %v", err)
	}
	if !cancelled {
		t.Error("expected cancel to report a deleted trigger")
	}

	// Cancelling again should report nothing deleted
	cancelled, err = store.Cancel(ctx, "payment_reminder", "TXN_42")
	if err != nil {
		t.Fatalf("failed on second cancel: %v", err)
	}
	if cancelled {
		t.Error("second cancel should find nothing to delete")
	}
}

func TestTriggerStore_CancelAll(t *testing.T) {
	client := getTestClient(t)
	defer client.Close()

	store := NewTriggerStore(client, "testtenant", discardLogger())
	ctx := context.Background()

	// Triggers for the same identifier under different actions
	if _, err := store.Schedule(ctx, "ping", "user-9", 1*time.Hour); err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}
	if _, err := store.Schedule(ctx, "user_inactivity", "user-9", 1*time.Hour); err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}
	// A trigger for a different identifier must survive
	if _, err := store.Schedule(ctx, "ping", "user-10", 1*time.Hour); err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}

	deleted, err := store.CancelAll(ctx, "user-9")
	if err != nil {
		t.Fatalf("failed to cancel all: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted triggers, got %d", deleted)
	}

	exists, err := store.Exists(ctx, "ping", "user-10")
	if err != nil {
		t.Fatalf("failed to check surviving trigger: %v", err)
	}
	if !exists {
		t.Error("trigger for other identifier should survive CancelAll")
	}

	// Clean up
	_, _ = store.Cancel(ctx, "ping", "user-10")
}

func TestTriggerStore_TTL(t *testing.T) {
	client := getTestClient(t)
	defer client.Close()

	store := NewTriggerStore(client, "testtenant", discardLogger())
	ctx := context.Background()

	if _, err := store.Schedule(ctx, "ping", "user-ttl", 30*time.Minute); err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}

	ttl, err := store.TTL(ctx, "ping", "user-ttl")
	if err != nil {
		t.Fatalf("failed to get ttl: %v", err)
	}
	if ttl <= 29*time.Minute || ttl > 30*time.Minute {
		t.Errorf("unexpected ttl: %v", ttl)
	}

	// Clean up
	_, _ = store.Cancel(ctx, "ping", "user-ttl")
}

func TestTriggerStore_TTL_NotFound(t *testing.T) {
	client := getTestClient(t)
	defer client.Close()

	store := NewTriggerStore(client, "testtenant", discardLogger())
	ctx := context.Background()

	_, err := store.TTL(ctx, "ping", "nonexistent-user")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
