package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashanclrp/wappa-expiry/internal/domain"
)

func TestUserStore_SaveAndGet(t *testing.T) {
	client := getTestClient(t)
	defer client.Close()

	store := NewUserStore(client, "testtenant", "user-save", 1*time.Hour)
	ctx := context.Background()

	// Clean up before test
	_ = store.Delete(ctx)

	state := &domain.UserState{
		Messages: []domain.UserMessage{
			{Timestamp: time.Now().UTC(), Text: "hello", Type: "text"},
		},
		Metadata: map[string]any{"stage": "onboarding"},
	}

	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("failed to save state: %v", err)
	}

	retrieved, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("failed to get state: %v", err)
	}

	if retrieved.TenantID != "testtenant" {
		t.Errorf("TenantID mismatch: got %s, want testtenant", retrieved.TenantID)
	}
	if retrieved.UserID != "user-save" {
		t.Errorf("UserID mismatch: got %s, want user-save", retrieved.UserID)
	}
	if len(retrieved.Messages) != 1 || retrieved.Messages[0].Text != "hello" {
		t.Errorf("messages not round-tripped: %+v", retrieved.Messages)
	}
	if retrieved.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be stamped on save")
	}

	// Clean up
	_ = store.Delete(ctx)
}

func TestUserStore_Get_NotFound(t *testing.T) {
	client := getTestClient(t)
	defer client.Close()

	store := NewUserStore(client, "testtenant", "nonexistent-user", 1*time.Hour)

	_, err := store.Get(context.Background())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStore_AppendMessage(t *testing.T) {
	client := getTestClient(t)
	defer client.Close()

	store := NewUserStore(client, "testtenant", "user-append", 1*time.Hour)
	ctx := context.Background()

	// Clean up before test
	_ = store.Delete(ctx)

	// First append creates the blob
	err := store.AppendMessage(ctx, domain.UserMessage{
		Timestamp: time.Now().UTC(),
		Text:      "first",
		Type:      "text",
	})
	if err != nil {
		t.Fatalf("failed to append first message: %v", err)
	}

	err = store.AppendMessage(ctx, domain.UserMessage{
		Timestamp: time.Now().UTC(),
		Text:      "second",
		Type:      "text",
	})
	if err != nil {
		t.Fatalf("failed to append second message: %v", err)
	}

	state, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("failed to get state: %v", err)
	}
	if len(state.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(state.Messages))
	}
	if state.Messages[0].Text != "first" || state.Messages[1].Text != "second" {
		t.Errorf("messages out of order: %+v", state.Messages)
	}

	// Clean up
	_ = store.Delete(ctx)
}

func TestUserStore_Delete(t *testing.T) {
	client := getTestClient(t)
	defer client.Close()

	store := NewUserStore(client, "testtenant", "user-delete", 1*time.Hour)
	ctx := context.Background()

	_ = store.Save(ctx, &domain.UserState{})

	if err := store.Delete(ctx); err != nil {
		t.Fatalf("failed to delete state: %v", err)
	}

	_, err := store.Get(ctx)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
