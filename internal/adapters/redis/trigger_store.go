package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashanclrp/wappa-expiry/internal/domain"
)

// scanCount is the COUNT hint for SCAN when deleting triggers by pattern.
const scanCount = 100

// TriggerStore manages expiry trigger keys for one tenant. A trigger is a
// plain key whose TTL is the schedule: when it expires, Redis publishes a
// keyspace notification and the listener dispatches the matching action.
// The value stores the creation timestamp for auditing only.
type TriggerStore struct {
	client *Client
	tenant string
	logger *slog.Logger
}

// NewTriggerStore creates a trigger store bound to a tenant.
func NewTriggerStore(client *Client, tenant string, logger *slog.Logger) *TriggerStore {
	return &TriggerStore{
		client: client,
		tenant: tenant,
		logger: logger,
	}
}

// Schedule creates a trigger that fires action for identifier after ttl.
func (s *TriggerStore) Schedule(ctx context.Context, action, identifier string, ttl time.Duration) (string, error) {
	key := domain.TriggerKey(s.tenant, action, identifier)
	value := "trigger:" + time.Now().UTC().Format(time.RFC3339)

	if err := s.client.SetEx(ctx, key, value, ttl); err != nil {
		return "", fmt.Errorf("create expiry trigger %s: %w", key, err)
	}

	s.logger.Debug("expiry trigger created",
		"action", action,
		"identifier", identifier,
		"ttl", ttl,
	)
	return key, nil
}

// Cancel deletes a pending trigger before it fires.
func (s *TriggerStore) Cancel(ctx context.Context, action, identifier string) (bool, error) {
	key := domain.TriggerKey(s.tenant, action, identifier)

	n, err := s.client.Del(ctx, key)
	if err != nil {
		return false, fmt.Errorf("delete expiry trigger %s: %w", key, err)
	}
	return n > 0, nil
}

// CancelAll deletes every pending trigger for an identifier across all
// actions. Colons in the identifier are sanitized to underscores in the
// match pattern, mirroring how trigger producers encode them.
func (s *TriggerStore) CancelAll(ctx context.Context, identifier string) (int, error) {
	safe := strings.ReplaceAll(identifier, ":", "_")
	pattern := fmt.Sprintf("%s:%s:*:%s", s.tenant, domain.TriggerPrefix, safe)

	var deleted int
	var cursor uint64
	for {
		keys, next, err := s.client.Native().Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan expiry triggers: %w", err)
		}

		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...)
			if err != nil {
				return deleted, fmt.Errorf("delete expiry triggers: %w", err)
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	s.logger.Debug("expiry triggers cancelled", "identifier", identifier, "count", deleted)
	return deleted, nil
}

// Exists reports whether a trigger is still pending.
func (s *TriggerStore) Exists(ctx context.Context, action, identifier string) (bool, error) {
	key := domain.TriggerKey(s.tenant, action, identifier)

	ok, err := s.client.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check expiry trigger %s: %w", key, err)
	}
	return ok, nil
}

// TTL returns the remaining time before a trigger fires. Returns
// domain.ErrNotFound when no trigger is pending.
func (s *TriggerStore) TTL(ctx context.Context, action, identifier string) (time.Duration, error) {
	key := domain.TriggerKey(s.tenant, action, identifier)

	ttl, err := s.client.TTL(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("get expiry trigger ttl %s: %w", key, err)
	}
	if ttl < 0 {
		// -2: key missing, -1: key without TTL; neither is a live trigger.
		return 0, domain.ErrNotFound
	}
	return ttl, nil
}
