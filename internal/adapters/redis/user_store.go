package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sashanclrp/wappa-expiry/internal/domain"
)

// KeyPatternUserState is the key layout for per-user cached state.
const KeyPatternUserState = "%s:user:%s"

// UserStore persists per-user state for a tenant as a JSON blob with TTL.
// It implements ports.UserCache.
type UserStore struct {
	client *Client
	tenant string
	userID string
	ttl    time.Duration
}

// NewUserStore creates a user store bound to a tenant and user.
func NewUserStore(client *Client, tenant, userID string, ttl time.Duration) *UserStore {
	return &UserStore{
		client: client,
		tenant: tenant,
		userID: userID,
		ttl:    ttl,
	}
}

func (s *UserStore) key() string {
	return fmt.Sprintf(KeyPatternUserState, s.tenant, s.userID)
}

// Get retrieves the user's cached state.
func (s *UserStore) Get(ctx context.Context) (*domain.UserState, error) {
	data, err := s.client.Get(ctx, s.key())
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user state: %w", err)
	}

	var state domain.UserState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("unmarshal user state: %w", err)
	}

	return &state, nil
}

// Save stores the user's state, refreshing its TTL.
func (s *UserStore) Save(ctx context.Context, state *domain.UserState) error {
	state.TenantID = s.tenant
	state.UserID = s.userID
	state.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal user state: %w", err)
	}

	if err := s.client.Set(ctx, s.key(), string(data), s.ttl); err != nil {
		return fmt.Errorf("save user state: %w", err)
	}

	return nil
}

// AppendMessage appends an entry to the user's message history, creating
// the state blob if none exists.
func (s *UserStore) AppendMessage(ctx context.Context, msg domain.UserMessage) error {
	state, err := s.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		state = &domain.UserState{}
	}

	state.Messages = append(state.Messages, msg)
	return s.Save(ctx, state)
}

// Delete removes the user's cached state.
func (s *UserStore) Delete(ctx context.Context) error {
	if _, err := s.client.Del(ctx, s.key()); err != nil {
		return fmt.Errorf("delete user state: %w", err)
	}
	return nil
}
