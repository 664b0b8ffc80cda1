package ports

import (
	"context"
	"time"

	"github.com/sashanclrp/wappa-expiry/internal/domain"
)

// UserCache is a tenant/user-scoped state blob with message-history support.
type UserCache interface {
	// Get retrieves the user's cached state. Returns domain.ErrNotFound
	// when no state exists.
	Get(ctx context.Context) (*domain.UserState, error)

	// Save stores the user's state, refreshing its TTL.
	Save(ctx context.Context, state *domain.UserState) error

	// AppendMessage appends an entry to the user's message history.
	AppendMessage(ctx context.Context, msg domain.UserMessage) error

	// Delete removes the user's cached state.
	Delete(ctx context.Context) error
}

// TriggerScheduler is the write side of the expiry scheduling API: creating
// a trigger key with a TTL schedules an action, deleting it cancels.
type TriggerScheduler interface {
	// Schedule creates a trigger that fires action for identifier after ttl.
	// Returns the full trigger key.
	Schedule(ctx context.Context, action, identifier string, ttl time.Duration) (string, error)

	// Cancel deletes a pending trigger. Returns true if one was deleted.
	Cancel(ctx context.Context, action, identifier string) (bool, error)

	// CancelAll deletes every pending trigger for an identifier across all
	// actions. Returns the number of triggers deleted.
	CancelAll(ctx context.Context, identifier string) (int, error)

	// Exists reports whether a trigger is still pending.
	Exists(ctx context.Context, action, identifier string) (bool, error)

	// TTL returns the remaining time before a trigger fires.
	TTL(ctx context.Context, action, identifier string) (time.Duration, error)
}
