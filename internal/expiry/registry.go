package expiry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sashanclrp/wappa-expiry/internal/domain"
)

// Handler processes one fired trigger. identifier is the caller-supplied
// suffix of the trigger key; fullKey is the complete key that expired.
type Handler func(ctx context.Context, identifier, fullKey string) error

// ErrNilHandler is returned when a nil handler is registered.
var ErrNilHandler = errors.New("handler must not be nil")

type registration struct {
	action  string
	handler Handler
}

// Registry maps action names to handlers and resolves expired keys back to
// the handler that should run. Registrations are expected at process
// startup, before the listener starts; the map is read-only afterwards.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]registration // keyed by "EXPTRIGGER:{action}:"
	logger   *slog.Logger
}

// NewRegistry creates an empty handler registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]registration),
		logger:   logger,
	}
}

// Register stores a handler under the prefix derived from the action name.
// Registering the same action twice replaces the previous handler.
func (r *Registry) Register(action string, h Handler) error {
	if action == "" {
		return errors.New("action name must not be empty")
	}
	if h == nil {
		return fmt.Errorf("action %q: %w", action, ErrNilHandler)
	}

	prefix := domain.ActionPrefix(action)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[prefix]; exists {
		r.logger.Warn("replacing handler for already-registered action", "action", action)
	}
	r.handlers[prefix] = registration{action: action, handler: h}

	r.logger.Info("registered expiry action", "action", action)
	return nil
}

// Resolve finds the handler for an expired key. Among all registered
// prefixes occurring anywhere within the key, the longest one wins; the
// identifier is everything after its first occurrence. Returns ok=false
// when no prefix matches, which is the common case on a shared Redis
// instance and not an error.
func (r *Registry) Resolve(expiredKey string) (Handler, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best string
	for prefix := range r.handlers {
		if strings.Contains(expiredKey, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return nil, "", false
	}

	idx := strings.Index(expiredKey, best)
	identifier := expiredKey[idx+len(best):]

	return r.handlers[best].handler, identifier, true
}

// Actions lists all registered action names, sorted.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]string, 0, len(r.handlers))
	for _, reg := range r.handlers {
		actions = append(actions, reg.action)
	}
	sort.Strings(actions)
	return actions
}
