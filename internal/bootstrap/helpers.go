// Package bootstrap gives expiry handlers access to the host's shared
// resources: a messenger built on the process-wide HTTP client, a
// tenant/user-scoped cache, and a trigger scheduler. The listener core
// never calls these; failures here surface as typed errors to whichever
// handler invoked them.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	redisadapter "github.com/sashanclrp/wappa-expiry/internal/adapters/redis"
	"github.com/sashanclrp/wappa-expiry/internal/config"
	"github.com/sashanclrp/wappa-expiry/internal/domain"
	"github.com/sashanclrp/wappa-expiry/internal/messaging"
	"github.com/sashanclrp/wappa-expiry/internal/ports"
)

// ParseTenant extracts the tenant segment from a trigger key,
// e.g. "acme:EXPTRIGGER:reminder:USER123" yields "acme".
func ParseTenant(fullKey string) string {
	return domain.TenantFromKey(fullKey)
}

// NewMessenger builds a fully configured outbound messenger for a tenant
// using the shared HTTP session from the application context.
//
// Typed failures: domain.ErrContextUnavailable when the context was never
// wired, domain.ErrSessionUnavailable when the HTTP client is missing, and
// a wrapped *domain.MessengerError when client construction fails.
func NewMessenger(ctx context.Context, appCtx *AppContext, cfg config.WhatsAppConfig, tenant string) (ports.Messenger, error) {
	if appCtx == nil {
		return nil, domain.ErrContextUnavailable
	}

	httpClient := appCtx.HTTPClient()
	if httpClient == nil {
		return nil, domain.ErrSessionUnavailable
	}

	m, err := messaging.NewMessenger(ctx, cfg, tenant, httpClient)
	if err != nil {
		return nil, &domain.MessengerError{Tenant: tenant, Err: err}
	}
	return m, nil
}

// NewUserCache builds a tenant/user-scoped cache from the shared Redis
// client in the application context.
func NewUserCache(appCtx *AppContext, cfg config.CacheConfig, tenant, userID string) (ports.UserCache, error) {
	if tenant == "" {
		return nil, &domain.CacheError{UserID: userID, Err: errors.New("tenant is required")}
	}
	if userID == "" {
		return nil, &domain.CacheError{Tenant: tenant, Err: errors.New("user id is required")}
	}
	if appCtx == nil {
		return nil, domain.ErrContextUnavailable
	}

	rdb := appCtx.Redis()
	if rdb == nil {
		return nil, &domain.CacheError{Tenant: tenant, UserID: userID, Err: errors.New("redis client not available")}
	}

	ttl := cfg.UserTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return redisadapter.NewUserStore(rdb, tenant, userID, ttl), nil
}

// NewTriggerScheduler builds a tenant-scoped trigger scheduler so handlers
// can schedule follow-up actions or cancel pending ones.
func NewTriggerScheduler(appCtx *AppContext, tenant string, logger *slog.Logger) (ports.TriggerScheduler, error) {
	if tenant == "" {
		return nil, &domain.CacheError{Err: errors.New("tenant is required")}
	}
	if appCtx == nil {
		return nil, domain.ErrContextUnavailable
	}

	rdb := appCtx.Redis()
	if rdb == nil {
		return nil, &domain.CacheError{Tenant: tenant, Err: errors.New("redis client not available")}
	}

	return redisadapter.NewTriggerStore(rdb, tenant, logger), nil
}
