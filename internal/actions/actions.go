// Package actions holds the built-in expiry action handlers. Each handler
// runs as an independent dispatched task and reaches the rest of the system
// only through the bootstrap helpers.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sashanclrp/wappa-expiry/internal/bootstrap"
	"github.com/sashanclrp/wappa-expiry/internal/config"
	"github.com/sashanclrp/wappa-expiry/internal/domain"
	"github.com/sashanclrp/wappa-expiry/internal/expiry"
)

// Deps are the host resources every built-in handler needs.
type Deps struct {
	AppCtx *bootstrap.AppContext
	Config *config.Config
	Logger *slog.Logger
}

// RegisterAll registers the built-in actions with the registry.
func RegisterAll(reg *expiry.Registry, deps Deps) error {
	if err := reg.Register("user_inactivity", UserInactivity(deps)); err != nil {
		return err
	}
	if err := reg.Register("payment_reminder", PaymentReminder(deps)); err != nil {
		return err
	}
	return nil
}

// UserInactivity fires when a user's inactivity trigger expires: it echoes
// the accumulated message history back to the user and clears the cache.
func UserInactivity(deps Deps) expiry.Handler {
	return func(ctx context.Context, identifier, fullKey string) error {
		tenant := bootstrap.ParseTenant(fullKey)
		userID := identifier
		logger := deps.Logger.With("action", "user_inactivity", "tenant", tenant, "user", userID)

		cache, err := bootstrap.NewUserCache(deps.AppCtx, deps.Config.Cache, tenant, userID)
		if err != nil {
			return fmt.Errorf("create user cache: %w", err)
		}

		state, err := cache.Get(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Info("no accumulated messages, nothing to echo")
				return nil
			}
			return fmt.Errorf("get user state: %w", err)
		}

		if len(state.Messages) == 0 {
			logger.Info("no accumulated messages, nothing to echo")
			return nil
		}

		logger.Info("user inactivity detected, echoing history", "messages", len(state.Messages))

		messenger, err := bootstrap.NewMessenger(ctx, deps.AppCtx, deps.Config.WhatsApp, tenant)
		if err != nil {
			return fmt.Errorf("create messenger: %w", err)
		}

		if err := messenger.SendText(ctx, userID, formatMessageHistory(state.Messages)); err != nil {
			return fmt.Errorf("send history to %s: %w", userID, err)
		}

		if err := cache.Delete(ctx); err != nil {
			return fmt.Errorf("clean up user cache: %w", err)
		}

		return nil
	}
}

// PaymentReminder fires when a user's payment-reminder trigger expires and
// nudges them about their pending payment. The identifier is the user's
// phone number.
func PaymentReminder(deps Deps) expiry.Handler {
	return func(ctx context.Context, identifier, fullKey string) error {
		tenant := bootstrap.ParseTenant(fullKey)
		logger := deps.Logger.With("action", "payment_reminder", "tenant", tenant, "user", identifier)

		messenger, err := bootstrap.NewMessenger(ctx, deps.AppCtx, deps.Config.WhatsApp, tenant)
		if err != nil {
			return fmt.Errorf("create messenger: %w", err)
		}

		body := "*Payment Reminder*\n\nYour payment is still pending. " +
			"Complete it to keep your reservation."

		if err := messenger.SendText(ctx, identifier, body); err != nil {
			return fmt.Errorf("send reminder to %s: %w", identifier, err)
		}

		logger.Info("payment reminder sent")
		return nil
	}
}
