package expiry

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/sashanclrp/wappa-expiry/internal/domain"
)

// Event is one fired trigger, built per notification and consumed
// immediately by the dispatcher.
type Event struct {
	ExpiredKey string
	Handler    Handler
	Identifier string
	Action     string
}

// Parser turns raw pub/sub traffic into events by consulting the registry.
type Parser struct {
	registry *Registry
	logger   *slog.Logger
}

// NewParser creates a parser backed by the given registry.
func NewParser(registry *Registry, logger *slog.Logger) *Parser {
	return &Parser{registry: registry, logger: logger}
}

// Parse returns an Event for a data message whose key resolves to a
// registered handler, and nil for everything else: nil input, control
// traffic (subscription acks, pongs), empty payloads, and keys with no
// registered handler. On a shared Redis instance most expiries are
// unrelated to this scheduler, so an unresolved key is logged at debug
// and skipped.
func (p *Parser) Parse(raw any) *Event {
	if raw == nil {
		return nil
	}

	msg, ok := raw.(*redis.Message)
	if !ok {
		return nil
	}

	expiredKey := msg.Payload
	if expiredKey == "" {
		return nil
	}

	handler, identifier, ok := p.registry.Resolve(expiredKey)
	if !ok {
		p.logger.Debug("no handler registered for expired key", "key", expiredKey)
		return nil
	}

	action := domain.ActionFromKey(expiredKey)

	p.logger.Debug("expiry event detected", "action", action, "identifier", identifier)

	return &Event{
		ExpiredKey: expiredKey,
		Handler:    handler,
		Identifier: identifier,
		Action:     action,
	}
}
