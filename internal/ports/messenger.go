package ports

import "context"

// Messenger sends outbound messages to users on behalf of a tenant.
// Expiry handlers obtain one through the bootstrap helpers; the listener
// core never constructs or calls it.
type Messenger interface {
	// SendText sends a plain text message to a recipient.
	SendText(ctx context.Context, to, body string) error

	// Tenant returns the tenant this messenger is bound to.
	Tenant() string
}
