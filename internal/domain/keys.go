package domain

import (
	"fmt"
	"strings"
)

// TriggerPrefix is the marker segment every expiry trigger key carries.
// Full key format: {tenant}:EXPTRIGGER:{action}:{identifier}
const TriggerPrefix = "EXPTRIGGER"

// DefaultTenant is used when a trigger key carries no tenant segment.
const DefaultTenant = "wappa"

// ActionPrefix builds the registry prefix for an action,
// e.g. "EXPTRIGGER:payment_reminder:".
func ActionPrefix(action string) string {
	return TriggerPrefix + ":" + action + ":"
}

// TriggerKey builds a full trigger key for a tenant, action and identifier.
func TriggerKey(tenant, action, identifier string) string {
	return fmt.Sprintf("%s:%s:%s:%s", tenant, TriggerPrefix, action, identifier)
}

// ActionFromKey extracts the action name from a trigger key, the third
// colon-delimited segment. Returns "unknown" for malformed keys.
func ActionFromKey(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) >= 3 {
		return parts[2]
	}
	return "unknown"
}

// TenantFromKey extracts the tenant segment from a trigger key.
// Falls back to DefaultTenant for keys without a colon.
func TenantFromKey(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return DefaultTenant
}
