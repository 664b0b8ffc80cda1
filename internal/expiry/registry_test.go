package expiry

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noopHandler(ctx context.Context, identifier, fullKey string) error {
	return nil
}

func TestRegistry_ResolveRegisteredAction(t *testing.T) {
	reg := NewRegistry(testLogger())

	var gotID, gotKey string
	err := reg.Register("payment_reminder", func(ctx context.Context, identifier, fullKey string) error {
		gotID, gotKey = identifier, fullKey
		return nil
	})
	require.NoError(t, err)

	handler, identifier, ok := reg.Resolve("tenantA:EXPTRIGGER:payment_reminder:TXN_123")
	require.True(t, ok)
	assert.Equal(t, "TXN_123", identifier)

	require.NoError(t, handler(context.Background(), identifier, "tenantA:EXPTRIGGER:payment_reminder:TXN_123"))
	assert.Equal(t, "TXN_123", gotID)
	assert.Equal(t, "tenantA:EXPTRIGGER:payment_reminder:TXN_123", gotKey)
}

func TestRegistry_ResolveUnknownKey(t *testing.T) {
	reg := NewRegistry(testLogger())
	require.NoError(t, reg.Register("ping", noopHandler))

	_, _, ok := reg.Resolve("tenantA:EXPTRIGGER:unregistered:xyz")
	assert.False(t, ok)

	_, _, ok = reg.Resolve("journey:abc:state")
	assert.False(t, ok)
}

func TestRegistry_LongestPrefixWins(t *testing.T) {
	reg := NewRegistry(testLogger())

	var called string
	require.NoError(t, reg.Register("reminder", func(ctx context.Context, id, key string) error {
		called = "reminder"
		return nil
	}))
	require.NoError(t, reg.Register("reminder:urgent", func(ctx context.Context, id, key string) error {
		called = "reminder:urgent"
		return nil
	}))

	handler, identifier, ok := reg.Resolve("acme:EXPTRIGGER:reminder:urgent:USER1")
	require.True(t, ok)
	assert.Equal(t, "USER1", identifier)

	require.NoError(t, handler(context.Background(), identifier, ""))
	assert.Equal(t, "reminder:urgent", called)
}

// Prefix matching is a substring check, not anchored to the tenant offset.
func TestRegistry_PrefixMatchesAnywhereInKey(t *testing.T) {
	reg := NewRegistry(testLogger())
	require.NoError(t, reg.Register("ping", noopHandler))

	_, identifier, ok := reg.Resolve("extra:segments:EXPTRIGGER:ping:u1")
	require.True(t, ok)
	assert.Equal(t, "u1", identifier)
}

func TestRegistry_DuplicateRegistrationReplaces(t *testing.T) {
	reg := NewRegistry(testLogger())

	var called string
	require.NoError(t, reg.Register("ping", func(ctx context.Context, id, key string) error {
		called = "first"
		return nil
	}))
	require.NoError(t, reg.Register("ping", func(ctx context.Context, id, key string) error {
		called = "second"
		return nil
	}))

	handler, _, ok := reg.Resolve("t:EXPTRIGGER:ping:u1")
	require.True(t, ok)
	require.NoError(t, handler(context.Background(), "u1", ""))
	assert.Equal(t, "second", called)

	assert.Equal(t, []string{"ping"}, reg.Actions())
}

func TestRegistry_RegisterValidation(t *testing.T) {
	reg := NewRegistry(testLogger())

	err := reg.Register("ping", nil)
	require.ErrorIs(t, err, ErrNilHandler)

	err = reg.Register("", noopHandler)
	require.Error(t, err)
}

func TestRegistry_ActionsSorted(t *testing.T) {
	reg := NewRegistry(testLogger())
	require.NoError(t, reg.Register("zeta", noopHandler))
	require.NoError(t, reg.Register("alpha", noopHandler))

	assert.Equal(t, []string{"alpha", "zeta"}, reg.Actions())
}
