package expiry

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T, actions ...string) *Parser {
	t.Helper()
	reg := NewRegistry(testLogger())
	for _, a := range actions {
		require.NoError(t, reg.Register(a, noopHandler))
	}
	return NewParser(reg, testLogger())
}

func TestParser_NilMessage(t *testing.T) {
	p := newTestParser(t, "ping")
	assert.Nil(t, p.Parse(nil))
}

func TestParser_ControlMessagesIgnored(t *testing.T) {
	p := newTestParser(t, "ping")

	assert.Nil(t, p.Parse(&redis.Subscription{
		Kind:    "subscribe",
		Channel: "__keyevent@0__:expired",
		Count:   1,
	}))
	assert.Nil(t, p.Parse(&redis.Pong{}))
}

func TestParser_EmptyPayload(t *testing.T) {
	p := newTestParser(t, "ping")

	assert.Nil(t, p.Parse(&redis.Message{
		Channel: "__keyevent@0__:expired",
		Payload: "",
	}))
}

func TestParser_UnregisteredKeySkipped(t *testing.T) {
	p := newTestParser(t, "ping")

	assert.Nil(t, p.Parse(&redis.Message{
		Channel: "__keyevent@0__:expired",
		Payload: "tenantA:EXPTRIGGER:unregistered:xyz",
	}))
	assert.Nil(t, p.Parse(&redis.Message{
		Channel: "__keyevent@0__:expired",
		Payload: "session:abc123",
	}))
}

func TestParser_RegisteredKeyYieldsEvent(t *testing.T) {
	p := newTestParser(t, "ping")

	event := p.Parse(&redis.Message{
		Channel: "__keyevent@0__:expired",
		Payload: "tenantA:EXPTRIGGER:ping:u1",
	})
	require.NotNil(t, event)

	assert.Equal(t, "tenantA:EXPTRIGGER:ping:u1", event.ExpiredKey)
	assert.Equal(t, "u1", event.Identifier)
	assert.Equal(t, "ping", event.Action)
	assert.NotNil(t, event.Handler)
}
