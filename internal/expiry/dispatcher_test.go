package expiry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(h Handler) *Event {
	return &Event{
		ExpiredKey: "tenantA:EXPTRIGGER:ping:u1",
		Handler:    h,
		Identifier: "u1",
		Action:     "ping",
	}
}

func TestDispatcher_DispatchDoesNotBlock(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{}, testLogger())

	release := make(chan struct{})
	done := make(chan struct{})

	start := time.Now()
	d.Dispatch(testEvent(func(ctx context.Context, id, key string) error {
		<-release
		close(done)
		return nil
	}))
	assert.Less(t, time.Since(start), 100*time.Millisecond, "dispatch must return immediately")

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestDispatcher_HandlerReceivesEventArguments(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{}, testLogger())

	type call struct{ id, key string }
	got := make(chan call, 1)

	d.Dispatch(testEvent(func(ctx context.Context, id, key string) error {
		got <- call{id, key}
		return nil
	}))

	select {
	case c := <-got:
		assert.Equal(t, "u1", c.id)
		assert.Equal(t, "tenantA:EXPTRIGGER:ping:u1", c.key)
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
}

func TestDispatcher_HandlerErrorDoesNotPropagate(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{}, testLogger())

	d.Dispatch(testEvent(func(ctx context.Context, id, key string) error {
		return errors.New("boom")
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Drain(ctx))
}

func TestDispatcher_HandlerPanicIsIsolated(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{}, testLogger())

	d.Dispatch(testEvent(func(ctx context.Context, id, key string) error {
		panic("broken action")
	}))

	var ran atomic.Bool
	d.Dispatch(testEvent(func(ctx context.Context, id, key string) error {
		ran.Store(true)
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Drain(ctx))
	assert.True(t, ran.Load(), "a panicking handler must not affect others")
}

func TestDispatcher_DrainWaitsForInflight(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{}, testLogger())

	var finished atomic.Bool
	d.Dispatch(testEvent(func(ctx context.Context, id, key string) error {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Drain(ctx))
	assert.True(t, finished.Load())
}

func TestDispatcher_DrainTimeoutCancelsStragglers(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{}, testLogger())

	cancelled := make(chan struct{})
	d.Dispatch(testEvent(func(ctx context.Context, id, key string) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, d.Drain(ctx))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("straggler was never cancelled")
	}
}

func TestDispatcher_MaxConcurrentBound(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{MaxConcurrent: 1}, testLogger())

	var running, peak atomic.Int32
	for i := 0; i < 5; i++ {
		d.Dispatch(testEvent(func(ctx context.Context, id, key string) error {
			n := running.Add(1)
			if n > peak.Load() {
				peak.Store(n)
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Drain(ctx))
	assert.LessOrEqual(t, peak.Load(), int32(1))
}
