package expiry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// DispatcherConfig configures handler dispatch.
type DispatcherConfig struct {
	// MaxConcurrent bounds concurrently running handlers. Zero means
	// unbounded, which matches the historical fire-and-forget behavior.
	MaxConcurrent int
}

// Dispatcher runs handlers as independent goroutines. Dispatch never blocks
// and never surfaces handler errors to the caller; outcomes are observed
// only through completion logging. In-flight handlers are tracked so
// shutdown can drain them within a bound.
type Dispatcher struct {
	logger *slog.Logger
	sem    chan struct{} // nil when unbounded
	wg     sync.WaitGroup

	// ctx governs handler execution, independent of the listen loop's
	// context so that shutdown does not instantly kill running handlers.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	var sem chan struct{}
	if cfg.MaxConcurrent > 0 {
		sem = make(chan struct{}, cfg.MaxConcurrent)
	}

	return &Dispatcher{
		logger: logger,
		sem:    sem,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Dispatch spawns the event's handler and returns immediately. A slow or
// failing handler never blocks the caller or affects other handlers.
func (d *Dispatcher) Dispatch(event *Event) {
	task := event.Action + ":" + event.Identifier

	d.logger.Info("dispatched handler",
		"task", task,
		"action", event.Action,
		"identifier", event.Identifier,
	)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if d.sem != nil {
			select {
			case d.sem <- struct{}{}:
				defer func() { <-d.sem }()
			case <-d.ctx.Done():
				d.logger.Debug("handler cancelled before start", "task", task)
				return
			}
		}

		err := d.invoke(event)
		switch {
		case err == nil:
			d.logger.Debug("handler completed", "task", task)
		case errors.Is(err, context.Canceled):
			d.logger.Debug("handler cancelled", "task", task)
		default:
			d.logger.Error("handler failed",
				"task", task,
				"action", event.Action,
				"identifier", event.Identifier,
				"error", err,
			)
		}
	}()
}

// invoke runs the handler, converting panics into errors carrying the
// goroutine's stack so one broken action cannot take down the scheduler.
func (d *Dispatcher) invoke(event *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v\n%s", r, debug.Stack())
		}
	}()
	return event.Handler(d.ctx, event.Identifier, event.ExpiredKey)
}

// Drain waits for in-flight handlers to finish. When ctx expires first, the
// remaining handlers are cancelled and ctx's error is returned.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}
