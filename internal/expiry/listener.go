package expiry

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sashanclrp/wappa-expiry/internal/domain"
	"github.com/sashanclrp/wappa-expiry/internal/logging"
)

// State is the listener's lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateListening
	StateBackoffWait
	StateShutdown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateListening:
		return "listening"
	case StateBackoffWait:
		return "backoff_wait"
	case StateShutdown:
		return "shutdown"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Listener is the long-running control loop: connect, receive, parse,
// dispatch, and reconnect with backoff on failure. Cancellation of the
// governing context produces an orderly shutdown, never a retry.
type Listener struct {
	connector    Connector
	parser       *Parser
	dispatcher   *Dispatcher
	backoff      *Backoff
	logger       *slog.Logger
	drainTimeout time.Duration

	state atomic.Int32
}

// ListenerOptions configures a Listener.
type ListenerOptions struct {
	Connector    Connector
	Parser       *Parser
	Dispatcher   *Dispatcher
	Backoff      *Backoff
	Logger       *slog.Logger
	DrainTimeout time.Duration
}

// NewListener composes the expiry listener from its parts.
func NewListener(opts ListenerOptions) *Listener {
	return &Listener{
		connector:    opts.Connector,
		parser:       opts.Parser,
		dispatcher:   opts.Dispatcher,
		backoff:      opts.Backoff,
		logger:       opts.Logger,
		drainTimeout: opts.DrainTimeout,
	}
}

// State returns the listener's current lifecycle state.
func (l *Listener) State() State {
	return State(l.state.Load())
}

func (l *Listener) setState(s State) {
	l.state.Store(int32(s))
}

// Run drives the listener until the context is cancelled (returns nil after
// an orderly shutdown) or the reconnection budget is exhausted (returns
// domain.ErrRetriesExhausted).
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info("starting expiry listener")

	for l.backoff.ShouldRetry() {
		l.setState(StateConnecting)

		err := l.listenOnce(ctx)

		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			l.shutdown(ctx)
			return nil
		}

		l.backoff.RecordFailure()
		l.logger.Error("expiry listener error",
			"attempt", l.backoff.Attempts(),
			"error", err,
		)

		if !l.backoff.ShouldRetry() {
			break
		}

		l.setState(StateBackoffWait)
		if err := l.backoff.Wait(ctx); err != nil {
			l.shutdown(ctx)
			return nil
		}
	}

	l.logger.Log(ctx, logging.LevelCritical,
		"reconnection attempts exhausted, expiry listener terminating",
		"attempts", l.backoff.Attempts(),
	)
	l.drain(ctx)
	l.setState(StateTerminated)
	return domain.ErrRetriesExhausted
}

// listenOnce connects and processes notifications until the connection
// drops or the context is cancelled. Notifications are dispatched in
// arrival order; dispatch never blocks on a slow handler.
func (l *Listener) listenOnce(ctx context.Context) error {
	source, err := l.connector.Connect(ctx)
	if err != nil {
		return &domain.ListenerError{Op: "connect", Attempt: l.backoff.Attempts(), Err: err}
	}
	defer l.connector.Disconnect(context.WithoutCancel(ctx))

	l.backoff.Reset()
	l.setState(StateListening)
	l.logger.Info("expiry listener active")

	for {
		raw, err := source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &domain.ListenerError{Op: "receive", Err: err}
		}

		if event := l.parser.Parse(raw); event != nil {
			l.dispatcher.Dispatch(event)
		}
	}
}

func (l *Listener) shutdown(ctx context.Context) {
	l.setState(StateShutdown)
	l.logger.Info("expiry listener shutting down")
	l.drain(ctx)
	l.logger.Info("expiry listener stopped")
}

// drain gives in-flight handlers a bounded window to finish; stragglers are
// cancelled when the window closes.
func (l *Listener) drain(ctx context.Context) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.drainTimeout)
	defer cancel()

	if err := l.dispatcher.Drain(drainCtx); err != nil {
		l.logger.Warn("drain timed out, cancelling in-flight handlers", "error", err)
	}
}
