package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sashanclrp/wappa-expiry/internal/actions"
	redisadapter "github.com/sashanclrp/wappa-expiry/internal/adapters/redis"
	"github.com/sashanclrp/wappa-expiry/internal/bootstrap"
	"github.com/sashanclrp/wappa-expiry/internal/config"
	"github.com/sashanclrp/wappa-expiry/internal/expiry"
	"github.com/sashanclrp/wappa-expiry/internal/logging"
)

// App is the main application container. It owns the single per-process
// registry and application context and wires the expiry listener together.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	appCtx   *bootstrap.AppContext
	registry *expiry.Registry
	listener *expiry.Listener
}

// Options configures the App.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Redis is the shared client handed to bootstrap helpers. The listener
	// opens its own exclusive connection and does not use it.
	Redis *redisadapter.Client
	// HTTPClient is the shared outbound session exposed to handlers.
	HTTPClient *http.Client
}

// New creates an App with all dependencies injected and the built-in
// actions registered.
func New(opts Options) (*App, error) {
	appCtx := bootstrap.NewAppContext()
	appCtx.SetHTTPClient(opts.HTTPClient)
	appCtx.SetRedis(opts.Redis)

	registry := expiry.NewRegistry(logging.WithComponent(opts.Logger, "registry"))

	err := actions.RegisterAll(registry, actions.Deps{
		AppCtx: appCtx,
		Config: opts.Config,
		Logger: logging.WithComponent(opts.Logger, "actions"),
	})
	if err != nil {
		return nil, err
	}

	listener := expiry.NewListener(expiry.ListenerOptions{
		Connector: expiry.NewConnManager(opts.Config.Redis,
			logging.WithComponent(opts.Logger, "connection")),
		Parser: expiry.NewParser(registry,
			logging.WithComponent(opts.Logger, "parser")),
		Dispatcher: expiry.NewDispatcher(expiry.DispatcherConfig{
			MaxConcurrent: opts.Config.Listener.MaxConcurrentHandlers,
		}, logging.WithComponent(opts.Logger, "dispatcher")),
		Backoff: expiry.NewBackoff(expiry.BackoffConfig{
			BaseDelay:   opts.Config.Listener.ReconnectBaseDelay,
			MaxDelay:    opts.Config.Listener.ReconnectMaxDelay,
			MaxAttempts: opts.Config.Listener.MaxReconnectAttempts,
		}, logging.WithComponent(opts.Logger, "backoff")),
		Logger:       logging.WithComponent(opts.Logger, "listener"),
		DrainTimeout: opts.Config.Listener.DrainTimeout,
	})

	return &App{
		cfg:      opts.Config,
		logger:   opts.Logger,
		appCtx:   appCtx,
		registry: registry,
		listener: listener,
	}, nil
}

// Registry returns the process-wide handler registry so hosts can register
// additional actions before Run.
func (a *App) Registry() *expiry.Registry {
	return a.registry
}

// Context returns the application context consumed by bootstrap helpers.
func (a *App) Context() *bootstrap.AppContext {
	return a.appCtx
}

// Run executes the expiry listener until the context is cancelled or the
// reconnection budget is exhausted.
func (a *App) Run(ctx context.Context) error {
	defer a.appCtx.Clear()

	a.logger.Info("starting expiry scheduler", "actions", a.registry.Actions())
	return a.listener.Run(ctx)
}
