package bootstrap

import (
	"net/http"
	"sync"

	redisadapter "github.com/sashanclrp/wappa-expiry/internal/adapters/redis"
)

// AppContext exposes the host process's shared resources to expiry
// handlers. It is constructed once at startup, populated by the host,
// consumed by the bootstrap helpers, and cleared at shutdown. There is one
// instance per process, owned by the app container rather than hidden in a
// package global.
type AppContext struct {
	mu         sync.RWMutex
	httpClient *http.Client
	redis      *redisadapter.Client
}

// NewAppContext creates an empty application context.
func NewAppContext() *AppContext {
	return &AppContext{}
}

// SetHTTPClient stores the host's shared outbound HTTP client.
func (c *AppContext) SetHTTPClient(client *http.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpClient = client
}

// HTTPClient returns the shared outbound HTTP client, or nil if unset.
func (c *AppContext) HTTPClient() *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.httpClient
}

// SetRedis stores the host's shared Redis client.
func (c *AppContext) SetRedis(client *redisadapter.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.redis = client
}

// Redis returns the shared Redis client, or nil if unset.
func (c *AppContext) Redis() *redisadapter.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.redis
}

// Clear releases all references. Called during host shutdown.
func (c *AppContext) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpClient = nil
	c.redis = nil
}
