package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// tokenRefreshBuffer is how long before expiry a cached token is refreshed.
const tokenRefreshBuffer = 60 * time.Second

// STSConfig holds OAuth2 client-credentials configuration.
type STSConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
}

type stsTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
}

type stsTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// STSClient acquires and caches OAuth2 access tokens.
type STSClient struct {
	config     STSConfig
	httpClient *http.Client

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// NewSTSClient creates an STS client using a shared HTTP client.
func NewSTSClient(config STSConfig, httpClient *http.Client) *STSClient {
	return &STSClient{
		config:     config,
		httpClient: httpClient,
	}
}

// GetToken returns a valid access token, fetching a new one when the
// cached token is within the refresh buffer of expiring.
func (c *STSClient) GetToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if time.Now().Before(c.expiresAt.Add(-tokenRefreshBuffer)) {
		token := c.token
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if time.Now().Before(c.expiresAt.Add(-tokenRefreshBuffer)) {
		return c.token, nil
	}

	token, expiresIn, err := c.fetchToken(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch token from STS: %w", err)
	}

	c.token = token
	c.expiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)

	return token, nil
}

func (c *STSClient) fetchToken(ctx context.Context) (string, int, error) {
	body, err := json.Marshal(stsTokenRequest{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		GrantType:    "client_credentials",
	})
	if err != nil {
		return "", 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("sts error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var tokenResp stsTokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return "", 0, fmt.Errorf("unmarshal response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return "", 0, fmt.Errorf("sts returned empty access token")
	}

	return tokenResp.AccessToken, tokenResp.ExpiresIn, nil
}
