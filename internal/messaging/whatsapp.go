package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhatsAppConfig holds WhatsApp Business API configuration for one tenant.
type WhatsAppConfig struct {
	APIEndpoint   string        // e.g. "https://graph.facebook.com/v18.0"
	PhoneNumberID string        // tenant's WhatsApp Business phone number ID
	ClientID      string        // OAuth2 client ID for STS
	ClientSecret  string        // OAuth2 client secret for STS
	STSEndpoint   string        // STS token endpoint URL
	Timeout       time.Duration // per-request timeout
	MaxRetries    int           // maximum retry attempts
	RetryDelay    time.Duration // delay between retries
}

// WhatsAppClient sends messages via the WhatsApp Business API. It reuses
// the host-provided HTTP client so expiry handlers share the process-wide
// connection pool.
type WhatsAppClient struct {
	config     WhatsAppConfig
	httpClient *http.Client
	stsClient  *STSClient
}

// NewWhatsAppClient creates a WhatsApp API client on top of a shared
// HTTP client.
func NewWhatsAppClient(config WhatsAppConfig, httpClient *http.Client) *WhatsAppClient {
	return &WhatsAppClient{
		config:     config,
		httpClient: httpClient,
		stsClient: NewSTSClient(STSConfig{
			Endpoint:     config.STSEndpoint,
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
		}, httpClient),
	}
}

// TextMessage is a WhatsApp text message request.
type TextMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	RecipientType    string       `json:"recipient_type"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             *TextContent `json:"text,omitempty"`
}

// TextContent is the body of a text message.
type TextContent struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// SendResponse is the API response for a successful send.
type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// APIError is an error response from the WhatsApp Business API.
type APIError struct {
	ErrorInfo struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FBTraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: %s (code: %d, type: %s, trace: %s)",
		e.ErrorInfo.Message, e.ErrorInfo.Code, e.ErrorInfo.Type, e.ErrorInfo.FBTraceID)
}

// SendText sends a text message with retries. Client errors (4xx) are not
// retried.
func (c *WhatsAppClient) SendText(ctx context.Context, to, body string) (*SendResponse, error) {
	message := TextMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text: &TextContent{
			PreviewURL: false,
			Body:       body,
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.config.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.sendRequest(ctx, message)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.ErrorInfo.Code >= 400 && apiErr.ErrorInfo.Code < 500 {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", c.config.MaxRetries, lastErr)
}

func (c *WhatsAppClient) sendRequest(ctx context.Context, message TextMessage) (*SendResponse, error) {
	accessToken, err := c.stsClient.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}

	body, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.config.APIEndpoint, c.config.PhoneNumberID)

	reqCtx := ctx
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr APIError
		if err := json.Unmarshal(respBody, &apiErr); err != nil {
			return nil, fmt.Errorf("whatsapp api error (status %d): %s", resp.StatusCode, string(respBody))
		}
		return nil, &apiErr
	}

	var sendResp SendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &sendResp, nil
}
