package messaging

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashanclrp/wappa-expiry/internal/config"
)

// Messenger is a tenant-bound WhatsApp messenger. It implements
// ports.Messenger; the tenant doubles as the Business API phone number ID.
type Messenger struct {
	tenant string
	client *WhatsAppClient
}

// NewMessenger builds a messenger for a tenant on top of the shared HTTP
// client. STS credentials come from Secrets Manager when cfg.SecretName is
// set, otherwise from the config values directly.
func NewMessenger(ctx context.Context, cfg config.WhatsAppConfig, tenant string, httpClient *http.Client) (*Messenger, error) {
	if tenant == "" {
		return nil, errors.New("tenant is required")
	}

	clientID, clientSecret := cfg.ClientID, cfg.ClientSecret
	if cfg.SecretName != "" {
		sm, err := NewSecretsManagerClient(ctx)
		if err != nil {
			return nil, err
		}
		secret, err := sm.GetSTSSecret(ctx, cfg.SecretName)
		if err != nil {
			return nil, err
		}
		clientID, clientSecret = secret.ClientID, secret.ClientSecret
	}

	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("sts credentials missing for tenant %s", tenant)
	}

	client := NewWhatsAppClient(WhatsAppConfig{
		APIEndpoint:   cfg.APIEndpoint,
		PhoneNumberID: tenant,
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		STSEndpoint:   cfg.STSEndpoint,
		Timeout:       cfg.Timeout,
		MaxRetries:    cfg.MaxRetries,
		RetryDelay:    cfg.RetryDelay,
	}, httpClient)

	return &Messenger{tenant: tenant, client: client}, nil
}

// SendText sends a plain text message to a recipient.
func (m *Messenger) SendText(ctx context.Context, to, body string) error {
	_, err := m.client.SendText(ctx, to, body)
	return err
}

// Tenant returns the tenant this messenger is bound to.
func (m *Messenger) Tenant() string {
	return m.tenant
}
