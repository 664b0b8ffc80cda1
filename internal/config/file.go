package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML overlay schema. Only fields present in the file
// override the env-derived configuration.
type fileConfig struct {
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       *int   `yaml:"db"`
	} `yaml:"redis"`
	Listener struct {
		ReconnectBaseDelay    string `yaml:"reconnect_base_delay"`
		ReconnectMaxDelay     string `yaml:"reconnect_max_delay"`
		MaxReconnectAttempts  *int   `yaml:"max_reconnect_attempts"`
		MaxConcurrentHandlers *int   `yaml:"max_concurrent_handlers"`
		DrainTimeout          string `yaml:"drain_timeout"`
	} `yaml:"listener"`
	WhatsApp struct {
		APIEndpoint string `yaml:"api_endpoint"`
		STSEndpoint string `yaml:"sts_endpoint"`
		SecretName  string `yaml:"secret_name"`
	} `yaml:"whatsapp"`
}

// applyFile overlays settings from a YAML file onto the configuration.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Redis.Addr != "" {
		c.Redis.Addr = fc.Redis.Addr
	}
	if fc.Redis.Password != "" {
		c.Redis.Password = fc.Redis.Password
	}
	if fc.Redis.DB != nil {
		c.Redis.DB = *fc.Redis.DB
	}

	if err := overlayDuration(&c.Listener.ReconnectBaseDelay, fc.Listener.ReconnectBaseDelay, "listener.reconnect_base_delay"); err != nil {
		return err
	}
	if err := overlayDuration(&c.Listener.ReconnectMaxDelay, fc.Listener.ReconnectMaxDelay, "listener.reconnect_max_delay"); err != nil {
		return err
	}
	if err := overlayDuration(&c.Listener.DrainTimeout, fc.Listener.DrainTimeout, "listener.drain_timeout"); err != nil {
		return err
	}
	if fc.Listener.MaxReconnectAttempts != nil {
		c.Listener.MaxReconnectAttempts = *fc.Listener.MaxReconnectAttempts
	}
	if fc.Listener.MaxConcurrentHandlers != nil {
		c.Listener.MaxConcurrentHandlers = *fc.Listener.MaxConcurrentHandlers
	}

	if fc.WhatsApp.APIEndpoint != "" {
		c.WhatsApp.APIEndpoint = fc.WhatsApp.APIEndpoint
	}
	if fc.WhatsApp.STSEndpoint != "" {
		c.WhatsApp.STSEndpoint = fc.WhatsApp.STSEndpoint
	}
	if fc.WhatsApp.SecretName != "" {
		c.WhatsApp.SecretName = fc.WhatsApp.SecretName
	}

	return nil
}

func overlayDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", field, err)
	}
	*dst = d
	return nil
}
