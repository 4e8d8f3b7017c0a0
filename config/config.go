package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration for an inventory run.
type Config struct {
	Version    string   `yaml:"version"`
	Regions    []string `yaml:"regions"`
	MemberRole string   `yaml:"member_role"`

	Delivery Delivery `yaml:"delivery"`
	Offload  Offload  `yaml:"offload,omitempty"`
	Retry    Retry    `yaml:"retry,omitempty"`

	// CallTimeout bounds every single upstream call (directory lookup,
	// delegation, per-kind collection page, delivery).
	CallTimeout time.Duration `yaml:"call_timeout,omitempty"`
}

// Supported delivery transports.
const (
	TransportSES  = "ses"
	TransportSMTP = "smtp"
)

// Delivery configures how the packaged artifacts reach the requester.
type Delivery struct {
	Sender  string `yaml:"sender"`
	ReplyTo string `yaml:"reply_to,omitempty"`

	// Transport is TransportSES or TransportSMTP.
	Transport string `yaml:"transport,omitempty"`

	// SMTPEndpoint and SMTPSecretARN are only used by the smtp transport.
	// The secret holds the SMTP username and password as JSON.
	SMTPEndpoint  string `yaml:"smtp_endpoint,omitempty"`
	SMTPSecretARN string `yaml:"smtp_secret_arn,omitempty"`

	// MaxAttachmentBytes is the per-artifact size ceiling. Artifacts at or
	// under the ceiling are attached directly; anything larger goes through
	// the offload path. Tuned below the SES 40MB message limit.
	MaxAttachmentBytes int64 `yaml:"max_attachment_bytes,omitempty"`
}

// Offload configures the blob store used for oversize artifacts.
type Offload struct {
	Bucket    string        `yaml:"bucket,omitempty"`
	Prefix    string        `yaml:"prefix,omitempty"`
	URLExpiry time.Duration `yaml:"url_expiry,omitempty"`
}

// Retry bounds retry behavior for throttled upstream calls.
type Retry struct {
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
	BaseDelay   time.Duration `yaml:"base_delay,omitempty"`
}

// LoadConfig loads configuration from file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every optional field defaulted,
// suitable for tests and for callers that configure programmatically.
func Default() *Config {
	cfg := &Config{
		Version:    "v1",
		Regions:    []string{"us-east-1"},
		MemberRole: "ResourceReadRole",
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.Regions) == 0 {
		c.Regions = []string{"us-east-1"}
	}
	if c.MemberRole == "" {
		c.MemberRole = "ResourceReadRole"
	}
	if c.Delivery.Transport == "" {
		c.Delivery.Transport = TransportSES
	}
	if c.Delivery.MaxAttachmentBytes == 0 {
		c.Delivery.MaxAttachmentBytes = 35 * 1024 * 1024
	}
	if c.Offload.Prefix == "" {
		c.Offload.Prefix = "inventory"
	}
	if c.Offload.URLExpiry == 0 {
		c.Offload.URLExpiry = 72 * time.Hour
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = time.Second
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = 60 * time.Second
	}
}

// Validate ensures config has required fields.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.Delivery.Sender == "" {
		return fmt.Errorf("delivery.sender is required")
	}
	switch c.Delivery.Transport {
	case TransportSES:
	case TransportSMTP:
		if c.Delivery.SMTPEndpoint == "" {
			return fmt.Errorf("delivery.smtp_endpoint is required for smtp transport")
		}
		if c.Delivery.SMTPSecretARN == "" {
			return fmt.Errorf("delivery.smtp_secret_arn is required for smtp transport")
		}
	default:
		return fmt.Errorf("unknown delivery transport %q", c.Delivery.Transport)
	}
	if c.Delivery.MaxAttachmentBytes < 0 {
		return fmt.Errorf("delivery.max_attachment_bytes must be positive")
	}
	return nil
}
