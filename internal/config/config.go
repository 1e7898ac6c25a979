// Package config loads the dispatch core configuration from environment
// variables and the optional per-deployment template overrides file.
package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port.
	Port int `envconfig:"PORT" default:"8917"`

	// LogLevel sets the minimum log level (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogDir is the log directory. Empty means stderr.
	LogDir string `envconfig:"MAILROOM_LOG_DIR"`

	// SiteURL and SiteTitle are merged into every outgoing message's params.
	SiteURL   string `envconfig:"SITE_URL" default:"http://localhost:4567"`
	SiteTitle string `envconfig:"SITE_TITLE" default:"Mailroom"`

	// SenderAddress and SenderName identify the From header of outgoing mail.
	SenderAddress string `envconfig:"SENDER_ADDRESS"`
	SenderName    string `envconfig:"SENDER_NAME"`

	// DefaultLanguage is used when neither the caller nor the recipient
	// carries a language preference.
	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"en-GB"`

	// RelayEnabled switches the fallback transport from the local sendmail
	// agent to the authenticated SMTP relay below.
	RelayEnabled    bool   `envconfig:"RELAY_ENABLED"`
	RelayHost       string `envconfig:"RELAY_HOST"`
	RelayPort       int    `envconfig:"RELAY_PORT" default:"587"`
	RelayUsername   string `envconfig:"RELAY_USERNAME"`
	RelayPassword   string `envconfig:"RELAY_PASSWORD"`
	RelayEncryption string `envconfig:"RELAY_ENCRYPTION" default:"starttls"` // "none", "starttls", "ssl_tls"

	// SendmailPath is the local mail agent binary.
	SendmailPath string `envconfig:"SENDMAIL_PATH" default:"/usr/sbin/sendmail"`

	// OverridesFile points to a YAML file mapping template base names to
	// deployment-supplied override markup. Optional.
	OverridesFile string `envconfig:"TEMPLATE_OVERRIDES_FILE"`

	// Branding logo merged into outgoing message params.
	LogoPath   string `envconfig:"LOGO_PATH"`
	LogoHeight int    `envconfig:"LOGO_HEIGHT"`
	LogoWidth  int    `envconfig:"LOGO_WIDTH"`
}

// Load reads AppConfig from environment variables using envconfig.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.SenderAddress == "" {
		c.SenderAddress = "noreply@localhost"
	}
	if c.SenderName == "" {
		c.SenderName = c.SiteTitle
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
