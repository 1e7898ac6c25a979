// Package service wires the dispatch core from configuration: transports,
// template overrides, the defaults state, and the pipeline itself.
package service

import (
	"fmt"
	"log/slog"

	"github.com/shaharia-lab/mailroom/internal/config"
	"github.com/shaharia-lab/mailroom/internal/dispatch"
	"github.com/shaharia-lab/mailroom/internal/eventbus"
	"github.com/shaharia-lab/mailroom/internal/i18n"
	"github.com/shaharia-lab/mailroom/internal/identity"
	"github.com/shaharia-lab/mailroom/internal/template"
	"github.com/shaharia-lab/mailroom/internal/transport"
)

// Options carries the pluggable collaborators. Nil fields get default
// implementations.
type Options struct {
	Identities identity.Store
	Renderer   template.Renderer
	Translator i18n.Translator

	// Interceptors registered at startup, in invocation order.
	Modifiers []dispatch.EnvelopeModifier
	Overrides []dispatch.DeliveryOverride
}

// Core is the initialized dispatch core.
type Core struct {
	Pipeline *dispatch.Pipeline
	Registry *transport.Registry
	Defaults *dispatch.Defaults
	Bus      eventbus.EventBus
}

// Initialize builds the dispatch core from cfg. It must be called exactly
// once at startup, before any send. The fallback transport is fixed here:
// the SMTP relay when enabled, the local sendmail agent otherwise.
func Initialize(cfg *config.AppConfig, opts Options, log *slog.Logger) (*Core, error) {
	if log == nil {
		log = slog.Default()
	}

	registry := transport.NewRegistry()
	registry.Register(transport.NewSendmail(cfg.SendmailPath))
	if cfg.RelayEnabled {
		registry.Register(transport.NewSMTPRelay(transport.RelayConfig{
			Host:       cfg.RelayHost,
			Port:       cfg.RelayPort,
			Username:   cfg.RelayUsername,
			Password:   cfg.RelayPassword,
			Encryption: cfg.RelayEncryption,
		}))
		if err := registry.MarkFallback("smtp"); err != nil {
			return nil, fmt.Errorf("selecting fallback transport: %w", err)
		}
	} else {
		if err := registry.MarkFallback("sendmail"); err != nil {
			return nil, fmt.Errorf("selecting fallback transport: %w", err)
		}
	}

	overrides, err := config.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		return nil, err
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = template.NewDefaultRenderer()
	}
	identities := opts.Identities
	if identities == nil {
		identities = identity.NewMemoryStore()
	}

	defaults := dispatch.NewDefaults(cfg.SiteURL, cfg.SiteTitle, cfg.LogoPath, cfg.LogoHeight, cfg.LogoWidth)
	bus := eventbus.New(log)
	defaults.Subscribe(bus)

	pipeline := dispatch.NewPipeline(dispatch.PipelineConfig{
		Identities:    identities,
		Templates:     template.NewResolver(renderer, overrides),
		Localizer:     i18n.NewLocalizer(opts.Translator, cfg.DefaultLanguage),
		Gate:          dispatch.NewGate(opts.Modifiers, opts.Overrides),
		Registry:      registry,
		Defaults:      defaults,
		SenderAddress: cfg.SenderAddress,
		SenderName:    cfg.SenderName,
		Logger:        log,
	})

	return &Core{
		Pipeline: pipeline,
		Registry: registry,
		Defaults: defaults,
		Bus:      bus,
	}, nil
}

// Close releases the core's resources.
func (c *Core) Close() {
	c.Bus.Close()
}
