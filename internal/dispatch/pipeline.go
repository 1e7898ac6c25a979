package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shaharia-lab/mailroom/internal/i18n"
	"github.com/shaharia-lab/mailroom/internal/identity"
	"github.com/shaharia-lab/mailroom/internal/metrics"
	"github.com/shaharia-lab/mailroom/internal/plaintext"
	"github.com/shaharia-lab/mailroom/internal/template"
	"github.com/shaharia-lab/mailroom/internal/transport"
)

// dispatchTimeout bounds a fire-and-forget send.
const dispatchTimeout = 30 * time.Second

// PipelineConfig wires the pipeline's collaborators and sender identity.
// Identities, Templates, Localizer, Registry, and Defaults must all be set;
// the composition root populates them. Gate and Logger are optional and
// default to an empty gate and slog.Default.
type PipelineConfig struct {
	Identities identity.Store
	Templates  *template.Resolver
	Localizer  *i18n.Localizer
	Gate       *Gate
	Registry   *transport.Registry
	Defaults   *Defaults

	SenderAddress string
	SenderName    string

	Logger *slog.Logger
}

// Pipeline orchestrates identity resolution, rendering, localization,
// envelope assembly, interception, and transport delivery.
type Pipeline struct {
	identities identity.Store
	templates  *template.Resolver
	localizer  *i18n.Localizer
	gate       *Gate
	registry   *transport.Registry
	defaults   *Defaults
	senderAddr string
	senderName string
	log        *slog.Logger
}

// NewPipeline creates a Pipeline from cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	gate := cfg.Gate
	if gate == nil {
		gate = NewGate(nil, nil)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		identities: cfg.Identities,
		templates:  cfg.Templates,
		localizer:  cfg.Localizer,
		gate:       gate,
		registry:   cfg.Registry,
		defaults:   cfg.Defaults,
		senderAddr: cfg.SenderAddress,
		senderName: cfg.SenderName,
		log:        log,
	}
}

// SendToIdentity resolves the recipient's contact address and language
// preference, then dispatches. A recipient with no contact address is a
// successful skip, not a failure: no rendering and no transport call happen.
func (p *Pipeline) SendToIdentity(ctx context.Context, templateName, recipientID string, params map[string]any) (Outcome, error) {
	var (
		address string
		hasAddr bool
		pref    string
	)

	// Address and language preference are independent lookups.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		address, hasAddr, err = p.identities.Address(gctx, recipientID)
		return err
	})
	g.Go(func() error {
		var err error
		pref, _, err = p.identities.Language(gctx, recipientID)
		return err
	})
	if err := g.Wait(); err != nil {
		err = fmt.Errorf("resolving recipient %q: %w", recipientID, err)
		return failed(err), err
	}

	if !hasAddr {
		p.log.Info("recipient has no contact address, skipping",
			"template", templateName, "recipient", recipientID)
		metrics.DispatchSkipped.Inc()
		return skipped(), nil
	}

	return p.send(ctx, templateName, address, "", pref, recipientID, params)
}

// SendToAddress dispatches to a known destination, bypassing identity lookup.
// lang may be empty; the configured default language then applies.
func (p *Pipeline) SendToAddress(ctx context.Context, templateName, address, lang string, params map[string]any) (Outcome, error) {
	return p.send(ctx, templateName, address, lang, "", "", params)
}

// Dispatch is the fire-and-forget form: the send proceeds in the background
// with its own timeout and the outcome is logged, not returned. A caller
// that moves on does not halt in-flight work.
func (p *Pipeline) Dispatch(templateName, recipientID string, params map[string]any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		outcome, err := p.SendToIdentity(ctx, templateName, recipientID, params)
		if err != nil {
			p.log.Error("background dispatch failed",
				"template", templateName, "recipient", recipientID, "error", err)
			return
		}
		p.log.Debug("background dispatch finished",
			"template", templateName, "recipient", recipientID, "status", string(outcome.Status))
	}()
}

func (p *Pipeline) send(ctx context.Context, templateName, address, lang, pref, recipientID string, params map[string]any) (Outcome, error) {
	lang = p.localizer.ResolveLanguage(lang, pref)
	merged := p.defaults.MergeUnder(params)

	subjectKey := stringParam(merged, "subject")
	if subjectKey == "" {
		subjectKey = template.BaseName(templateName)
	}

	// Subject and body render independently.
	var subject, html string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		subject = p.localizer.Localize(subjectKey, lang)
		return nil
	})
	g.Go(func() error {
		rendered, err := p.templates.Resolve(gctx, templateName, merged)
		if err != nil {
			return err
		}
		html = p.localizer.Localize(rendered, lang)
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.RenderFailures.Inc()
		p.log.Error("template render failed", "template", templateName, "error", err)
		return failed(err), err
	}

	text, err := plaintext.FromHTML(html)
	if err != nil {
		err = fmt.Errorf("deriving plaintext for %q: %w", templateName, err)
		return failed(err), err
	}

	env := &Envelope{
		To:       address,
		From:     p.senderAddr,
		FromName: p.senderName,
		Subject:  subject,
		HTML:     html,
		Text:     text,
		Template: templateName,
		Correlation: Correlation{
			DispatchID:   uuid.NewString(),
			RecipientID:  recipientID,
			RelatedPost:  stringParam(merged, "post_id"),
			ActingUserID: stringParam(merged, "acting_user_id"),
		},
		Params: merged,
	}

	env, err = p.gate.Modify(ctx, env)
	if err != nil {
		p.log.Error("envelope modifier failed", "template", templateName, "error", err)
		return failed(err), err
	}

	if p.gate.HasOverride() {
		if err := p.gate.Override(ctx, env); err != nil {
			p.log.Error("delivery override failed", "template", templateName, "error", err)
			return failed(err), err
		}
		p.log.Info("message delivered by override",
			"template", templateName, "to", env.To, "dispatch_id", env.Correlation.DispatchID)
		return delivered(), nil
	}

	return p.SendViaFallback(ctx, env)
}

// SendViaFallback delivers the envelope through the registry's fallback
// transport, normalizing the terminal error. Exported so delivery overrides
// and tests can force fallback delivery directly.
func (p *Pipeline) SendViaFallback(ctx context.Context, env *Envelope) (Outcome, error) {
	t := p.registry.Fallback()

	if err := t.Send(ctx, env.Message()); err != nil {
		err = normalizeTransportErr(err)
		metrics.MailFailed.WithLabelValues(t.Name()).Inc()
		p.log.Error("transport delivery failed",
			"transport", t.Name(), "template", env.Template, "to", env.To, "error", err)
		return failed(err), err
	}

	metrics.MailDelivered.WithLabelValues(t.Name()).Inc()
	p.log.Info("message delivered",
		"transport", t.Name(), "template", env.Template, "to", env.To,
		"dispatch_id", env.Correlation.DispatchID)
	return delivered(), nil
}

// normalizeTransportErr remaps "binary/resource not found" failures to the
// user-facing agent-unavailable kind regardless of the transport's native
// error shape. Anything else keeps its original detail.
func normalizeTransportErr(err error) error {
	if errors.Is(err, transport.ErrAgentUnavailable) {
		return err
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", transport.ErrAgentUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrSendFailed, err)
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
