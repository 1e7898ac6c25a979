package dispatch_test

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/mailroom/internal/dispatch"
	"github.com/shaharia-lab/mailroom/internal/i18n"
	"github.com/shaharia-lab/mailroom/internal/template"
	"github.com/shaharia-lab/mailroom/internal/transport"
)

// --- stub collaborators ---

type stubIdentity struct {
	address string
	lang    string
	err     error
}

func (s *stubIdentity) Address(_ context.Context, _ string) (string, bool, error) {
	return s.address, s.address != "", s.err
}

func (s *stubIdentity) Language(_ context.Context, _ string) (string, bool, error) {
	return s.lang, s.lang != "", s.err
}

type stubRenderer struct {
	calls int
	html  string
	err   error
	last  map[string]any
}

func (r *stubRenderer) Render(_ context.Context, _ string, params map[string]any) (string, error) {
	r.calls++
	r.last = params
	return r.html, r.err
}

type fakeTransport struct {
	name  string
	sends []transport.Message
	err   error
}

func (f *fakeTransport) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeTransport) Send(_ context.Context, msg transport.Message) error {
	f.sends = append(f.sends, msg)
	return f.err
}

type modifierFunc func(ctx context.Context, env *dispatch.Envelope) (*dispatch.Envelope, error)

func (f modifierFunc) Modify(ctx context.Context, env *dispatch.Envelope) (*dispatch.Envelope, error) {
	return f(ctx, env)
}

type overrideRecorder struct {
	mu        sync.Mutex
	envelopes []*dispatch.Envelope
	err       error
}

func (o *overrideRecorder) Deliver(_ context.Context, env *dispatch.Envelope) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.envelopes = append(o.envelopes, env)
	return o.err
}

func (o *overrideRecorder) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.envelopes)
}

// --- harness ---

type harness struct {
	identities *stubIdentity
	renderer   *stubRenderer
	fallback   *fakeTransport
	overrides  map[string]string
	modifiers  []dispatch.EnvelopeModifier
	override   []dispatch.DeliveryOverride
}

func (h *harness) pipeline(t *testing.T) *dispatch.Pipeline {
	t.Helper()
	registry := transport.NewRegistry()
	registry.Register(h.fallback)
	require.NoError(t, registry.MarkFallback(h.fallback.Name()))

	return dispatch.NewPipeline(dispatch.PipelineConfig{
		Identities:    h.identities,
		Templates:     template.NewResolver(h.renderer, h.overrides),
		Localizer:     i18n.NewLocalizer(i18n.Noop{}, "en"),
		Gate:          dispatch.NewGate(h.modifiers, h.override),
		Registry:      registry,
		Defaults:      dispatch.NewDefaults("http://example.com", "Example", "", 0, 0),
		SenderAddress: "noreply@example.com",
		SenderName:    "Example",
	})
}

func newHarness() *harness {
	return &harness{
		identities: &stubIdentity{address: "a@x.com", lang: "fr"},
		renderer:   &stubRenderer{html: "<p>Hi</p>"},
		fallback:   &fakeTransport{},
	}
}

// --- tests ---

func TestSendToIdentity_RenderThrough(t *testing.T) {
	h := newHarness()
	p := h.pipeline(t)

	outcome, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", nil)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusDelivered, outcome.Status)

	require.Len(t, h.fallback.sends, 1)
	msg := h.fallback.sends[0]
	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, "<p>Hi</p>", msg.HTML)
	assert.Equal(t, "Hi", msg.Text)
	assert.Equal(t, "noreply@example.com", msg.From)
}

func TestSendToIdentity_NoAddressSkips(t *testing.T) {
	h := newHarness()
	h.identities.address = ""
	p := h.pipeline(t)

	outcome, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", nil)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusSkipped, outcome.Status)

	// Zero calls to render or transport collaborators.
	assert.Zero(t, h.renderer.calls)
	assert.Empty(t, h.fallback.sends)
}

func TestSendToAddress_OverrideCompiled(t *testing.T) {
	h := newHarness()
	h.overrides = map[string]string{"welcome": "Hello {{.name}}"}
	p := h.pipeline(t)

	outcome, err := p.SendToAddress(context.Background(), "welcome", "a@x.com", "", map[string]any{"name": "Sam"})
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusDelivered, outcome.Status)

	// The external renderer is never invoked when an override is registered.
	assert.Zero(t, h.renderer.calls)
	require.Len(t, h.fallback.sends, 1)
	assert.Equal(t, "Hello Sam", h.fallback.sends[0].HTML)
}

func TestDeliveryOverride_SkipsFallback(t *testing.T) {
	h := newHarness()
	rec := &overrideRecorder{}
	h.override = []dispatch.DeliveryOverride{rec}
	p := h.pipeline(t)

	outcome, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", nil)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusDelivered, outcome.Status)

	// The fallback transport must never be invoked for this send.
	assert.Empty(t, h.fallback.sends)
	require.Len(t, rec.envelopes, 1)
	assert.Equal(t, "a@x.com", rec.envelopes[0].To)
	assert.Equal(t, "Hi", rec.envelopes[0].Text)
}

func TestDeliveryOverrideFailure_NoFallbackRetry(t *testing.T) {
	h := newHarness()
	h.override = []dispatch.DeliveryOverride{&overrideRecorder{err: errors.New("provider down")}}
	p := h.pipeline(t)

	outcome, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dispatch.ErrInterception)
	assert.Equal(t, dispatch.StatusFailed, outcome.Status)
	assert.Empty(t, h.fallback.sends)
}

func TestFallbackInvokedExactlyOnce(t *testing.T) {
	h := newHarness()
	p := h.pipeline(t)

	_, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", nil)
	require.NoError(t, err)
	assert.Len(t, h.fallback.sends, 1)
}

func TestTransportNotFound_MapsToAgentUnavailable(t *testing.T) {
	h := newHarness()
	h.fallback.err = &exec.Error{Name: "sendmail", Err: exec.ErrNotFound}
	p := h.pipeline(t)

	outcome, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrAgentUnavailable)
	assert.Equal(t, dispatch.StatusFailed, outcome.Status)
}

func TestTransportFailure_PropagatesDetail(t *testing.T) {
	h := newHarness()
	h.fallback.err = errors.New("550 mailbox rejected")
	p := h.pipeline(t)

	_, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dispatch.ErrSendFailed)
	assert.NotErrorIs(t, err, transport.ErrAgentUnavailable)
	assert.Contains(t, err.Error(), "550 mailbox rejected")
}

func TestRenderError_Propagates(t *testing.T) {
	h := newHarness()
	h.renderer.err = errors.New("missing block")
	p := h.pipeline(t)

	outcome, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, template.ErrRender)
	assert.Equal(t, dispatch.StatusFailed, outcome.Status)
	assert.Empty(t, h.fallback.sends)
}

func TestModifier_MutatesEnvelope(t *testing.T) {
	h := newHarness()
	h.modifiers = []dispatch.EnvelopeModifier{
		modifierFunc(func(_ context.Context, env *dispatch.Envelope) (*dispatch.Envelope, error) {
			env.Subject = "[urgent] " + env.Subject
			return env, nil
		}),
	}
	p := h.pipeline(t)

	_, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", map[string]any{"subject": "Welcome"})
	require.NoError(t, err)
	require.Len(t, h.fallback.sends, 1)
	assert.Equal(t, "[urgent] Welcome", h.fallback.sends[0].Subject)
}

func TestModifierFailure(t *testing.T) {
	h := newHarness()
	h.modifiers = []dispatch.EnvelopeModifier{
		modifierFunc(func(_ context.Context, _ *dispatch.Envelope) (*dispatch.Envelope, error) {
			return nil, errors.New("bad listener")
		}),
	}
	p := h.pipeline(t)

	_, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dispatch.ErrInterception)
	assert.Empty(t, h.fallback.sends)
}

func TestDefaultsMergedUnderParams(t *testing.T) {
	h := newHarness()
	p := h.pipeline(t)

	_, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", map[string]any{
		"site_title": "Caller Title",
	})
	require.NoError(t, err)

	// The renderer sees the merged bag: defaults beneath caller params.
	assert.Equal(t, "http://example.com", h.renderer.last["site_url"])
	assert.Equal(t, "Caller Title", h.renderer.last["site_title"])
}

func TestSendViaFallback_Direct(t *testing.T) {
	h := newHarness()
	p := h.pipeline(t)

	env := &dispatch.Envelope{
		To:      "direct@x.com",
		From:    "noreply@example.com",
		Subject: "direct",
		HTML:    "<p>direct</p>",
		Text:    "direct",
	}
	outcome, err := p.SendViaFallback(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusDelivered, outcome.Status)
	require.Len(t, h.fallback.sends, 1)
	assert.Equal(t, "direct@x.com", h.fallback.sends[0].To)
}

func TestSubjectLocalized(t *testing.T) {
	h := newHarness()
	p := h.pipeline(t)

	_, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", map[string]any{"subject": "Welcome"})
	require.NoError(t, err)
	require.Len(t, h.fallback.sends, 1)
	// Noop translator echoes the raw subject key.
	assert.Equal(t, "Welcome", h.fallback.sends[0].Subject)
}

func TestDispatch_FireAndForget(t *testing.T) {
	h := newHarness()
	rec := &overrideRecorder{}
	h.override = []dispatch.DeliveryOverride{rec}

	p := h.pipeline(t)
	p.Dispatch("welcome", "uid-1", nil)

	assert.Eventually(t, func() bool {
		return rec.count() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestIdentityLookupError(t *testing.T) {
	h := newHarness()
	h.identities.err = errors.New("store offline")
	p := h.pipeline(t)

	outcome, err := p.SendToIdentity(context.Background(), "welcome", "uid-1", nil)
	require.Error(t, err)
	assert.Equal(t, dispatch.StatusFailed, outcome.Status)
	assert.Zero(t, h.renderer.calls)
}
