package dispatch

import (
	"strconv"
	"sync"

	"github.com/shaharia-lab/mailroom/internal/eventbus"
)

// Defaults is the process-wide baseline merged under every outgoing
// message's params: site URL, branding, logo dimensions. It is initialized
// once at startup and refreshed through configuration-change events; reads
// observe either the pre- or post-update field set in full.
type Defaults struct {
	mu         sync.RWMutex
	siteURL    string
	siteTitle  string
	logoPath   string
	logoHeight int
	logoWidth  int
}

// NewDefaults creates the baseline state.
func NewDefaults(siteURL, siteTitle, logoPath string, logoHeight, logoWidth int) *Defaults {
	return &Defaults{
		siteURL:    siteURL,
		siteTitle:  siteTitle,
		logoPath:   logoPath,
		logoHeight: logoHeight,
		logoWidth:  logoWidth,
	}
}

// Subscribe registers the defaults state on the configuration-change bus.
// The bus delivers events one at a time, so updates are never applied
// concurrently with one another.
func (d *Defaults) Subscribe(bus eventbus.EventBus) {
	bus.Subscribe(func(e eventbus.Event) {
		if e.Type != eventbus.TypeConfigChanged {
			return
		}
		d.apply(e.Payload)
	})
}

func (d *Defaults) apply(payload map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := payload[eventbus.KeyLogoPath]; ok {
		d.logoPath = v
	}
	if v, ok := payload[eventbus.KeyLogoHeight]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			d.logoHeight = n
		}
	}
	if v, ok := payload[eventbus.KeyLogoWidth]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			d.logoWidth = n
		}
	}
}

// Snapshot returns a copy of the baseline fields as a param map.
func (d *Defaults) Snapshot() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return map[string]any{
		"site_url":    d.siteURL,
		"site_title":  d.siteTitle,
		"logo_path":   d.logoPath,
		"logo_height": d.logoHeight,
		"logo_width":  d.logoWidth,
	}
}

// MergeUnder returns the baseline merged shallowly under params: caller
// values win on key collisions. params is not mutated.
func (d *Defaults) MergeUnder(params map[string]any) map[string]any {
	merged := d.Snapshot()
	for k, v := range params {
		merged[k] = v
	}
	return merged
}
