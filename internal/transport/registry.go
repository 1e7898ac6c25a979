package transport

import (
	"context"
	"fmt"
)

// Registry holds named transports and designates one as the fallback used
// when no delivery override claims a send. It is populated at startup and
// read-only afterwards; no locking is required on the read path.
type Registry struct {
	transports map[string]Transport
	fallback   Transport
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{transports: map[string]Transport{}}
}

// Register adds a transport under its name, replacing any previous entry.
func (r *Registry) Register(t Transport) {
	r.transports[t.Name()] = t
}

// Get returns the named transport, if registered.
func (r *Registry) Get(name string) (Transport, bool) {
	t, ok := r.transports[name]
	return t, ok
}

// MarkFallback designates a registered transport as the fallback.
func (r *Registry) MarkFallback(name string) error {
	t, ok := r.transports[name]
	if !ok {
		return fmt.Errorf("transport %q not registered", name)
	}
	r.fallback = t
	return nil
}

// Fallback returns the fallback transport. When none was configured it
// returns a transport whose Send always fails with ErrAgentUnavailable, so
// misconfiguration surfaces at send time rather than at startup.
func (r *Registry) Fallback() Transport {
	if r.fallback == nil {
		return unavailable{}
	}
	return r.fallback
}

type unavailable struct{}

func (unavailable) Name() string { return "none" }

func (unavailable) Send(_ context.Context, _ Message) error {
	return ErrAgentUnavailable
}
