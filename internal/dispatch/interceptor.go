package dispatch

import (
	"context"
	"fmt"
)

// EnvelopeModifier is given every envelope after assembly and before the
// delivery decision. It may return an altered envelope; the pipeline
// continues with whatever is returned.
type EnvelopeModifier interface {
	Modify(ctx context.Context, env *Envelope) (*Envelope, error)
}

// DeliveryOverride takes over delivery entirely. When one is registered the
// pipeline's own transport logic is skipped and the override is responsible
// for the terminal outcome.
type DeliveryOverride interface {
	Deliver(ctx context.Context, env *Envelope) error
}

// Gate holds the interceptors registered at startup, in invocation order.
type Gate struct {
	modifiers []EnvelopeModifier
	overrides []DeliveryOverride
}

// NewGate creates a Gate. Both arguments may be nil.
func NewGate(modifiers []EnvelopeModifier, overrides []DeliveryOverride) *Gate {
	return &Gate{modifiers: modifiers, overrides: overrides}
}

// Modify runs all registered modifiers in order. With none registered it is
// a pass-through.
func (g *Gate) Modify(ctx context.Context, env *Envelope) (*Envelope, error) {
	for _, m := range g.modifiers {
		next, err := m.Modify(ctx, env)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInterception, err)
		}
		if next != nil {
			env = next
		}
	}
	return env, nil
}

// HasOverride reports whether a delivery override is registered.
func (g *Gate) HasOverride() bool { return len(g.overrides) > 0 }

// Override hands the envelope to the first registered delivery override.
func (g *Gate) Override(ctx context.Context, env *Envelope) error {
	if err := g.overrides[0].Deliver(ctx, env); err != nil {
		return fmt.Errorf("%w: %v", ErrInterception, err)
	}
	return nil
}
