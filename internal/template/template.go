// Package template resolves a logical template name to rendered HTML. A
// deployment-supplied override, keyed by the template's base name, takes
// precedence over the external renderer; the two paths are substitutes, not
// fallbacks — a failure on either propagates.
package template

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htemplate "html/template"
	"strings"
)

// NamespacePrefix is the template-namespace prefix stripped to obtain the
// base name used for override lookup.
const NamespacePrefix = "emails/"

// ErrRender marks template compilation or rendering failures.
var ErrRender = errors.New("template: render failed")

// Renderer is the external collaborator that produces default template HTML.
type Renderer interface {
	Render(ctx context.Context, name string, params map[string]any) (string, error)
}

// Resolver decides between a deployment override and the external renderer.
type Resolver struct {
	renderer  Renderer
	overrides map[string]string // base name → override markup
}

// NewResolver creates a Resolver. overrides may be nil.
func NewResolver(renderer Renderer, overrides map[string]string) *Resolver {
	if overrides == nil {
		overrides = map[string]string{}
	}
	return &Resolver{renderer: renderer, overrides: overrides}
}

// HasOverride reports whether an override is registered for the template.
func (r *Resolver) HasOverride(name string) bool {
	_, ok := r.overrides[BaseName(name)]
	return ok
}

// Resolve renders the named template against params. If an override exists
// for the base name it is compiled directly; otherwise the external renderer
// is invoked with the full namespaced name.
func (r *Resolver) Resolve(ctx context.Context, name string, params map[string]any) (string, error) {
	if text, ok := r.overrides[BaseName(name)]; ok {
		return compile(text, params)
	}

	html, err := r.renderer.Render(ctx, name, params)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrRender, name, err)
	}
	return html, nil
}

// BaseName strips the template-namespace prefix.
func BaseName(name string) string {
	return strings.TrimPrefix(name, NamespacePrefix)
}

func compile(text string, params map[string]any) (string, error) {
	t, err := htemplate.New("override").Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: parsing override: %v", ErrRender, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("%w: executing override: %v", ErrRender, err)
	}
	return buf.String(), nil
}
