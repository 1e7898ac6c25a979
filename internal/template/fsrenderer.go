package template

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htemplate "html/template"
	"io/fs"
)

//go:embed defaults
var defaultTemplates embed.FS

// FSRenderer renders templates from a filesystem. The file for template name
// "emails/welcome" is "emails/welcome.tmpl" relative to the FS root.
type FSRenderer struct {
	fsys fs.FS
}

// NewFSRenderer creates an FSRenderer over fsys.
func NewFSRenderer(fsys fs.FS) *FSRenderer {
	return &FSRenderer{fsys: fsys}
}

// NewDefaultRenderer returns an FSRenderer over the embedded default templates.
func NewDefaultRenderer() *FSRenderer {
	sub, err := fs.Sub(defaultTemplates, "defaults")
	if err != nil {
		// The embedded tree always contains "defaults".
		panic(err)
	}
	return &FSRenderer{fsys: sub}
}

// Render implements Renderer.
func (r *FSRenderer) Render(_ context.Context, name string, params map[string]any) (string, error) {
	data, err := fs.ReadFile(r.fsys, name+".tmpl")
	if err != nil {
		return "", fmt.Errorf("reading template %q: %w", name, err)
	}

	t, err := htemplate.New(name).Parse(string(data))
	if err != nil {
		return "", fmt.Errorf("parsing template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("executing template %q: %w", name, err)
	}
	return buf.String(), nil
}
