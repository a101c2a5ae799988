package vanilla

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// TemplateRenderer is the seam between the renderer and the template engine,
// so tests and callers can substitute their own implementation.
type TemplateRenderer interface {
	RenderTemplate(name string, data map[string]any) (string, error)
}

type pongoEngine struct {
	mu    sync.Mutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
	ext   string
}

func newPongoEngine(files fs.FS, ext string) *pongoEngine {
	return &pongoEngine{
		set:   pongo2.NewSet("hyperclient", pongo2.NewFSLoader(files)),
		cache: make(map[string]*pongo2.Template),
		ext:   ext,
	}
}

func (e *pongoEngine) RenderTemplate(name string, data map[string]any) (string, error) {
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	tmpl, err := e.template(path)
	if err != nil {
		return "", err
	}

	out, err := tmpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("vanilla: execute template %q: %w", path, err)
	}
	return out, nil
}

func (e *pongoEngine) template(path string) (*pongo2.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("vanilla: load template %q: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}
