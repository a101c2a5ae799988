package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-hyperclient/pkg/form"
	"github.com/goliatone/go-hyperclient/pkg/render"
)

// Option configures the vanilla renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// Renderer emits plain HTML form markup. Hypermedia documents are untrusted
// input, so every server-supplied string passes through a strict sanitizer
// before it reaches a template.
type Renderer struct {
	templates TemplateRenderer
	policy    *bluemonday.Policy
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		renderer = newPongoEngine(cfg.templateFS, ".tmpl")
	}

	return &Renderer{
		templates: renderer,
		policy:    bluemonday.StrictPolicy(),
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form markup.
func (r *Renderer) Render(_ context.Context, f *form.Form, opts render.Options) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla: template renderer is nil")
	}
	if f == nil {
		return nil, fmt.Errorf("vanilla: form is nil")
	}

	result, err := r.templates.RenderTemplate("templates/form", map[string]any{
		"form": r.viewModel(f, opts),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla: render form: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) viewModel(f *form.Form, opts render.Options) map[string]any {
	feedback := render.MapFeedback(f, opts.Errors)

	submitLabel := f.SubmitLabel
	if opts.SubmitLabel != "" {
		submitLabel = opts.SubmitLabel
	}

	controls := make([]map[string]any, 0, len(f.Controls))
	for _, control := range f.Controls {
		value := control.Value
		if override, ok := opts.Values[control.Name]; ok {
			value = override
		}

		options := make([]map[string]any, 0, len(control.Options))
		for _, option := range control.Options {
			options = append(options, map[string]any{
				"value":    r.clean(option.Value),
				"label":    r.clean(option.Label),
				"selected": option.Value == value,
			})
		}

		controls = append(controls, map[string]any{
			"name":       control.Name,
			"id":         control.Name + "_id",
			"prompt":     r.clean(control.Prompt),
			"role":       string(control.Role),
			"required":   control.Required,
			"value":      r.clean(value),
			"read_only":  control.ReadOnly,
			"hidden":     control.Hidden,
			"confirm":    control.Confirm,
			"options":    options,
			"upload_url": f.Action + "upload/",
			"errors":     r.cleanAll(feedback.Fields[control.Name]),
		})
	}

	return map[string]any{
		"action":       f.Action,
		"id":           f.ID,
		"submit_label": r.clean(submitLabel),
		"errors":       r.cleanAll(feedback.Form),
		"controls":     controls,
	}
}

func (r *Renderer) clean(raw string) string {
	return r.policy.Sanitize(raw)
}

func (r *Renderer) cleanAll(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, len(raw))
	for i, message := range raw {
		out[i] = r.clean(message)
	}
	return out
}
