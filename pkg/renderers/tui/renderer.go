package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-hyperclient/pkg/collection"
	"github.com/goliatone/go-hyperclient/pkg/form"
	"github.com/goliatone/go-hyperclient/pkg/render"
)

// Renderer implements render.Renderer for terminal-driven sessions: it walks
// the form's controls, prompting per role, and emits the collected write
// template.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return collection.MediaType
}

// Render prompts for every control and serializes the collected template.
func (r *Renderer) Render(ctx context.Context, f *form.Form, opts render.Options) ([]byte, error) {
	tpl, err := r.Fill(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(tpl)
}

// Fill walks the form's controls in document order, prompting per role, and
// returns the serialized write template. Mismatched passwords re-prompt
// rather than fail; an interrupt surfaces as ErrAborted.
func (r *Renderer) Fill(ctx context.Context, f *form.Form, opts render.Options) (collection.Template, error) {
	if ctx == nil {
		return collection.Template{}, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return collection.Template{}, err
	}
	if r.driver == nil {
		return collection.Template{}, errors.New("tui: prompt driver is nil")
	}

	applyOverrides(f, opts.Values)
	if err := r.showFeedback(ctx, f, opts.Errors); err != nil {
		return collection.Template{}, err
	}

	for i := range f.Controls {
		control := &f.Controls[i]
		if control.Confirm {
			continue
		}

		var err error
		switch {
		case control.Hidden:
			// Carried for round-trip only.
		case control.ReadOnly:
			err = r.driver.Info(ctx, fmt.Sprintf("%s: %s", promptFor(control), control.Value))
		case control.Role == form.RolePassword:
			err = r.promptPassword(ctx, f, i)
		case control.Role == form.RoleCheckbox:
			err = r.promptCheckbox(ctx, control)
		case control.Role == form.RoleReferenceSelect:
			err = r.promptSelect(ctx, control)
		case control.Role == form.RoleLongText:
			err = r.promptLongText(ctx, control)
		case control.Role == form.RoleBinaryAttachment:
			err = r.promptAttachment(ctx, control)
		default:
			err = r.promptText(ctx, control)
		}
		if err != nil {
			return collection.Template{}, err
		}
	}

	return f.Serialize()
}

func (r *Renderer) promptText(ctx context.Context, control *form.Control) error {
	value, err := r.driver.Input(ctx, InputConfig{
		Message:   promptFor(control),
		Default:   control.Value,
		Validator: requiredValidator(control),
	})
	if err != nil {
		return err
	}
	control.Value = value
	return nil
}

func (r *Renderer) promptLongText(ctx context.Context, control *form.Control) error {
	value, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: promptFor(control),
		Default: control.Value,
	})
	if err != nil {
		return err
	}
	control.Value = value
	return nil
}

func (r *Renderer) promptCheckbox(ctx context.Context, control *form.Control) error {
	checked, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: promptFor(control),
		Default: control.Value == "true",
	})
	if err != nil {
		return err
	}
	if checked {
		control.Value = "true"
	} else {
		control.Value = "false"
	}
	return nil
}

func (r *Renderer) promptSelect(ctx context.Context, control *form.Control) error {
	// An auxiliary list can resolve empty when its collection is missing.
	// Fall back to a plain input so the form can still be filled.
	if len(control.Options) == 0 {
		return r.promptText(ctx, control)
	}
	labels := make([]string, len(control.Options))
	defaultIndex := 0
	for i, option := range control.Options {
		labels[i] = option.Label
		if option.Value == control.Value {
			defaultIndex = i
		}
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      promptFor(control),
		Options:      labels,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(control.Options) {
		return fmt.Errorf("tui: select returned no choice for %s", control.Name)
	}
	control.Value = control.Options[idx].Value
	return nil
}

func (r *Renderer) promptPassword(ctx context.Context, f *form.Form, passwordIdx int) error {
	control := &f.Controls[passwordIdx]
	confirm := confirmControl(f, passwordIdx)

	for {
		value, err := r.driver.Password(ctx, InputConfig{
			Message:   promptFor(control),
			Validator: requiredValidator(control),
		})
		if err != nil {
			return err
		}
		if confirm == nil || value == "" {
			control.Value = value
			return nil
		}

		retyped, err := r.driver.Password(ctx, InputConfig{Message: confirm.Prompt})
		if err != nil {
			return err
		}
		if value == retyped {
			control.Value = value
			confirm.Value = retyped
			return nil
		}
		if err := r.driver.Info(ctx, "Passwords do not match, try again."); err != nil {
			return err
		}
	}
}

func (r *Renderer) promptAttachment(ctx context.Context, control *form.Control) error {
	value, err := r.driver.Input(ctx, InputConfig{
		Message: promptFor(control),
		Default: control.Value,
		Help:    "Path to a local file. Leave empty to skip the attachment.",
	})
	if err != nil {
		return err
	}
	control.Value = value
	return nil
}

func (r *Renderer) showFeedback(ctx context.Context, f *form.Form, messages map[string][]string) error {
	feedback := render.MapFeedback(f, messages)
	for _, message := range feedback.Form {
		if err := r.driver.Info(ctx, message); err != nil {
			return err
		}
	}
	for name, fieldMessages := range feedback.Fields {
		for _, message := range fieldMessages {
			if err := r.driver.Info(ctx, fmt.Sprintf("%s: %s", name, message)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) serialize(tpl collection.Template) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		var b strings.Builder
		for _, field := range tpl.Data {
			fmt.Fprintf(&b, "%s = %s\n", field.Name, collection.FindString(tpl.Data, field.Name))
		}
		return []byte(b.String()), nil
	}
	return json.Marshal(tpl.Envelope())
}

func applyOverrides(f *form.Form, values map[string]string) {
	for name, value := range values {
		if control, ok := f.Control(name); ok {
			control.Value = value
		}
	}
}

func promptFor(control *form.Control) string {
	if control.Prompt != "" {
		return control.Prompt
	}
	return control.Name
}

func requiredValidator(control *form.Control) func(string) error {
	if !control.Required {
		return nil
	}
	name := promptFor(control)
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func confirmControl(f *form.Form, passwordIdx int) *form.Control {
	for i := passwordIdx + 1; i < len(f.Controls); i++ {
		if f.Controls[i].Confirm {
			return &f.Controls[i]
		}
	}
	return nil
}
