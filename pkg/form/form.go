package form

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-hyperclient/pkg/collection"
)

// ErrNoTemplate reports a document that carries no write template, meaning
// the resource offers nothing to fill in.
var ErrNoTemplate = errors.New("form: document carries no template")

// Control is one interactive element of a built form, in template order.
type Control struct {
	Name     string
	Prompt   string
	Role     Role
	Required bool
	Value    string
	Options  []Option
	ReadOnly bool
	Hidden   bool
	// Confirm marks the companion control injected after a password
	// control. It never serializes; it only guards against typos.
	Confirm bool
}

// BuildOptions configure Build.
type BuildOptions struct {
	// Action is the URL the serialized template will be submitted to.
	Action string
	// ID identifies the form to renderers and per-resource role overrides.
	ID string
	// SubmitLabel is the text on the submit affordance. Empty means the
	// form is display-only.
	SubmitLabel string
	// Initial prefills control values from an existing item's data.
	Initial []collection.Field
	// Roles resolves field presentation. Nil falls back to
	// DefaultRoleTable.
	Roles *RoleTable
	// Privileged turns conditional-privileged fields into selects instead
	// of locked displays.
	Privileged bool
	// Options resolves reference-select choice lists. Required when the
	// template carries reference-select or privileged conditional fields.
	Options OptionSource
}

// Form is an ordered set of controls bound to a submission target.
type Form struct {
	Action      string
	ID          string
	SubmitLabel string
	Controls    []Control

	uploader Uploader
}

// Build produces a form from a write template. Control order follows the
// template. Values prefill from opts.Initial first, then from the template's
// own field values.
func Build(ctx context.Context, tpl *collection.Template, opts BuildOptions) (*Form, error) {
	if tpl == nil || len(tpl.Data) == 0 {
		return nil, ErrNoTemplate
	}
	roles := opts.Roles
	if roles == nil {
		roles = DefaultRoleTable()
	}

	f := &Form{
		Action:      opts.Action,
		ID:          opts.ID,
		SubmitLabel: opts.SubmitLabel,
		Controls:    make([]Control, 0, len(tpl.Data)),
	}

	for _, field := range tpl.Data {
		control := Control{
			Name:     field.Name,
			Prompt:   field.Prompt,
			Required: field.Required,
			Role:     roles.Resolve(field),
			Value:    initialValue(field, opts.Initial),
		}

		switch control.Role {
		case RolePassword:
			// Secrets never prefill, not even when editing.
			control.Value = ""
			f.Controls = append(f.Controls, control)
			f.Controls = append(f.Controls, Control{
				Name:    field.Name + "Confirm",
				Prompt:  confirmPrompt(field),
				Role:    RolePassword,
				Confirm: true,
			})
			continue
		case RoleReferenceSelect:
			options, err := resolveOptions(ctx, opts.Options, field.Name)
			if err != nil {
				return nil, err
			}
			control.Options = options
		case RoleConditionalPrivileged:
			if opts.Privileged {
				options, err := resolveOptions(ctx, opts.Options, field.Name)
				if err != nil {
					return nil, err
				}
				control.Role = RoleReferenceSelect
				control.Options = options
			} else {
				control.Role = RoleLockedIdentity
				control.ReadOnly = true
			}
		case RoleLockedIdentity:
			control.ReadOnly = true
		case RoleHiddenIdentity:
			control.Hidden = true
		}

		f.Controls = append(f.Controls, control)
	}
	return f, nil
}

// Control returns the named control for mutation, comma-ok.
func (f *Form) Control(name string) (*Control, bool) {
	for i := range f.Controls {
		if f.Controls[i].Name == name {
			return &f.Controls[i], true
		}
	}
	return nil, false
}

// BindUpload attaches the collaborator that Attach uses to store binary
// content.
func (f *Form) BindUpload(u Uploader) {
	f.uploader = u
}

// Attach uploads content for the named binary-attachment control. On success
// the control's value becomes the returned location and the control turns
// into a read-only display of the stored filename.
func (f *Form) Attach(ctx context.Context, name, href, filename string, content io.Reader) (string, error) {
	control, ok := f.Control(name)
	if !ok {
		return "", fmt.Errorf("form: no control named %q", name)
	}
	if control.Role != RoleBinaryAttachment {
		return "", fmt.Errorf("form: control %q does not accept attachments", name)
	}
	if f.uploader == nil {
		return "", errors.New("form: no uploader bound")
	}

	location, err := f.uploader.Upload(ctx, href, filename, content)
	if err != nil {
		return "", err
	}
	control.Value = location
	control.ReadOnly = true
	return location, nil
}

func initialValue(field collection.Field, initial []collection.Field) string {
	if _, ok := collection.FindField(initial, field.Name); ok {
		return collection.FindString(initial, field.Name)
	}
	if field.Value == nil {
		return ""
	}
	return collection.FindString([]collection.Field{field}, field.Name)
}

func confirmPrompt(field collection.Field) string {
	if field.Prompt != "" {
		return "Retype " + field.Prompt
	}
	return "Retype " + field.Name
}

func resolveOptions(ctx context.Context, source OptionSource, fieldName string) ([]Option, error) {
	if source == nil {
		return nil, fmt.Errorf("form: field %q needs an option source", fieldName)
	}
	options, err := source.Options(ctx, fieldName)
	if err != nil {
		return nil, fmt.Errorf("form: resolve options for %q: %w", fieldName, err)
	}
	return options, nil
}
