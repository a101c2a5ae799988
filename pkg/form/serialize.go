package form

import (
	"fmt"

	"github.com/goliatone/go-hyperclient/pkg/collection"
)

// ValidationError reports a local input problem. Nothing leaves the client
// while one is outstanding.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form: field %q: %s", e.Field, e.Message)
}

// Validate checks the form's local rules: required interactive fields carry
// a value and every password matches its confirm companion.
func (f *Form) Validate() error {
	for i, control := range f.Controls {
		if control.ReadOnly || control.Hidden || control.Confirm {
			continue
		}
		if control.Required && control.Value == "" && control.Role != RoleBinaryAttachment {
			return &ValidationError{Field: control.Name, Message: "a value is required"}
		}
		if control.Role == RolePassword {
			confirm, ok := confirmFor(f.Controls, i)
			if ok && confirm.Value != control.Value {
				return &ValidationError{Field: control.Name, Message: "passwords do not match"}
			}
		}
	}
	return nil
}

// Serialize validates and collects the form into a write template, keeping
// document order. Locked displays and confirm companions stay local; an
// empty binary attachment is omitted rather than sent as an empty value.
func (f *Form) Serialize() (collection.Template, error) {
	if err := f.Validate(); err != nil {
		return collection.Template{}, err
	}

	var tpl collection.Template
	for _, control := range f.Controls {
		if control.Confirm {
			continue
		}
		if control.ReadOnly && control.Role == RoleLockedIdentity {
			continue
		}
		if control.Role == RoleBinaryAttachment && control.Value == "" {
			continue
		}
		tpl.Data = append(tpl.Data, collection.Field{
			Name:  control.Name,
			Value: control.Value,
		})
	}
	return tpl, nil
}

func confirmFor(controls []Control, passwordIdx int) (Control, bool) {
	for _, control := range controls[passwordIdx+1:] {
		if control.Confirm {
			return control, true
		}
	}
	return Control{}, false
}
