package render

import (
	"strings"

	"github.com/goliatone/go-hyperclient/pkg/form"
)

// Feedback splits validation messages into field-level and form-level groups
// for a rendered form.
type Feedback struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapFeedback sorts messages keyed by field name into Feedback. Messages for
// names the form does not carry become form-level.
func MapFeedback(f *form.Form, messages map[string][]string) Feedback {
	feedback := Feedback{}
	if len(messages) == 0 {
		return feedback
	}

	for name, raw := range messages {
		normalized := normalizeMessages(raw)
		if len(normalized) == 0 {
			continue
		}
		if _, ok := f.Control(name); !ok {
			feedback.Form = append(feedback.Form, normalized...)
			continue
		}
		if feedback.Fields == nil {
			feedback.Fields = make(map[string][]string)
		}
		feedback.Fields[name] = append(feedback.Fields[name], normalized...)
	}

	feedback.Form = normalizeMessages(feedback.Form)
	return feedback
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
