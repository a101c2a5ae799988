package render

// Options describe per-request data that renderers can use to customise
// their output without mutating the built form.
type Options struct {
	// SubmitLabel overrides the form's own submit label when non-empty.
	SubmitLabel string
	// Values overrides control values keyed by field name.
	Values map[string]string
	// Errors surfaces validation feedback keyed by field name. Messages
	// under unknown names are treated as form-level so they are not lost.
	Errors map[string][]string
}
