package render

import (
	"context"

	"github.com/goliatone/go-hyperclient/pkg/form"
)

// Renderer converts a built form into a byte representation (HTML markup, a
// terminal transcript, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, f *form.Form, options Options) ([]byte, error)
}
