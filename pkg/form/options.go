package form

import (
	"context"
	"io"
)

// Option is a single choice in a reference select.
type Option struct {
	Value string
	Label string
}

// OptionSource resolves the choice list for a reference-select field.
type OptionSource interface {
	Options(ctx context.Context, fieldName string) ([]Option, error)
}

// OptionSourceFunc adapts a function to the OptionSource interface.
type OptionSourceFunc func(ctx context.Context, fieldName string) ([]Option, error)

func (f OptionSourceFunc) Options(ctx context.Context, fieldName string) ([]Option, error) {
	return f(ctx, fieldName)
}

// Uploader stores binary content for an attachment control and returns the
// location identifying the stored media.
type Uploader interface {
	Upload(ctx context.Context, href, filename string, content io.Reader) (string, error)
}
