package browser

import (
	"context"

	"github.com/goliatone/go-hyperclient/pkg/collection"
	"github.com/goliatone/go-hyperclient/pkg/form"
)

// Crumb is one breadcrumb slot. Select rebuilds that slot's view and
// truncates everything after it.
type Crumb struct {
	Title  string
	ID     string
	Select func(ctx context.Context) error
}

// Action is a page- or row-level affordance: an edit link, a delete button.
type Action struct {
	Label  string
	Danger bool
	Invoke func(ctx context.Context) error
}

// Row is one list entry with its extracted cells. Open navigates into the
// item's detail view.
type Row struct {
	Title string
	Href  string
	Cells map[string]string
	// Links carries the item's own links, e.g. a user's accessible
	// archives.
	Links []collection.Link
	Open  func(ctx context.Context) error
}

// FormView pairs a built form with its submission closures. The presenter
// fills the form (directly or through a renderer) and invokes Submit.
type FormView struct {
	Form   *form.Form
	Submit func(ctx context.Context) error
	Cancel func(ctx context.Context) error
}

// Page is the complete view model handed to the presenter.
type Page struct {
	Title    string
	Slot     string
	Info     map[string]string
	Columns  []string
	Rows     []Row
	Form     *FormView
	Actions  []Action
	Crumbs   []Crumb
	Messages []Message
}

// View renders pages. The browser guarantees single-writer discipline: pages
// arrive one at a time, stale navigations are dropped before this call.
type View interface {
	ShowPage(ctx context.Context, page Page) error
}

// ViewFunc adapts a function to the View interface.
type ViewFunc func(ctx context.Context, page Page) error

func (f ViewFunc) ShowPage(ctx context.Context, page Page) error {
	return f(ctx, page)
}
