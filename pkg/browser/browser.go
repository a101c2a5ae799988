// Package browser drives the client: it fetches hypermedia documents,
// extracts view models, maintains the navigation trail, and hands pages to a
// presenter.
package browser

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/goliatone/go-hyperclient/pkg/client"
	"github.com/goliatone/go-hyperclient/pkg/form"
	"github.com/goliatone/go-hyperclient/pkg/nav"
	"github.com/goliatone/go-hyperclient/pkg/render"
	"github.com/goliatone/go-hyperclient/pkg/session"
)

// Option customises the browser configuration.
type Option func(*Browser)

// WithClient injects the hypermedia fetcher.
func WithClient(c *client.Client) Option {
	return func(b *Browser) {
		b.client = c
	}
}

// WithSessionStore injects the session store.
func WithSessionStore(store *session.Store) Option {
	return func(b *Browser) {
		b.sessions = store
	}
}

// WithView injects the presenter the browser renders pages to.
func WithView(view View) Option {
	return func(b *Browser) {
		b.view = view
	}
}

// WithEntrypoint sets the API entry point, the user list URL logins probe.
func WithEntrypoint(url string) Option {
	return func(b *Browser) {
		b.entrypoint = url
	}
}

// WithRoleTable overrides the shared field role table.
func WithRoleTable(roles *form.RoleTable) Option {
	return func(b *Browser) {
		if roles != nil {
			b.roles = roles
		}
	}
}

// WithRegistry injects a renderer registry for presenters that render forms
// through it.
func WithRegistry(registry *render.Registry) Option {
	return func(b *Browser) {
		b.registry = registry
	}
}

// WithDefaultRenderer names the registry renderer presenters should prefer.
func WithDefaultRenderer(name string) Option {
	return func(b *Browser) {
		if name != "" {
			b.renderer = name
		}
	}
}

// WithLookup injects the reference list source behind select fields.
func WithLookup(source form.OptionSource) Option {
	return func(b *Browser) {
		b.lookup = source
	}
}

// WithUploader injects the attachment upload collaborator.
func WithUploader(uploader form.Uploader) Option {
	return func(b *Browser) {
		b.uploader = uploader
	}
}

// WithLogger overrides the no-op default logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Browser) {
		if log != nil {
			b.log = log
		}
	}
}

// WithConfirm installs the callback consulted before destructive cascades
// (archive deletion). Absent a callback, confirmation is assumed.
func WithConfirm(confirm func(ctx context.Context, prompt string) bool) Option {
	return func(b *Browser) {
		b.confirm = confirm
	}
}

// Browser is the view controller. All navigation runs through it one flow at
// a time; responses finishing after a newer navigation started are dropped.
type Browser struct {
	client     *client.Client
	sessions   *session.Store
	view       View
	entrypoint string

	roles    *form.RoleTable
	registry *render.Registry
	renderer string
	lookup   form.OptionSource
	uploader form.Uploader
	confirm  func(ctx context.Context, prompt string) bool

	nav   *nav.Stack
	notes *Notifier
	log   *zap.Logger

	seq atomic.Uint64
}

// New constructs a browser. A client, session store, view, and entry point
// are required.
func New(options ...Option) (*Browser, error) {
	b := &Browser{
		roles:    form.DefaultRoleTable(),
		renderer: "tui",
		nav:      nav.NewStack(),
		notes:    NewNotifier(),
		log:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}

	switch {
	case b.client == nil:
		return nil, errors.New("browser: client is required")
	case b.sessions == nil:
		return nil, errors.New("browser: session store is required")
	case b.view == nil:
		return nil, errors.New("browser: view is required")
	case b.entrypoint == "":
		return nil, errors.New("browser: entrypoint is required")
	}
	return b, nil
}

// Notifier exposes the transient message store, so presenters can queue
// their own notices.
func (b *Browser) Notifier() *Notifier {
	return b.notes
}

// Nav exposes the navigation trail.
func (b *Browser) Nav() *nav.Stack {
	return b.nav
}

// Registry returns the renderer registry, nil when none was configured.
func (b *Browser) Registry() *render.Registry {
	return b.registry
}

// DefaultRenderer names the renderer presenters should prefer.
func (b *Browser) DefaultRenderer() string {
	return b.renderer
}

// begin starts a navigation and invalidates every outstanding one.
func (b *Browser) begin() uint64 {
	return b.seq.Add(1)
}

// stale reports whether a newer navigation superseded token.
func (b *Browser) stale(token uint64) bool {
	return b.seq.Load() != token
}

// show renders the page unless the navigation went stale while it loaded.
func (b *Browser) show(ctx context.Context, token uint64, page Page) error {
	if b.stale(token) {
		b.log.Debug("browser: dropping stale view",
			zap.String("slot", page.Slot),
			zap.Uint64("token", token),
		)
		return nil
	}
	page.Crumbs = b.crumbs()
	page.Messages = b.notes.Drain()
	return b.view.ShowPage(ctx, page)
}

func (b *Browser) crumbs() []Crumb {
	entries := b.nav.Entries()
	crumbs := make([]Crumb, 0, len(entries))
	for _, entry := range entries {
		entry := entry
		crumbs = append(crumbs, Crumb{
			Title: entry.Title,
			ID:    entry.ID,
			Select: func(ctx context.Context) error {
				return b.nav.Activate(ctx, entry.ID)
			},
		})
	}
	return crumbs
}

// fail translates a request failure into user feedback. Auth failures clear
// the session and force re-login.
func (b *Browser) fail(err error) error {
	if client.IsAuth(err) {
		b.sessions.Clear()
		b.nav.Reset()
		b.notes.Danger("Your session is no longer valid. Please log in again.")
		return err
	}
	if reqErr, ok := client.AsError(err); ok && reqErr.Detail != "" {
		b.notes.Danger(reqErr.Detail)
	} else {
		b.notes.Danger("Request failed. Please, try again.")
	}
	b.log.Warn("browser: request failed", zap.Error(err))
	return err
}

func (b *Browser) confirmed(ctx context.Context, prompt string) bool {
	if b.confirm == nil {
		return true
	}
	return b.confirm(ctx, prompt)
}
