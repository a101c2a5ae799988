// Package cli is the terminal presenter. It prints pages the browser hands
// it and turns the page's affordances into a prompt menu.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-hyperclient/pkg/browser"
	"github.com/goliatone/go-hyperclient/pkg/client"
	"github.com/goliatone/go-hyperclient/pkg/form"
	"github.com/goliatone/go-hyperclient/pkg/render"
	"github.com/goliatone/go-hyperclient/pkg/renderers/tui"
)

// Option customises the presenter.
type Option func(*Presenter)

// WithPromptDriver swaps the interactive driver, used by tests.
func WithPromptDriver(driver tui.PromptDriver) Option {
	return func(p *Presenter) {
		if driver != nil {
			p.driver = driver
			p.form = tui.New(tui.WithPromptDriver(driver))
		}
	}
}

// WithOutput redirects page output, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(p *Presenter) {
		if w != nil {
			p.out = w
		}
	}
}

// Presenter implements browser.View. ShowPage records and prints the page;
// Run owns the interaction loop.
type Presenter struct {
	driver tui.PromptDriver
	form   *tui.Renderer
	out    io.Writer

	mu   sync.Mutex
	page *browser.Page
}

// New builds a presenter over the interactive survey driver.
func New(options ...Option) *Presenter {
	driver := tui.DefaultDriver()
	p := &Presenter{
		driver: driver,
		form:   tui.New(tui.WithPromptDriver(driver)),
		out:    os.Stdout,
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// ShowPage prints the page and makes it the one Run builds its menu from.
func (p *Presenter) ShowPage(_ context.Context, page browser.Page) error {
	p.mu.Lock()
	p.page = &page
	p.mu.Unlock()
	p.print(page)
	return nil
}

func (p *Presenter) print(page browser.Page) {
	for _, msg := range page.Messages {
		fmt.Fprintf(p.out, "[%s] %s\n", msg.Severity, msg.Text)
	}

	if len(page.Crumbs) > 0 {
		titles := make([]string, 0, len(page.Crumbs))
		for _, crumb := range page.Crumbs {
			titles = append(titles, crumb.Title)
		}
		fmt.Fprintln(p.out, strings.Join(titles, " > "))
	}
	fmt.Fprintf(p.out, "== %s ==\n", page.Title)

	for _, name := range page.Columns {
		if v, ok := page.Info[name]; ok && v != "" {
			fmt.Fprintf(p.out, "%s: %s\n", name, v)
		}
	}
	if len(page.Columns) == 0 {
		for name, v := range page.Info {
			if v != "" {
				fmt.Fprintf(p.out, "%s: %s\n", name, v)
			}
		}
	}

	for _, row := range page.Rows {
		cells := make([]string, 0, len(page.Columns))
		for _, name := range page.Columns {
			cells = append(cells, row.Cells[name])
		}
		fmt.Fprintf(p.out, "  - %s\n", strings.Join(cells, "  "))
	}
}

// Run loops over the current page's affordances until the user quits or the
// session is invalidated. Auth failures bubble up so the caller can prompt
// for a fresh login.
func (p *Presenter) Run(ctx context.Context) error {
	for {
		p.mu.Lock()
		page := p.page
		p.mu.Unlock()
		if page == nil {
			return errors.New("cli: no page to show")
		}

		labels, handlers := p.menu(*page)
		idx, err := p.driver.Select(ctx, tui.SelectConfig{
			Message: "Choose",
			Options: labels,
		})
		if err != nil {
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			return err
		}
		if handlers[idx] == nil {
			return nil
		}

		if err := handlers[idx](ctx); err != nil {
			switch {
			case errors.Is(err, tui.ErrAborted):
				// Cancelled mid-form, stay on the page.
			case client.IsAuth(err):
				return err
			default:
				_ = p.driver.Info(ctx, "Error: "+err.Error())
			}
		}
	}
}

// menu builds the selectable affordances for a page. A nil handler means
// quit.
func (p *Presenter) menu(page browser.Page) ([]string, []func(context.Context) error) {
	var labels []string
	var handlers []func(context.Context) error

	for _, row := range page.Rows {
		labels = append(labels, "Open "+row.Title)
		handlers = append(handlers, row.Open)
	}
	for _, action := range page.Actions {
		labels = append(labels, action.Label)
		handlers = append(handlers, action.Invoke)
	}
	if page.Form != nil && page.Form.Form.SubmitLabel != "" {
		formView := page.Form
		labels = append(labels, formView.Form.SubmitLabel)
		handlers = append(handlers, func(ctx context.Context) error {
			return p.fillAndSubmit(ctx, formView)
		})
	}
	for i := len(page.Crumbs) - 2; i >= 0; i-- {
		crumb := page.Crumbs[i]
		labels = append(labels, "Go to "+crumb.Title)
		handlers = append(handlers, crumb.Select)
	}
	labels = append(labels, "Quit")
	handlers = append(handlers, nil)
	return labels, handlers
}

// fillAndSubmit walks the form prompts, uploads any attached local file,
// and hands the result to the browser.
func (p *Presenter) fillAndSubmit(ctx context.Context, formView *browser.FormView) error {
	if _, err := p.form.Fill(ctx, formView.Form, render.Options{}); err != nil {
		if errors.Is(err, tui.ErrAborted) && formView.Cancel != nil {
			if cancelErr := formView.Cancel(ctx); cancelErr != nil {
				return cancelErr
			}
		}
		return err
	}
	if err := p.uploadAttachments(ctx, formView.Form); err != nil {
		return err
	}
	return formView.Submit(ctx)
}

func (p *Presenter) uploadAttachments(ctx context.Context, f *form.Form) error {
	for i := range f.Controls {
		control := &f.Controls[i]
		if control.Role != form.RoleBinaryAttachment || control.ReadOnly {
			continue
		}
		path := strings.TrimSpace(control.Value)
		if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			continue
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("cli: open attachment: %w", err)
		}
		_, err = f.Attach(ctx, control.Name, f.Action, filepath.Base(path), file)
		file.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
