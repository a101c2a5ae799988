package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-hyperclient/pkg/client"
	"github.com/goliatone/go-hyperclient/pkg/collection"
	"github.com/goliatone/go-hyperclient/pkg/form"
	"github.com/goliatone/go-hyperclient/pkg/nav"
	"github.com/goliatone/go-hyperclient/pkg/session"
)

// Login authenticates against the user resource and enters the client at the
// session's entry point. The password is hashed before it leaves the process.
func (b *Browser) Login(ctx context.Context, username, password string, remember bool) error {
	sess, err := b.sessions.Login(ctx, b.client.GetAs, b.entrypoint, username, password, remember)
	if err != nil {
		if client.IsAuth(err) {
			b.notes.Danger("Wrong user name or password.")
		} else {
			b.notes.Danger("Could not log in. Please, try again.")
		}
		b.log.Warn("browser: login failed", zap.String("username", username), zap.Error(err))
		return err
	}
	b.nav.Reset()
	b.notes.Success("Welcome, " + sess.Username + ".")
	return b.enter(ctx, sess)
}

// StartFromSession resumes a remembered session, entering the client without
// prompting for credentials. It returns ErrNoSession when nothing was stored.
func (b *Browser) StartFromSession(ctx context.Context) error {
	if !b.sessions.Rehydrate() {
		return session.ErrNoSession
	}
	sess, ok := b.sessions.Current()
	if !ok {
		return session.ErrNoSession
	}
	b.nav.Reset()
	return b.enter(ctx, sess)
}

// Logout forgets the session and the navigation trail.
func (b *Browser) Logout() {
	b.sessions.Clear()
	b.nav.Reset()
	b.notes.Notice("You are now logged out.")
}

// enter lands the session on its start view: super users get the archive
// list, everyone else jumps straight into their accessible archive.
func (b *Browser) enter(ctx context.Context, sess session.Session) error {
	if sess.Super() {
		return b.BrowseList(ctx, Archives(), sess.EntrypointName, sess.EntrypointURL)
	}
	return b.BrowseItem(ctx, Archives(), sess.EntrypointURL)
}

// BrowseUsers opens the user list behind the API entry point.
func (b *Browser) BrowseUsers(ctx context.Context) error {
	return b.BrowseList(ctx, Users(), "Users", b.entrypoint)
}

// BrowseList fetches a list resource and shows its rows plus, for writers,
// the create form. A missing collection renders as an empty list.
func (b *Browser) BrowseList(ctx context.Context, res *Resource, title, url string) error {
	token := b.begin()
	sess, ok := b.sessions.Current()
	if !ok {
		return session.ErrNoSession
	}

	doc, err := b.client.Get(ctx, url)
	if err != nil {
		if !client.IsNotFound(err) {
			return b.fail(err)
		}
		doc = &collection.Document{Href: url}
	}
	if b.stale(token) {
		return nil
	}

	b.nav.Push(nav.Entry{
		Title: title,
		ID:    res.Slot,
		Activate: func(ctx context.Context) error {
			return b.BrowseList(ctx, res, title, url)
		},
	})

	page := Page{
		Title:   title,
		Slot:    res.Slot,
		Columns: res.Columns,
		Rows:    b.rows(res, doc),
	}
	if res.canWrite(sess) && doc.Template != nil {
		formView, err := b.createForm(ctx, res, sess, doc, url)
		if err != nil {
			return b.fail(err)
		}
		page.Form = formView
	}
	return b.show(ctx, token, page)
}

// BrowseItem fetches a single item and shows its fields, its nested child
// list when the resource has one, and the edit and delete affordances the
// session is entitled to.
func (b *Browser) BrowseItem(ctx context.Context, res *Resource, url string) error {
	token := b.begin()
	sess, ok := b.sessions.Current()
	if !ok {
		return session.ErrNoSession
	}

	doc, err := b.client.Get(ctx, url)
	if err != nil {
		return b.fail(err)
	}
	if len(doc.Items) == 0 {
		return b.fail(fmt.Errorf("browser: %s document at %s carried no items", res.Singular, url))
	}
	if b.stale(token) {
		return nil
	}
	item := doc.Items[0]

	title := res.title(item.Data)
	b.nav.Push(nav.Entry{
		Title: title,
		ID:    res.ItemSlot,
		Activate: func(ctx context.Context) error {
			return b.BrowseItem(ctx, res, url)
		},
	})

	page := Page{
		Title: title,
		Slot:  res.ItemSlot,
		Info:  extractCells(item.Data, res.Columns),
	}

	if res.canWrite(sess) {
		page.Actions = append(page.Actions, Action{
			Label: "Edit " + res.Singular,
			Invoke: func(ctx context.Context) error {
				return b.Edit(ctx, res, url)
			},
		})
	}
	if res.canDelete(sess) {
		page.Actions = append(page.Actions, Action{
			Label:  "Delete " + res.Singular,
			Danger: true,
			Invoke: func(ctx context.Context) error {
				return b.Delete(ctx, res, url)
			},
		})
	}

	if res.Child != nil && res.ChildLink != "" {
		if childURL, found := collection.FindLink(item.Links, res.ChildLink); found {
			if err := b.attachChildList(ctx, res, sess, childURL, &page); err != nil {
				return b.fail(err)
			}
		}
	}
	return b.show(ctx, token, page)
}

// attachChildList folds the nested list into the item page: rows plus the
// child create form. The child list gets no navigation entry of its own.
func (b *Browser) attachChildList(ctx context.Context, res *Resource, sess session.Session, url string, page *Page) error {
	child := res.Child
	doc, err := b.client.Get(ctx, url)
	if err != nil {
		if !client.IsNotFound(err) {
			return err
		}
		doc = &collection.Document{Href: url}
	}
	page.Columns = child.Columns
	page.Rows = b.rows(child, doc)
	if child.canWrite(sess) && doc.Template != nil {
		formView, err := b.createForm(ctx, child, sess, doc, url)
		if err != nil {
			return err
		}
		page.Form = formView
	}
	return nil
}

// Edit fetches the item's write template, prefills it from the item data,
// and shows the edit form.
func (b *Browser) Edit(ctx context.Context, res *Resource, url string) error {
	token := b.begin()
	sess, ok := b.sessions.Current()
	if !ok {
		return session.ErrNoSession
	}

	doc, err := b.client.Get(ctx, url)
	if err != nil {
		return b.fail(err)
	}
	if len(doc.Items) == 0 {
		return b.fail(fmt.Errorf("browser: %s document at %s carried no items", res.Singular, url))
	}
	item := doc.Items[0]

	f, err := form.Build(ctx, doc.Template, form.BuildOptions{
		Action:      url,
		ID:          res.FormID,
		SubmitLabel: "Save",
		Initial:     item.Data,
		Roles:       res.roleTable(b.roles),
		Privileged:  sess.Super(),
		Options:     b.lookup,
	})
	if err != nil {
		return b.fail(err)
	}
	if res.Attachment && b.uploader != nil {
		f.BindUpload(b.uploader)
	}
	if b.stale(token) {
		return nil
	}

	title := "Edit " + res.title(item.Data)
	b.nav.Push(nav.Entry{
		Title: title,
		ID:    res.ItemSlot + "_edit",
		Activate: func(ctx context.Context) error {
			return b.Edit(ctx, res, url)
		},
	})

	page := Page{
		Title: title,
		Slot:  res.ItemSlot + "_edit",
		Form: &FormView{
			Form: f,
			Submit: func(ctx context.Context) error {
				return b.submitEdit(ctx, res, f, item, url)
			},
			Cancel: func(ctx context.Context) error {
				b.nav.Pop()
				return b.returnOrEnter(ctx)
			},
		},
	}
	return b.show(ctx, token, page)
}

func (b *Browser) submitEdit(ctx context.Context, res *Resource, f *form.Form, item collection.Item, url string) error {
	tpl, err := f.Serialize()
	if err != nil {
		b.notes.Danger(err.Error())
		return err
	}
	b.hashPasswords(f, &tpl)

	if err := b.client.Put(ctx, url, tpl, res.Profile); err != nil {
		return b.fail(err)
	}

	// Changing your own password must update the credentials future
	// requests authenticate with.
	if res.Slot == "users" {
		name := collection.FindString(item.Data, "name")
		hash := collection.FindString(tpl.Data, "accessCode")
		if sess, ok := b.sessions.Current(); ok && hash != "" && name == sess.Username {
			b.sessions.UpdatePassword(name, hash)
		}
	}

	b.notes.Success("The " + res.Singular + " was updated.")
	b.nav.Pop()
	return b.returnOrEnter(ctx)
}

// Delete removes the item and returns to the previous view. Cascading
// deletes ask for confirmation first.
func (b *Browser) Delete(ctx context.Context, res *Resource, url string) error {
	if res.ConfirmDelete {
		prompt := "Deleting this " + res.Singular + " removes everything under it. Continue?"
		if !b.confirmed(ctx, prompt) {
			b.notes.Notice("Nothing was deleted.")
			return b.returnOrEnter(ctx)
		}
	}

	if err := b.client.Delete(ctx, url); err != nil {
		return b.fail(err)
	}
	b.notes.Success("The " + res.Singular + " was deleted.")

	// Drop the deleted item's own slot before re-activating its parent.
	b.nav.Pop()
	return b.returnOrEnter(ctx)
}

// EditProfile jumps straight to the session user's own edit form.
func (b *Browser) EditProfile(ctx context.Context) error {
	sess, ok := b.sessions.Current()
	if !ok {
		return session.ErrNoSession
	}
	return b.Edit(ctx, Users(), b.entrypoint+sess.Username+"/")
}

// createForm builds the create form for a list document and wires its
// submission closures.
func (b *Browser) createForm(ctx context.Context, res *Resource, sess session.Session, doc *collection.Document, url string) (*FormView, error) {
	f, err := form.Build(ctx, doc.Template, form.BuildOptions{
		Action:      url,
		ID:          res.FormID,
		SubmitLabel: res.CreateLabel,
		Roles:       res.roleTable(b.roles),
		Privileged:  sess.Super(),
		Options:     b.lookup,
	})
	if err != nil {
		if errors.Is(err, form.ErrNoTemplate) {
			return nil, nil
		}
		return nil, err
	}
	if res.Attachment && b.uploader != nil {
		f.BindUpload(b.uploader)
	}

	return &FormView{
		Form: f,
		Submit: func(ctx context.Context) error {
			return b.submitCreate(ctx, res, f, url)
		},
		Cancel: func(ctx context.Context) error {
			return b.returnOrEnter(ctx)
		},
	}, nil
}

func (b *Browser) submitCreate(ctx context.Context, res *Resource, f *form.Form, url string) error {
	tpl, err := f.Serialize()
	if err != nil {
		b.notes.Danger(err.Error())
		return err
	}
	b.hashPasswords(f, &tpl)

	location, err := b.client.Post(ctx, url, tpl, res.Profile)
	if err != nil {
		return b.fail(err)
	}
	b.notes.Success("The " + res.Singular + " was created.")

	// Exam creation continues into the new item's edit form so the exam
	// paper can be attached right away.
	if res.Attachment && location != "" {
		return b.Edit(ctx, res, location)
	}
	return b.returnOrEnter(ctx)
}

// returnOrEnter re-activates the previous view, falling back to the
// session's entry point when the trail is empty.
func (b *Browser) returnOrEnter(ctx context.Context) error {
	err := b.nav.ReturnToPrevious(ctx)
	if !errors.Is(err, nav.ErrEmpty) {
		return err
	}
	sess, ok := b.sessions.Current()
	if !ok {
		return session.ErrNoSession
	}
	return b.enter(ctx, sess)
}

// rows extracts list rows. Each row opens the item's detail view.
func (b *Browser) rows(res *Resource, doc *collection.Document) []Row {
	rows := make([]Row, 0, len(doc.Items))
	for _, item := range doc.Items {
		href := item.Href
		rows = append(rows, Row{
			Title: res.title(item.Data),
			Href:  href,
			Cells: extractCells(item.Data, res.Columns),
			Links: item.Links,
			Open: func(ctx context.Context) error {
				return b.BrowseItem(ctx, res, href)
			},
		})
	}
	return rows
}

// hashPasswords replaces serialized password values with their digests.
// Empty passwords are removed from the template entirely so an edit without
// a password change leaves the stored one alone.
func (b *Browser) hashPasswords(f *form.Form, tpl *collection.Template) {
	for _, control := range f.Controls {
		if control.Role != form.RolePassword || control.Confirm {
			continue
		}
		raw := collection.FindString(tpl.Data, control.Name)
		if raw == "" {
			collection.SetField(&tpl.Data, control.Name, nil)
			continue
		}
		collection.SetField(&tpl.Data, control.Name, session.HashPassword(raw))
	}
}

func (r *Resource) title(data []collection.Field) string {
	parts := make([]string, 0, len(r.TitleFields))
	for _, name := range r.TitleFields {
		if v := collection.FindString(data, name); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return strings.ToUpper(r.Singular[:1]) + r.Singular[1:]
	}
	return strings.Join(parts, " ")
}

func extractCells(data []collection.Field, columns []string) map[string]string {
	cells := make(map[string]string, len(columns))
	for _, name := range columns {
		cells[name] = collection.FindString(data, name)
	}
	return cells
}
