// Package lookup resolves the choice lists behind reference-select fields
// (teachers, languages, user types, archives) from flat collection documents.
package lookup

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-hyperclient/pkg/client"
	"github.com/goliatone/go-hyperclient/pkg/collection"
	"github.com/goliatone/go-hyperclient/pkg/form"
)

// Fetcher is the slice of the hypermedia client the source needs.
type Fetcher interface {
	Get(ctx context.Context, url string) (*collection.Document, error)
}

// List describes where a field's choices live and how each item maps to an
// option: ValueField names the identifying field, LabelFields are joined
// with spaces to build the display label.
type List struct {
	URL         string
	ValueField  string
	LabelFields []string
}

// DefaultURLs locates the auxiliary reference lists.
type DefaultURLs struct {
	Teachers  string
	Languages string
	UserTypes string
	Archives  string
}

// Source implements form.OptionSource over a configured field-to-list table.
type Source struct {
	mu    sync.RWMutex
	fetch Fetcher
	lists map[string]List
}

// NewSource constructs an empty source reading through fetch.
func NewSource(fetch Fetcher) *Source {
	return &Source{
		fetch: fetch,
		lists: make(map[string]List),
	}
}

// Register binds a field name to a reference list.
func (s *Source) Register(fieldName string, list List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[fieldName] = list
}

// RegisterDefaults wires the exam-archive field conventions: teacher and
// examiner selects list teachers by full name, language and user-type
// selects list by name, and the archive select lists archives by name.
func (s *Source) RegisterDefaults(urls DefaultURLs) {
	teachers := List{URL: urls.Teachers, ValueField: "teacherId", LabelFields: []string{"firstName", "lastName"}}
	s.Register("teacherId", teachers)
	s.Register("examinerId", teachers)
	s.Register("inLanguage", List{URL: urls.Languages, ValueField: "inLanguage", LabelFields: []string{"name"}})
	s.Register("userType", List{URL: urls.UserTypes, ValueField: "id", LabelFields: []string{"name"}})
	s.Register("archiveId", List{URL: urls.Archives, ValueField: "archiveId", LabelFields: []string{"name"}})
}

// Options fetches the configured list for fieldName and maps its items to
// options. A missing list document yields zero options, matching the empty
// collection contract for absent lists.
func (s *Source) Options(ctx context.Context, fieldName string) ([]form.Option, error) {
	s.mu.RLock()
	list, ok := s.lists[fieldName]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("lookup: no list registered for field %q", fieldName)
	}

	doc, err := s.fetch.Get(ctx, list.URL)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup: fetch %s list: %w", fieldName, err)
	}

	options := make([]form.Option, 0, len(doc.Items))
	for _, item := range doc.Items {
		value := collection.FindString(item.Data, list.ValueField)
		if value == "" {
			continue
		}
		options = append(options, form.Option{
			Value: value,
			Label: label(item.Data, list.LabelFields, value),
		})
	}
	return options, nil
}

func label(data []collection.Field, fields []string, fallback string) string {
	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		if part := collection.FindString(data, name); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, " ")
}
