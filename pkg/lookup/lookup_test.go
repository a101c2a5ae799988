package lookup

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-hyperclient/pkg/client"
	"github.com/goliatone/go-hyperclient/pkg/collection"
	"github.com/goliatone/go-hyperclient/pkg/form"
)

type stubFetcher struct {
	docs map[string]*collection.Document
	err  error
}

func (s *stubFetcher) Get(_ context.Context, url string) (*collection.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	doc, ok := s.docs[url]
	if !ok {
		return nil, errors.New("unexpected url " + url)
	}
	return doc, nil
}

func item(fields ...collection.Field) collection.Item {
	return collection.Item{Data: fields}
}

func TestOptionsMapsTeachers(t *testing.T) {
	fetch := &stubFetcher{docs: map[string]*collection.Document{
		"/teachers/": {Items: []collection.Item{
			item(
				collection.Field{Name: "teacherId", Value: "1"},
				collection.Field{Name: "firstName", Value: "Tellervo"},
				collection.Field{Name: "lastName", Value: "Korhonen"},
			),
			item(
				collection.Field{Name: "teacherId", Value: "2"},
				collection.Field{Name: "firstName", Value: "Pekka"},
				collection.Field{Name: "lastName", Value: "Virtanen"},
			),
		}},
	}}

	source := NewSource(fetch)
	source.RegisterDefaults(DefaultURLs{Teachers: "/teachers/"})

	got, err := source.Options(context.Background(), "examinerId")
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	want := []form.Option{
		{Value: "1", Label: "Tellervo Korhonen"},
		{Value: "2", Label: "Pekka Virtanen"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsSkipsItemsWithoutValue(t *testing.T) {
	fetch := &stubFetcher{docs: map[string]*collection.Document{
		"/languages/": {Items: []collection.Item{
			item(collection.Field{Name: "name", Value: "Klingon"}),
			item(
				collection.Field{Name: "inLanguage", Value: "fi"},
				collection.Field{Name: "name", Value: "Finnish"},
			),
		}},
	}}

	source := NewSource(fetch)
	source.RegisterDefaults(DefaultURLs{Languages: "/languages/"})

	got, err := source.Options(context.Background(), "inLanguage")
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	want := []form.Option{{Value: "fi", Label: "Finnish"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsLabelFallsBackToValue(t *testing.T) {
	fetch := &stubFetcher{docs: map[string]*collection.Document{
		"/usertypes/": {Items: []collection.Item{
			item(collection.Field{Name: "id", Value: "super"}),
		}},
	}}

	source := NewSource(fetch)
	source.Register("userType", List{URL: "/usertypes/", ValueField: "id", LabelFields: []string{"name"}})

	got, err := source.Options(context.Background(), "userType")
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	want := []form.Option{{Value: "super", Label: "super"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsUnregisteredField(t *testing.T) {
	source := NewSource(&stubFetcher{})
	if _, err := source.Options(context.Background(), "mystery"); err == nil {
		t.Fatal("Options returned no error for an unregistered field")
	}
}

func TestOptionsMissingListIsEmpty(t *testing.T) {
	notFound := &client.Error{Kind: client.KindServer, Status: http.StatusNotFound, URL: "/archives/"}
	source := NewSource(&stubFetcher{err: notFound})
	source.RegisterDefaults(DefaultURLs{Archives: "/archives/"})

	got, err := source.Options(context.Background(), "archiveId")
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Options = %v, want empty", got)
	}
}

func TestOptionsFetchFailure(t *testing.T) {
	source := NewSource(&stubFetcher{err: errors.New("network down")})
	source.RegisterDefaults(DefaultURLs{Teachers: "/teachers/"})

	if _, err := source.Options(context.Background(), "teacherId"); err == nil {
		t.Fatal("Options swallowed the fetch failure")
	}
}
