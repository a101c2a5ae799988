package collection

import (
	"encoding/json"
	"fmt"
	"io"
)

// MediaType is the content type used by the API for hypermedia documents.
// Mutating requests append a resource profile as a content-type parameter.
const MediaType = "application/vnd.collection+json"

// Field is a single named value inside an item or template. Value holds the
// scalar exactly as the server sent it (string, number, bool, or nil).
type Field struct {
	Name     string `json:"name"`
	Value    any    `json:"value"`
	Prompt   string `json:"prompt,omitempty"`
	Required bool   `json:"required,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Link is a navigable relation. Name is the semantic lookup key used by the
// client (for example "course_list" or "archive_list").
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel,omitempty"`
	Name   string `json:"name,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

// Item is one entity instance inside a document.
type Item struct {
	Href  string  `json:"href"`
	Data  []Field `json:"data,omitempty"`
	Links []Link  `json:"links,omitempty"`
}

// Template is the server-declared editable shape for creating or updating an
// item. Field order is authoritative for rendered forms.
type Template struct {
	Data []Field `json:"data"`
}

// Query describes a server-advertised query endpoint.
type Query struct {
	Href   string  `json:"href"`
	Rel    string  `json:"rel,omitempty"`
	Prompt string  `json:"prompt,omitempty"`
	Data   []Field `json:"data,omitempty"`
}

// Document is one parsed API response. Documents are fetched fresh per view
// transition and discarded after extraction.
type Document struct {
	Href     string    `json:"href"`
	Items    []Item    `json:"items,omitempty"`
	Links    []Link    `json:"links,omitempty"`
	Template *Template `json:"template,omitempty"`
	Queries  []Query   `json:"queries,omitempty"`
}

type documentEnvelope struct {
	Collection Document `json:"collection"`
}

// SubmitEnvelope wraps a template for transmission, mirroring the
// {"template": {"data": [...]}} shape the API expects on POST and PUT.
type SubmitEnvelope struct {
	Template Template `json:"template"`
}

// Envelope wraps the template for submission.
func (t Template) Envelope() SubmitEnvelope {
	return SubmitEnvelope{Template: t}
}

// DecodeDocument parses a {"collection": ...} response body.
func DecodeDocument(r io.Reader) (*Document, error) {
	var envelope documentEnvelope
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("collection: decode document: %w", err)
	}
	return &envelope.Collection, nil
}

// EncodeTemplate writes the submit envelope for a template.
func EncodeTemplate(w io.Writer, t Template) error {
	if err := json.NewEncoder(w).Encode(t.Envelope()); err != nil {
		return fmt.Errorf("collection: encode template: %w", err)
	}
	return nil
}
