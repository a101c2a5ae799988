package form

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-hyperclient/pkg/collection"
)

func TestSerializeCollectsInDocumentOrder(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{
		{Name: "courseId", Value: "3"},
		{Name: "courseCode"},
		{Name: "description"},
	}}
	f, err := Build(context.Background(), tpl, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	code, _ := f.Control("courseCode")
	code.Value = "521158S"
	description, _ := f.Control("description")
	description.Value = "Operating systems internals"

	got, err := f.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := collection.Template{Data: []collection.Field{
		{Name: "courseId", Value: "3"},
		{Name: "courseCode", Value: "521158S"},
		{Name: "description", Value: "Operating systems internals"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("template mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeSkipsConfirmAndLocked(t *testing.T) {
	roles := DefaultRoleTable().Clone()
	roles.Assign("name", RoleLockedIdentity)

	tpl := &collection.Template{Data: []collection.Field{
		{Name: "name", Value: "bigboss"},
		{Name: "accessCode"},
	}}
	f, err := Build(context.Background(), tpl, BuildOptions{Roles: roles})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	password, _ := f.Control("accessCode")
	password.Value = "hunter2"
	confirm, _ := f.Control("accessCodeConfirm")
	confirm.Value = "hunter2"

	got, err := f.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := collection.Template{Data: []collection.Field{
		{Name: "accessCode", Value: "hunter2"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("template mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializePasswordMismatch(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{{Name: "accessCode"}}}
	f, err := Build(context.Background(), tpl, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	password, _ := f.Control("accessCode")
	password.Value = "hunter2"
	confirm, _ := f.Control("accessCodeConfirm")
	confirm.Value = "hunter3"

	_, err = f.Serialize()
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Serialize error = %v, want *ValidationError", err)
	}
	if validation.Field != "accessCode" {
		t.Fatalf("validation field = %q, want accessCode", validation.Field)
	}
}

func TestSerializeRequiredField(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{
		{Name: "courseCode", Required: true},
	}}
	f, err := Build(context.Background(), tpl, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, err = f.Serialize()
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Serialize error = %v, want *ValidationError", err)
	}
}

func TestSerializeOmitsEmptyAttachment(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{
		{Name: "date"},
		{Name: "associatedMedia", Required: true},
	}}
	f, err := Build(context.Background(), tpl, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	date, _ := f.Control("date")
	date.Value = "2015-02-21"

	got, err := f.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := collection.Template{Data: []collection.Field{
		{Name: "date", Value: "2015-02-21"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("template mismatch (-want +got):\n%s", diff)
	}
}
