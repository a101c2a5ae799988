package form

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-hyperclient/pkg/collection"
)

var userTemplate = &collection.Template{Data: []collection.Field{
	{Name: "name", Prompt: "Username", Required: true},
	{Name: "accessCode", Prompt: "Password", Required: true},
	{Name: "userType", Prompt: "User type"},
	{Name: "archiveId", Prompt: "Archive"},
}}

type scriptedOptions map[string][]Option

func (s scriptedOptions) Options(_ context.Context, fieldName string) ([]Option, error) {
	options, ok := s[fieldName]
	if !ok {
		return nil, errors.New("no such list")
	}
	return options, nil
}

func TestBuildNilTemplate(t *testing.T) {
	if _, err := Build(context.Background(), nil, BuildOptions{}); !errors.Is(err, ErrNoTemplate) {
		t.Fatalf("Build(nil template) error = %v, want ErrNoTemplate", err)
	}
	empty := &collection.Template{}
	if _, err := Build(context.Background(), empty, BuildOptions{}); !errors.Is(err, ErrNoTemplate) {
		t.Fatalf("Build(empty template) error = %v, want ErrNoTemplate", err)
	}
}

func TestBuildInjectsConfirmAfterPassword(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{
		{Name: "accessCode", Prompt: "Password", Required: true},
		{Name: "email", Prompt: "Email"},
	}}

	f, err := Build(context.Background(), tpl, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []Control{
		{Name: "accessCode", Prompt: "Password", Role: RolePassword, Required: true},
		{Name: "accessCodeConfirm", Prompt: "Retype Password", Role: RolePassword, Confirm: true},
		{Name: "email", Prompt: "Email", Role: RoleText},
	}
	if diff := cmp.Diff(want, f.Controls); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPasswordNeverPrefills(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{
		{Name: "accessCode", Value: "stale-hash"},
	}}
	initial := []collection.Field{{Name: "accessCode", Value: "stored-hash"}}

	f, err := Build(context.Background(), tpl, BuildOptions{Initial: initial})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := f.Controls[0].Value; got != "" {
		t.Fatalf("password control prefilled with %q", got)
	}
}

func TestBuildPrefillsFromInitialData(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{
		{Name: "courseCode", Value: "template-default"},
		{Name: "creditPoints"},
	}}
	initial := []collection.Field{
		{Name: "courseCode", Value: "521158S"},
		{Name: "creditPoints", Value: 5},
	}

	f, err := Build(context.Background(), tpl, BuildOptions{Initial: initial})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := f.Controls[0].Value; got != "521158S" {
		t.Fatalf("courseCode = %q, want initial data value", got)
	}
	if got := f.Controls[1].Value; got != "5" {
		t.Fatalf("creditPoints = %q, want stringified number", got)
	}
}

func TestBuildReferenceSelectOptions(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{
		{Name: "inLanguage", Prompt: "Language"},
	}}
	source := scriptedOptions{
		"inLanguage": {{Value: "fi", Label: "Finnish"}, {Value: "en", Label: "English"}},
	}

	f, err := Build(context.Background(), tpl, BuildOptions{Options: source})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []Option{{Value: "fi", Label: "Finnish"}, {Value: "en", Label: "English"}}
	if diff := cmp.Diff(want, f.Controls[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildReferenceSelectWithoutSource(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{{Name: "teacherId"}}}
	if _, err := Build(context.Background(), tpl, BuildOptions{}); err == nil {
		t.Fatal("Build allowed a reference select with no option source")
	}
}

func TestBuildConditionalPrivileged(t *testing.T) {
	source := scriptedOptions{
		"userType":  {{Value: "basic", Label: "basic"}, {Value: "super", Label: "super"}},
		"archiveId": {{Value: "1", Label: "Information Processing Science"}},
	}
	roles := DefaultRoleTable().Clone()
	roles.Assign("name", RoleLockedIdentity)
	roles.Assign("archiveId", RoleConditionalPrivileged)

	privileged, err := Build(context.Background(), userTemplate, BuildOptions{
		ID:         "user-form",
		Roles:      roles,
		Privileged: true,
		Options:    source,
	})
	if err != nil {
		t.Fatalf("Build(privileged): %v", err)
	}
	userType, _ := privileged.Control("userType")
	if userType.Role != RoleReferenceSelect || len(userType.Options) != 2 {
		t.Fatalf("privileged userType = %+v, want a populated select", userType)
	}
	archive, _ := privileged.Control("archiveId")
	if archive.Role != RoleReferenceSelect || len(archive.Options) != 1 {
		t.Fatalf("privileged archiveId = %+v, want a populated select", archive)
	}

	basic, err := Build(context.Background(), userTemplate, BuildOptions{
		ID:    "user-form",
		Roles: roles,
	})
	if err != nil {
		t.Fatalf("Build(basic): %v", err)
	}
	userType, _ = basic.Control("userType")
	if userType.Role != RoleLockedIdentity || !userType.ReadOnly {
		t.Fatalf("basic userType = %+v, want a locked display", userType)
	}
	name, _ := basic.Control("name")
	if !name.ReadOnly {
		t.Fatalf("user-form name control is editable: %+v", name)
	}
}

func TestBuildHiddenIdentity(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{
		{Name: "examId", Value: "7"},
		{Name: "date", Prompt: "Date"},
	}}

	f, err := Build(context.Background(), tpl, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	examID, _ := f.Control("examId")
	if !examID.Hidden || examID.Value != "7" {
		t.Fatalf("examId = %+v, want hidden with carried value", examID)
	}
}

type stubUploader struct {
	location string
	err      error

	gotHref     string
	gotFilename string
	gotContent  string
}

func (u *stubUploader) Upload(_ context.Context, href, filename string, content io.Reader) (string, error) {
	u.gotHref = href
	u.gotFilename = filename
	raw, _ := io.ReadAll(content)
	u.gotContent = string(raw)
	if u.err != nil {
		return "", u.err
	}
	return u.location, nil
}

func TestAttach(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{
		{Name: "associatedMedia", Prompt: "Exam file"},
	}}
	f, err := Build(context.Background(), tpl, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	uploader := &stubUploader{location: "/static/media/exam.pdf"}
	f.BindUpload(uploader)

	location, err := f.Attach(context.Background(), "associatedMedia", "/exams/7/", "exam.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if location != "/static/media/exam.pdf" {
		t.Fatalf("Attach location = %q", location)
	}
	if uploader.gotHref != "/exams/7/" || uploader.gotFilename != "exam.pdf" || uploader.gotContent != "pdf bytes" {
		t.Fatalf("uploader saw %+v", uploader)
	}

	control, _ := f.Control("associatedMedia")
	if control.Value != "/static/media/exam.pdf" || !control.ReadOnly {
		t.Fatalf("attachment control after upload = %+v", control)
	}
}

func TestAttachRejectsWrongControl(t *testing.T) {
	tpl := &collection.Template{Data: []collection.Field{{Name: "date"}}}
	f, err := Build(context.Background(), tpl, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	f.BindUpload(&stubUploader{})

	if _, err := f.Attach(context.Background(), "date", "/exams/7/", "x", strings.NewReader("")); err == nil {
		t.Fatal("Attach accepted a non-attachment control")
	}
	if _, err := f.Attach(context.Background(), "missing", "/exams/7/", "x", strings.NewReader("")); err == nil {
		t.Fatal("Attach accepted an unknown control")
	}
}
