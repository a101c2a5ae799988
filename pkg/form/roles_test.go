package form

import (
	"testing"

	"github.com/goliatone/go-hyperclient/pkg/collection"
)

func TestRoleTableExplicitAssignmentWins(t *testing.T) {
	table := NewRoleTable()
	table.Assign("description", RoleLongText)
	table.Match(RoleCheckbox, 100, func(collection.Field) bool { return true })

	got := table.Resolve(collection.Field{Name: "description", Type: "checkbox"})
	if got != RoleLongText {
		t.Fatalf("Resolve returned %q, want %q", got, RoleLongText)
	}
}

func TestRoleTableMatcherPriority(t *testing.T) {
	table := NewRoleTable()
	table.Match(RoleLongText, 10, func(collection.Field) bool { return true })
	table.Match(RoleCheckbox, 50, func(collection.Field) bool { return true })

	if got := table.Resolve(collection.Field{Name: "anything"}); got != RoleCheckbox {
		t.Fatalf("Resolve returned %q, want higher-priority %q", got, RoleCheckbox)
	}
}

func TestRoleTableTieBreaksOnRegistrationOrder(t *testing.T) {
	table := NewRoleTable()
	table.Match(RoleLongText, 10, func(collection.Field) bool { return true })
	table.Match(RoleCheckbox, 10, func(collection.Field) bool { return true })

	if got := table.Resolve(collection.Field{Name: "anything"}); got != RoleLongText {
		t.Fatalf("Resolve returned %q, want first-registered %q", got, RoleLongText)
	}
}

func TestRoleTableDefaultsToText(t *testing.T) {
	if got := NewRoleTable().Resolve(collection.Field{Name: "unknown"}); got != RoleText {
		t.Fatalf("Resolve returned %q, want %q", got, RoleText)
	}
}

func TestRoleTableCloneIsIndependent(t *testing.T) {
	base := NewRoleTable()
	base.Assign("name", RoleText)

	clone := base.Clone()
	clone.Assign("name", RoleLockedIdentity)

	field := collection.Field{Name: "name"}
	if got := base.Resolve(field); got != RoleText {
		t.Fatalf("base table changed after clone override: got %q", got)
	}
	if got := clone.Resolve(field); got != RoleLockedIdentity {
		t.Fatalf("clone override not applied: got %q", got)
	}
}

func TestDefaultRoleTable(t *testing.T) {
	table := DefaultRoleTable()

	tests := []struct {
		field collection.Field
		want  Role
	}{
		{collection.Field{Name: "accessCode"}, RolePassword},
		{collection.Field{Name: "teacherId"}, RoleReferenceSelect},
		{collection.Field{Name: "examinerId"}, RoleReferenceSelect},
		{collection.Field{Name: "inLanguage"}, RoleReferenceSelect},
		{collection.Field{Name: "userType"}, RoleConditionalPrivileged},
		{collection.Field{Name: "description"}, RoleLongText},
		{collection.Field{Name: "associatedMedia"}, RoleBinaryAttachment},
		{collection.Field{Name: "archiveId"}, RoleHiddenIdentity},
		{collection.Field{Name: "userId"}, RoleHiddenIdentity},
		{collection.Field{Name: "identificationNeeded"}, RoleHiddenIdentity},
		{collection.Field{Name: "visibility", Type: "checkbox"}, RoleCheckbox},
		{collection.Field{Name: "token", Type: "hidden"}, RoleHiddenIdentity},
		{collection.Field{Name: "courseCode"}, RoleText},
	}
	for _, tc := range tests {
		if got := table.Resolve(tc.field); got != tc.want {
			t.Errorf("Resolve(%q) = %q, want %q", tc.field.Name, got, tc.want)
		}
	}
}
