package browser

import (
	"github.com/goliatone/go-hyperclient/pkg/form"
	"github.com/goliatone/go-hyperclient/pkg/session"
)

// Resource profiles carried as content-type parameters on mutating requests.
const (
	UserProfile    = "http://atlassian.virtues.fi:8090/display/PWP/PWP11#User+profile"
	ArchiveProfile = "http://atlassian.virtues.fi:8090/display/PWP/PWP11#Archive+profile"
	CourseProfile  = "http://atlassian.virtues.fi:8090/display/PWP/PWP11#Course+p"
	ExamProfile    = "http://atlassian.virtues.fi:8090/display/PWP/PWP11#Exams+profile"
)

// Resource describes how one resource type is listed, opened and edited.
// The descriptors below mirror the exam-archive API hierarchy: archives own
// courses, courses own exams, users stand alone.
type Resource struct {
	// Slot identifies the list view in the navigation trail; ItemSlot the
	// detail view.
	Slot     string
	ItemSlot string
	Singular string

	FormID  string
	Profile string

	// Columns are the fields extracted into list cells, TitleFields the
	// fields joined into an item's display title.
	Columns     []string
	TitleFields []string

	// ChildLink names the item link leading to the nested list; Child
	// describes that list's resource type.
	ChildLink  string
	ChildTitle string
	Child      *Resource

	CreateLabel string
	// CanWrite gates create/edit affordances on the active session.
	CanWrite func(session.Session) bool
	// CanDelete gates the delete affordance.
	CanDelete func(session.Session) bool
	// ConfirmDelete marks destructive cascades that need confirmation.
	ConfirmDelete bool
	// Attachment marks resources whose create flow continues into an
	// upload form at the returned location.
	Attachment bool

	// Roles derives the resource's role table from the shared one.
	Roles func(base *form.RoleTable) *form.RoleTable
}

func notBasic(sess session.Session) bool {
	return sess.UserType != "" && sess.UserType != session.UserTypeBasic
}

func superOnly(sess session.Session) bool {
	return sess.Super()
}

// Users describes the user list behind the API entry point.
func Users() *Resource {
	return &Resource{
		Slot:        "users",
		ItemSlot:    "user",
		Singular:    "user",
		FormID:      "user-form",
		Profile:     UserProfile,
		Columns:     []string{"name", "userType", "userId"},
		TitleFields: []string{"name"},
		CreateLabel: "New user",
		CanWrite:    notBasic,
		CanDelete:   superOnly,
		Roles: func(base *form.RoleTable) *form.RoleTable {
			roles := base.Clone()
			roles.Assign("name", form.RoleLockedIdentity)
			roles.Assign("archiveId", form.RoleConditionalPrivileged)
			return roles
		},
	}
}

// Exams describes the exam list nested under a course.
func Exams() *Resource {
	return &Resource{
		Slot:        "exams",
		ItemSlot:    "exam",
		Singular:    "exam",
		FormID:      "exam-form",
		Profile:     ExamProfile,
		Columns:     []string{"date", "examinerName", "associatedMedia", "inLanguage"},
		TitleFields: []string{"date"},
		CreateLabel: "New exam",
		CanWrite:    notBasic,
		CanDelete:   superOnly,
		Attachment:  true,
	}
}

// Courses describes the course list nested under an archive.
func Courses() *Resource {
	return &Resource{
		Slot:        "courses",
		ItemSlot:    "course",
		Singular:    "course",
		FormID:      "course-form",
		Profile:     CourseProfile,
		Columns:     []string{"courseId", "courseCode", "name", "creditPoints"},
		TitleFields: []string{"name"},
		ChildLink:   "exam_list",
		ChildTitle:  "Exams of the course",
		Child:       Exams(),
		CreateLabel: "New course",
		CanWrite:    notBasic,
		CanDelete:   superOnly,
	}
}

// Archives describes the archive list, the entry view for super users.
func Archives() *Resource {
	return &Resource{
		Slot:          "archives",
		ItemSlot:      "archive",
		Singular:      "archive",
		FormID:        "archive-form",
		Profile:       ArchiveProfile,
		Columns:       []string{"archiveId", "name", "organisationName"},
		TitleFields:   []string{"name"},
		ChildLink:     "course_list",
		ChildTitle:    "Courses of the archive",
		Child:         Courses(),
		CreateLabel:   "New archive",
		CanWrite:      notBasic,
		CanDelete:     superOnly,
		ConfirmDelete: true,
	}
}

func (r *Resource) roleTable(base *form.RoleTable) *form.RoleTable {
	if r.Roles == nil {
		return base
	}
	return r.Roles(base)
}

func (r *Resource) canWrite(sess session.Session) bool {
	if r.CanWrite == nil {
		return true
	}
	return r.CanWrite(sess)
}

func (r *Resource) canDelete(sess session.Session) bool {
	if r.CanDelete == nil {
		return false
	}
	return r.CanDelete(sess)
}
