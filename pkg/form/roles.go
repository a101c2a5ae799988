package form

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-hyperclient/pkg/collection"
)

// Role identifies how a template field should be presented and collected.
type Role string

const (
	// RoleText is the default single-line input.
	RoleText Role = "text"
	// RoleCheckbox collects a true/false value.
	RoleCheckbox Role = "checkbox"
	// RolePassword collects a secret and gains a confirm companion control.
	RolePassword Role = "password"
	// RoleReferenceSelect picks one value from an auxiliary reference list.
	RoleReferenceSelect Role = "reference-select"
	// RoleLockedIdentity displays an identifying value that must not change.
	RoleLockedIdentity Role = "locked-identity"
	// RoleConditionalPrivileged is a reference select for privileged callers
	// and a locked display for everyone else.
	RoleConditionalPrivileged Role = "conditional-privileged"
	// RoleLongText is a multi-line input.
	RoleLongText Role = "long-text"
	// RoleBinaryAttachment holds a media location filled by an upload.
	RoleBinaryAttachment Role = "binary-attachment"
	// RoleHiddenIdentity is carried for round-trip but never shown.
	RoleHiddenIdentity Role = "hidden-identity"
)

// Matcher decides whether a role should handle the supplied field.
type Matcher func(field collection.Field) bool

type rule struct {
	role     Role
	priority int
	match    Matcher
	order    int
}

// RoleTable resolves template fields to presentation roles. Explicit name
// assignments win; otherwise registered matchers are evaluated by priority,
// ties falling back to registration order. Unresolved fields default to
// RoleText.
type RoleTable struct {
	mu    sync.RWMutex
	names map[string]Role
	rules []rule
}

// NewRoleTable constructs an empty table.
func NewRoleTable() *RoleTable {
	return &RoleTable{names: make(map[string]Role)}
}

// Assign binds a field name to a role. The latest assignment wins.
func (t *RoleTable) Assign(name string, role Role) {
	if t == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names[trimmed] = role
}

// Match registers a fallback matcher for fields without an explicit
// assignment. Higher priority values take precedence.
func (t *RoleTable) Match(role Role, priority int, matcher Matcher) {
	if t == nil || matcher == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = append(t.rules, rule{
		role:     role,
		priority: priority,
		match:    matcher,
		order:    len(t.rules),
	})
}

// Resolve returns the role for a field.
func (t *RoleTable) Resolve(field collection.Field) Role {
	if t == nil {
		return RoleText
	}
	t.mu.RLock()
	if role, ok := t.names[field.Name]; ok {
		t.mu.RUnlock()
		return role
	}
	rules := append([]rule(nil), t.rules...)
	t.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.role
		}
	}
	return RoleText
}

// Clone returns an independent copy, so per-resource overrides do not leak
// into the shared table.
func (t *RoleTable) Clone() *RoleTable {
	if t == nil {
		return NewRoleTable()
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	clone := &RoleTable{
		names: make(map[string]Role, len(t.names)),
		rules: append([]rule(nil), t.rules...),
	}
	for name, role := range t.names {
		clone.names[name] = role
	}
	return clone
}

// DefaultRoleTable carries the field conventions of the exam-archive API:
// credential fields prompt twice, foreign keys become reference selects,
// identifiers round-trip hidden.
func DefaultRoleTable() *RoleTable {
	t := NewRoleTable()

	t.Assign("accessCode", RolePassword)
	t.Assign("teacherId", RoleReferenceSelect)
	t.Assign("examinerId", RoleReferenceSelect)
	t.Assign("inLanguage", RoleReferenceSelect)
	t.Assign("userType", RoleConditionalPrivileged)
	t.Assign("description", RoleLongText)
	t.Assign("associatedMedia", RoleBinaryAttachment)
	t.Assign("archiveId", RoleHiddenIdentity)
	t.Assign("courseId", RoleHiddenIdentity)
	t.Assign("examId", RoleHiddenIdentity)
	t.Assign("userId", RoleHiddenIdentity)
	t.Assign("identificationNeeded", RoleHiddenIdentity)

	t.Match(RoleCheckbox, 90, func(field collection.Field) bool {
		return strings.EqualFold(field.Type, "checkbox")
	})
	t.Match(RoleHiddenIdentity, 80, func(field collection.Field) bool {
		return strings.EqualFold(field.Type, "hidden")
	})
	t.Match(RoleLongText, 70, func(field collection.Field) bool {
		return strings.EqualFold(field.Type, "textarea")
	})

	return t
}
