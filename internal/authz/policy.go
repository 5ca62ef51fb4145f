// Package authz evaluates a single declarative policy table instead of
// per-route role conditionals.
package authz

import "gcsepal-backend/internal/model"

// Action names one protected operation.
type Action string

const (
	ActionCourseCreate      Action = "course.create"
	ActionCourseEdit        Action = "course.edit"
	ActionCourseArchive     Action = "course.archive"
	ActionCourseExport      Action = "course.export"
	ActionCourseImport      Action = "course.import"
	ActionLessonView        Action = "lesson.view"
	ActionLessonEdit        Action = "lesson.edit"
	ActionAdminStats        Action = "admin.stats"
	ActionProgressAnalytics Action = "progress.analytics"
)

// Rule describes who may perform an action. Roles grants by role alone;
// OwnerOK additionally admits the resource owner; EnrolledOK admits users
// actively enrolled in the parent course.
type Rule struct {
	Roles      []string
	OwnerOK    bool
	EnrolledOK bool
}

// Context carries the caller facts a rule may consult.
type Context struct {
	Role     string
	IsOwner  bool
	Enrolled bool
}

var policy = map[Action]Rule{
	ActionCourseCreate:      {Roles: []string{model.RoleAdmin, model.RoleTeacher}},
	ActionCourseEdit:        {Roles: []string{model.RoleAdmin}, OwnerOK: true},
	ActionCourseArchive:     {Roles: []string{model.RoleAdmin}, OwnerOK: true},
	ActionCourseExport:      {Roles: []string{model.RoleAdmin}, OwnerOK: true},
	ActionCourseImport:      {Roles: []string{model.RoleAdmin}, OwnerOK: true},
	ActionLessonView:        {Roles: []string{model.RoleAdmin, model.RoleTeacher}, EnrolledOK: true},
	ActionLessonEdit:        {Roles: []string{model.RoleAdmin}, OwnerOK: true},
	ActionAdminStats:        {Roles: []string{model.RoleAdmin, model.RoleTeacher}},
	ActionProgressAnalytics: {Roles: []string{model.RoleStudent, model.RoleTeacher, model.RoleAdmin}},
}

// Allowed reports whether the caller context satisfies the rule for action.
// Unknown actions are denied.
func Allowed(action Action, ctx Context) bool {
	rule, ok := policy[action]
	if !ok {
		return false
	}
	for _, role := range rule.Roles {
		if ctx.Role == role {
			return true
		}
	}
	if rule.OwnerOK && ctx.IsOwner {
		return true
	}
	if rule.EnrolledOK && ctx.Enrolled {
		return true
	}
	return false
}
