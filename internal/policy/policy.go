// Package policy decides who may do what to which resource.
//
// Every rule lives in Authorize. The function is pure: callers load the
// resource snapshot and the caller's project role from the store before
// asking, and nothing is cached between requests. Anything not explicitly
// allowed is denied.
package policy

import (
	"errors"

	"github.com/Wahidu1/projects-tech-foring/internal/models"
)

var (
	// ErrPermissionDenied means the caller is authenticated but not allowed.
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
	// ErrOwnerChangeNotAllowed is a validation failure: only superusers may reassign a project.
	ErrOwnerChangeNotAllowed = errors.New("only superusers can change the owner")
)

// Identity is the authenticated caller.
type Identity struct {
	UserID      uint64
	IsStaff     bool
	IsSuperuser bool
}

// IdentityOf builds the caller identity from a freshly loaded user record.
func IdentityOf(user *models.User) Identity {
	return Identity{
		UserID:      user.ID,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}
}

type Action string

const (
	ActionRead        Action = "read"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionChangeOwner Action = "change_owner"
	ActionChangeFlags Action = "change_flags"
)

// Resource is a snapshot of the object an action targets.
type Resource interface {
	kind() string
}

// UserResource targets a user account.
type UserResource struct {
	UserID uint64
}

// ProjectResource targets a project. OwnerID is zero on create.
type ProjectResource struct {
	ProjectID uint64
	OwnerID   uint64
}

// MembershipResource targets the member list of a project. CallerRole is the
// caller's own role on that project, or nil when the caller has no row.
type MembershipResource struct {
	ProjectID  uint64
	CallerRole *models.ProjectRole
}

// TaskResource targets a task within a resolved project.
type TaskResource struct {
	ProjectID uint64
}

// CommentResource targets a comment within a resolved task.
type CommentResource struct {
	TaskID   uint64
	AuthorID uint64
}

func (UserResource) kind() string       { return "user" }
func (ProjectResource) kind() string    { return "project" }
func (MembershipResource) kind() string { return "membership" }
func (TaskResource) kind() string       { return "task" }
func (CommentResource) kind() string    { return "comment" }

// Authorize returns nil when id may perform action on res.
func Authorize(id Identity, action Action, res Resource) error {
	if id.UserID == 0 {
		return ErrPermissionDenied
	}

	switch r := res.(type) {
	case UserResource:
		return authorizeUser(id, action, r)
	case ProjectResource:
		return authorizeProject(id, action, r)
	case MembershipResource:
		return authorizeMembership(id, action, r)
	case TaskResource:
		return authorizeTask(action)
	case CommentResource:
		return authorizeComment(action)
	default:
		return ErrPermissionDenied
	}
}

func authorizeUser(id Identity, action Action, r UserResource) error {
	switch action {
	case ActionRead, ActionUpdate, ActionDelete:
		if id.IsSuperuser || id.UserID == r.UserID {
			return nil
		}
	case ActionChangeFlags:
		if id.IsSuperuser {
			return nil
		}
	}
	return ErrPermissionDenied
}

func authorizeProject(id Identity, action Action, r ProjectResource) error {
	switch action {
	case ActionRead, ActionCreate, ActionUpdate:
		return nil
	case ActionChangeOwner:
		if id.IsSuperuser {
			return nil
		}
		return ErrOwnerChangeNotAllowed
	case ActionDelete:
		if id.IsSuperuser || (r.OwnerID != 0 && id.UserID == r.OwnerID) {
			return nil
		}
	}
	return ErrPermissionDenied
}

func authorizeMembership(id Identity, action Action, r MembershipResource) error {
	switch action {
	case ActionRead:
		return nil
	case ActionCreate, ActionUpdate, ActionDelete:
		if r.CallerRole != nil {
			if *r.CallerRole == models.RoleAdmin {
				return nil
			}
			return ErrPermissionDenied
		}
		// superusers without a row are the bootstrap path for the first Admin
		if id.IsSuperuser {
			return nil
		}
	}
	return ErrPermissionDenied
}

// TODO: restrict task mutation to project members once the membership
// bootstrap flow for project creators is settled.
func authorizeTask(action Action) error {
	switch action {
	case ActionRead, ActionCreate, ActionUpdate, ActionDelete:
		return nil
	}
	return ErrPermissionDenied
}

func authorizeComment(action Action) error {
	switch action {
	case ActionRead, ActionCreate, ActionUpdate, ActionDelete:
		return nil
	}
	return ErrPermissionDenied
}
