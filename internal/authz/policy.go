// Package authz holds the pure authorization rules. Every decision is a
// function of the actor's role and id plus a few fields of the target; no
// store access happens here, so callers must pass the relevant task fields
// in a TaskMeta.
package authz

import "github.com/Ankitaa-Mannaa/task-manager/internal/models"

type Mode string

const (
	// ModeSelf scopes update/delete to the task's owner (admin always may).
	ModeSelf Mode = "self"
	// ModeManaged restricts update to admins and the manager who assigned
	// the task, and delete to admins only.
	ModeManaged Mode = "managed"
)

// ParseMode maps a configuration value onto a policy mode, defaulting to
// owner-scoped access for anything unrecognized.
func ParseMode(s string) Mode {
	if Mode(s) == ModeManaged {
		return ModeManaged
	}
	return ModeSelf
}

// TaskMeta carries the task fields authorization decisions depend on.
// OwnerManagerID is the manager of the task's owner, when known.
type TaskMeta struct {
	OwnerID        uint64
	AssignedBy     *uint64
	OwnerManagerID *uint64
}

type Policy struct {
	Mode Mode
}

// CanCreate reports whether the actor may create a task owned by ownerID.
// Regular users may only create tasks for themselves.
func (p Policy) CanCreate(role models.Role, actorID, ownerID uint64) bool {
	if role == models.RoleManager || role == models.RoleAdmin {
		return true
	}
	return actorID == ownerID
}

// CanView reports list/read visibility: admin sees everything, a manager
// sees tasks owned by their subordinates, a user sees only their own.
func (p Policy) CanView(role models.Role, actorID uint64, t TaskMeta) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return t.OwnerManagerID != nil && *t.OwnerManagerID == actorID
	default:
		return t.OwnerID == actorID
	}
}

func (p Policy) CanUpdate(role models.Role, actorID uint64, t TaskMeta) bool {
	if role == models.RoleAdmin {
		return true
	}
	if p.Mode == ModeManaged {
		return role == models.RoleManager && t.AssignedBy != nil && *t.AssignedBy == actorID
	}
	return t.OwnerID == actorID
}

func (p Policy) CanDelete(role models.Role, actorID uint64, t TaskMeta) bool {
	if role == models.RoleAdmin {
		return true
	}
	if p.Mode == ModeManaged {
		return false
	}
	return t.OwnerID == actorID
}

// CanUpload allows the owner and admins; in managed mode the owner's manager
// may also attach files.
func (p Policy) CanUpload(role models.Role, actorID uint64, t TaskMeta) bool {
	if role == models.RoleAdmin {
		return true
	}
	if t.OwnerID == actorID {
		return true
	}
	if p.Mode == ModeManaged && role == models.RoleManager {
		return t.OwnerManagerID != nil && *t.OwnerManagerID == actorID
	}
	return false
}

// CanAssignRole reports whether the actor may change another user's role.
func CanAssignRole(role models.Role) bool {
	return role == models.RoleAdmin
}
