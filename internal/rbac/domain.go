package rbac

import "time"

// Role represents a named bundle of permissions assigned to users.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability, named resource:action.
type Permission struct {
	ID          int64
	Name        string
	Description string
	Resource    string
	Action      string
}

// RolePermission ties a permission to a role. The (RoleID, PermissionID)
// pair is unique: a role cannot hold the same permission twice.
type RolePermission struct {
	RoleID       int64
	PermissionID int64
	CreatedAt    time.Time
}

// Requirement declares a permission an operation accepts. A guarded
// operation lists one or more requirements with OR semantics.
type Requirement struct {
	Resource string
	Action   string
}

// Name returns the catalog name for the requirement.
func (r Requirement) Name() string {
	return r.Resource + ":" + r.Action
}

// Require is shorthand for building a Requirement.
func Require(resource, action string) Requirement {
	return Requirement{Resource: resource, Action: action}
}
