package users

import "time"

// User represents a user account for management. RoleID is nil for
// accounts that have not been assigned a role yet; such accounts hold
// no permissions at all.
type User struct {
	ID        int64
	Email     string
	Name      string
	RoleID    *int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserChanges carries the mutable fields of a user. Nil fields are left
// untouched.
type UserChanges struct {
	Name     *string
	RoleID   *int64
	IsActive *bool
}
