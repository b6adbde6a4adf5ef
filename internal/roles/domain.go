package roles

import "time"

// Role is the administrative view of a role. The permission grants
// behind it live in the rbac package.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
