package rbac

// Resource kinds known to the permission catalog.
const (
	ResourcePost     = "post"
	ResourceCategory = "category"
	ResourceKeyword  = "keyword"
	ResourceUser     = "user"
)

// Actions known to the permission catalog. Ownable kinds use the
// own/any variants of update and delete, the rest use the plain forms.
const (
	ActionCreate    = "create"
	ActionRead      = "read"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionUpdateOwn = "update_own"
	ActionUpdateAny = "update_any"
	ActionDeleteOwn = "delete_own"
	ActionDeleteAny = "delete_any"
)

// Default role names.
const (
	RoleAdmin  = "Admin"
	RoleEditor = "Editor"
	RoleUser   = "User"
)

// Catalog returns the fixed vocabulary of permissions. Seed-time
// reference data, never generated at runtime.
func Catalog() []Permission {
	return []Permission{
		{Name: "post:create", Description: "Create new post", Resource: ResourcePost, Action: ActionCreate},
		{Name: "post:read", Description: "Read post", Resource: ResourcePost, Action: ActionRead},
		{Name: "post:update_own", Description: "Update own post", Resource: ResourcePost, Action: ActionUpdateOwn},
		{Name: "post:update_any", Description: "Update any post", Resource: ResourcePost, Action: ActionUpdateAny},
		{Name: "post:delete_own", Description: "Delete own post", Resource: ResourcePost, Action: ActionDeleteOwn},
		{Name: "post:delete_any", Description: "Delete any post", Resource: ResourcePost, Action: ActionDeleteAny},
		{Name: "category:create", Description: "Create category", Resource: ResourceCategory, Action: ActionCreate},
		{Name: "category:read", Description: "Read category", Resource: ResourceCategory, Action: ActionRead},
		{Name: "category:update", Description: "Update category", Resource: ResourceCategory, Action: ActionUpdate},
		{Name: "category:delete", Description: "Delete category", Resource: ResourceCategory, Action: ActionDelete},
		{Name: "keyword:create", Description: "Create keyword", Resource: ResourceKeyword, Action: ActionCreate},
		{Name: "keyword:read", Description: "Read keyword", Resource: ResourceKeyword, Action: ActionRead},
		{Name: "keyword:update", Description: "Update keyword", Resource: ResourceKeyword, Action: ActionUpdate},
		{Name: "keyword:delete", Description: "Delete keyword", Resource: ResourceKeyword, Action: ActionDelete},
		{Name: "user:read", Description: "Read user", Resource: ResourceUser, Action: ActionRead},
		{Name: "user:update", Description: "Update user", Resource: ResourceUser, Action: ActionUpdate},
	}
}

// RoleSeed pairs a default role with the permission names it holds.
type RoleSeed struct {
	Name        string
	Description string
	Grants      []string
}

// DefaultRoles returns the built-in roles and their grants.
func DefaultRoles() []RoleSeed {
	return []RoleSeed{
		{
			Name:        RoleAdmin,
			Description: "Administrator with full access",
			Grants: []string{
				"post:create", "post:read", "post:update_any", "post:delete_any",
				"category:create", "category:read", "category:update", "category:delete",
				"keyword:create", "keyword:read", "keyword:update", "keyword:delete",
				"user:read", "user:update",
			},
		},
		{
			Name:        RoleEditor,
			Description: "Editor can create and manage own posts",
			Grants: []string{
				"post:create", "post:read", "post:update_own", "post:delete_own",
				"category:read",
				"keyword:read", "keyword:create", "keyword:update", "keyword:delete",
				"user:read",
			},
		},
		{
			Name:        RoleUser,
			Description: "Regular user",
			Grants: []string{
				"post:read", "category:read", "keyword:read", "user:read",
			},
		},
	}
}
