package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

// RepositoryPort defines data access for authorization decisions and
// role-permission administration.
type RepositoryPort interface {
	// UserGrants returns the permission set reachable through the user's
	// role. A missing user or a user without a role yields an empty set,
	// not an error.
	UserGrants(ctx context.Context, userID int64) ([]Permission, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermissionByName(ctx context.Context, name string) (Permission, error)
	RolePermissions(ctx context.Context, roleID int64) ([]Permission, error)
	AttachPermission(ctx context.Context, roleID, permissionID int64) error
	DetachPermission(ctx context.Context, roleID, permissionID int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserGrants joins the user's role bindings to their permissions.
func (r *Repository) UserGrants(ctx context.Context, userID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.description, p.resource, p.action
		FROM users u
		JOIN role_permissions rp ON rp.role_id = u.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE u.id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// ListPermissions returns the full catalog ordered by name.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, resource, action FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// GetPermissionByName fetches a single permission.
func (r *Repository) GetPermissionByName(ctx context.Context, name string) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, resource, action FROM permissions WHERE name = $1`, name).
		Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Action)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, shared.ErrNotFound
		}
		return Permission{}, err
	}
	return p, nil
}

// RolePermissions returns the permissions bound to a role.
func (r *Repository) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.description, p.resource, p.action
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.name`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// AttachPermission binds a permission to a role. Re-attaching an already
// bound pair is a no-op success.
func (r *Repository) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`, roleID, permissionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil
			case "23503":
				return shared.ErrNotFound
			}
		}
		return err
	}
	return nil
}

// DetachPermission removes a binding. Returns shared.ErrNotFound when the
// pair was not bound.
func (r *Repository) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanPermissions(rows pgx.Rows) ([]Permission, error) {
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Action); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}
