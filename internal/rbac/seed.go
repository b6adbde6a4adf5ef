package rbac

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chronicle-cms/chronicle/internal/platform/db"
)

// Seed installs the permission catalog, the default roles, and their
// bindings in a single transaction. Safe to run repeatedly: existing
// rows are left untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, p := range Catalog() {
			if _, err := tx.Exec(ctx, `
				INSERT INTO permissions (name, description, resource, action)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (name) DO NOTHING`,
				p.Name, p.Description, p.Resource, p.Action); err != nil {
				return fmt.Errorf("rbac: seed permission %s: %w", p.Name, err)
			}
		}

		for _, role := range DefaultRoles() {
			if _, err := tx.Exec(ctx, `
				INSERT INTO roles (name, description)
				VALUES ($1, $2)
				ON CONFLICT (name) DO NOTHING`,
				role.Name, role.Description); err != nil {
				return fmt.Errorf("rbac: seed role %s: %w", role.Name, err)
			}
			for _, grant := range role.Grants {
				if _, err := tx.Exec(ctx, `
					INSERT INTO role_permissions (role_id, permission_id)
					SELECT r.id, p.id FROM roles r, permissions p
					WHERE r.name = $1 AND p.name = $2
					ON CONFLICT DO NOTHING`,
					role.Name, grant); err != nil {
					return fmt.Errorf("rbac: seed grant %s -> %s: %w", role.Name, grant, err)
				}
			}
		}

		return nil
	})
}
