package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

type RepositoryPort interface {
	CreateRole(ctx context.Context, name, description string) (Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	UpdateRole(ctx context.Context, id int64, name, description string) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, name, description, created_at, updated_at`

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}

func (r *Repository) CreateRole(ctx context.Context, name, description string) (Role, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description)
		VALUES ($1, $2)
		RETURNING `+roleColumns, name, description)

	role, err := scanRole(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Role{}, shared.ErrDuplicate
		}
		return Role{}, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return out, nil
}

func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, shared.ErrNotFound
	}
	if err != nil {
		return Role{}, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

func (r *Repository) UpdateRole(ctx context.Context, id int64, name, description string) (Role, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE roles
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+roleColumns, id, name, description)

	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, shared.ErrNotFound
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Role{}, shared.ErrDuplicate
		}
		return Role{}, fmt.Errorf("update role: %w", err)
	}
	return role, nil
}

func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
