package users

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
	CreateUser(ctx context.Context, email, name, passwordHash string, roleID *int64) (User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (User, error)
	UpdateUser(ctx context.Context, id int64, changes UserChanges) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, role_id, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.RoleID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *Repository) CreateUser(ctx context.Context, email, name, passwordHash string, roleID *int64) (User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, role_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		email, name, passwordHash, roleID)

	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return User{}, shared.ErrDuplicate
			case "23503":
				return User{}, shared.ErrNotFound
			}
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return out, total, nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *Repository) UpdateUser(ctx context.Context, id int64, changes UserChanges) (User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name      = COALESCE($2, name),
		    role_id   = COALESCE($3, role_id),
		    is_active = COALESCE($4, is_active),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, changes.Name, changes.RoleID, changes.IsActive)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return User{}, shared.ErrNotFound
		}
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
