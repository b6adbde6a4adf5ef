package categories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

// RepositoryPort defines data access methods for categories.
type RepositoryPort interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, name, description string) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, name, description string) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategory fetches a category by ID.
func (r *Repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, created_at, updated_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts a new category.
func (r *Repository) CreateCategory(ctx context.Context, name, description string) (*Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, description) VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at`, name, description).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapUnique(err)
	}
	return &c, nil
}

// UpdateCategory updates an existing category.
func (r *Repository) UpdateCategory(ctx context.Context, id int64, name, description string) (*Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `
		UPDATE categories SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, created_at, updated_at`, id, name, description).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, mapUnique(err)
	}
	return &c, nil
}

// DeleteCategory removes a category by ID.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}
