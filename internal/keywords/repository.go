package keywords

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

// RepositoryPort defines data access methods for keywords.
type RepositoryPort interface {
	ListKeywords(ctx context.Context) ([]Keyword, error)
	GetKeyword(ctx context.Context, id int64) (*Keyword, error)
	CreateKeyword(ctx context.Context, name string) (*Keyword, error)
	UpdateKeyword(ctx context.Context, id int64, name string) (*Keyword, error)
	DeleteKeyword(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListKeywords returns all keywords ordered by name.
func (r *Repository) ListKeywords(ctx context.Context) ([]Keyword, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM keywords ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Keyword
	for rows.Next() {
		var k Keyword
		if err := rows.Scan(&k.ID, &k.Name, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// GetKeyword fetches a keyword by ID.
func (r *Repository) GetKeyword(ctx context.Context, id int64) (*Keyword, error) {
	var k Keyword
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM keywords WHERE id = $1`, id).
		Scan(&k.ID, &k.Name, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &k, nil
}

// CreateKeyword inserts a new keyword.
func (r *Repository) CreateKeyword(ctx context.Context, name string) (*Keyword, error) {
	var k Keyword
	err := r.pool.QueryRow(ctx, `
		INSERT INTO keywords (name) VALUES ($1)
		RETURNING id, name, created_at, updated_at`, name).
		Scan(&k.ID, &k.Name, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return &k, nil
}

// UpdateKeyword renames a keyword.
func (r *Repository) UpdateKeyword(ctx context.Context, id int64, name string) (*Keyword, error) {
	var k Keyword
	err := r.pool.QueryRow(ctx, `
		UPDATE keywords SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at`, id, name).
		Scan(&k.ID, &k.Name, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return &k, nil
}

// DeleteKeyword removes a keyword by ID.
func (r *Repository) DeleteKeyword(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM keywords WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
