package posts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

// RepositoryPort defines data access methods for posts.
type RepositoryPort interface {
	CreatePost(ctx context.Context, post *Post) (*Post, error)
	ListPosts(ctx context.Context, limit, offset int) ([]Post, int, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	UpdatePost(ctx context.Context, id int64, changes PostChanges) (*Post, error)
	DeletePost(ctx context.Context, id int64) error
	OwnerID(ctx context.Context, id int64) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const postColumns = `id, title, content, published, author_id, category_id, created_at, updated_at`

// CreatePost inserts a new post.
func (r *Repository) CreatePost(ctx context.Context, post *Post) (*Post, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title, content, published, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+postColumns,
		post.Title, post.Content, post.Published, post.AuthorID, post.CategoryID)
	created, err := scanPost(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return created, nil
}

// ListPosts returns a page of posts ordered by creation time, newest first.
func (r *Repository) ListPosts(ctx context.Context, limit, offset int) ([]Post, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Published, &p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetPost fetches a post by ID.
func (r *Repository) GetPost(ctx context.Context, id int64) (*Post, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// UpdatePost applies non-nil changes and returns the updated row.
func (r *Repository) UpdatePost(ctx context.Context, id int64, changes PostChanges) (*Post, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE posts SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			published = COALESCE($4, published),
			category_id = COALESCE($5, category_id),
			updated_at = now()
		WHERE id = $1
		RETURNING `+postColumns,
		id, changes.Title, changes.Content, changes.Published, changes.CategoryID)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post by ID.
func (r *Repository) DeletePost(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// OwnerID resolves a post's author, satisfying rbac.OwnerLookup.
func (r *Repository) OwnerID(ctx context.Context, id int64) (int64, error) {
	var authorID int64
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM posts WHERE id = $1`, id).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return authorID, nil
}

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Published, &p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
