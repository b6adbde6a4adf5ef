package posts

import (
	"context"
	"errors"
	"strings"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

// Service handles post business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create stores a new post authored by the given user.
func (s *Service) Create(ctx context.Context, authorID int64, title, content string, published bool, categoryID *int64) (*Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("posts: title required")
	}
	return s.repo.CreatePost(ctx, &Post{
		Title:      title,
		Content:    content,
		Published:  published,
		AuthorID:   authorID,
		CategoryID: categoryID,
	})
}

// List returns a page of posts with the total count.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Post, shared.Pagination, error) {
	pagination := shared.NewPagination(page, perPage, 0)
	items, total, err := s.repo.ListPosts(ctx, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, perPage, total), nil
}

// Get fetches one post.
func (s *Service) Get(ctx context.Context, id int64) (*Post, error) {
	return s.repo.GetPost(ctx, id)
}

// Update applies changes to a post. Authorization happens before this
// call; the service only cares about data validity.
func (s *Service) Update(ctx context.Context, id int64, changes PostChanges) (*Post, error) {
	if changes.Title != nil {
		trimmed := strings.TrimSpace(*changes.Title)
		if trimmed == "" {
			return nil, errors.New("posts: title required")
		}
		changes.Title = &trimmed
	}
	return s.repo.UpdatePost(ctx, id, changes)
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeletePost(ctx, id)
}

// OwnerID resolves a post's author, satisfying rbac.OwnerLookup.
func (s *Service) OwnerID(ctx context.Context, id int64) (int64, error) {
	return s.repo.OwnerID(ctx, id)
}
