package categories

import (
	"context"
	"errors"
	"strings"
)

// Service handles category business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// Get fetches one category.
func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// Create stores a new category.
func (s *Service) Create(ctx context.Context, name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("categories: name required")
	}
	return s.repo.CreateCategory(ctx, name, strings.TrimSpace(description))
}

// Update changes an existing category.
func (s *Service) Update(ctx context.Context, id int64, name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("categories: name required")
	}
	return s.repo.UpdateCategory(ctx, id, name, strings.TrimSpace(description))
}

// Delete removes a category.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}
