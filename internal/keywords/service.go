package keywords

import (
	"context"
	"errors"
	"strings"
)

// Service handles keyword business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all keywords.
func (s *Service) List(ctx context.Context) ([]Keyword, error) {
	return s.repo.ListKeywords(ctx)
}

// Get fetches one keyword.
func (s *Service) Get(ctx context.Context, id int64) (*Keyword, error) {
	return s.repo.GetKeyword(ctx, id)
}

// Create stores a new keyword. Names are normalised to lower case.
func (s *Service) Create(ctx context.Context, name string) (*Keyword, error) {
	name = normalise(name)
	if name == "" {
		return nil, errors.New("keywords: name required")
	}
	return s.repo.CreateKeyword(ctx, name)
}

// Update renames a keyword.
func (s *Service) Update(ctx context.Context, id int64, name string) (*Keyword, error) {
	name = normalise(name)
	if name == "" {
		return nil, errors.New("keywords: name required")
	}
	return s.repo.UpdateKeyword(ctx, id, name)
}

// Delete removes a keyword.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteKeyword(ctx, id)
}

func normalise(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
