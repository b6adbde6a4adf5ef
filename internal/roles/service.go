package roles

import (
	"context"
	"strings"
)

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name, description string) (Role, error) {
	return s.repo.CreateRole(ctx, strings.TrimSpace(name), strings.TrimSpace(description))
}

func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, name, description string) (Role, error) {
	return s.repo.UpdateRole(ctx, id, strings.TrimSpace(name), strings.TrimSpace(description))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}
