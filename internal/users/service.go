package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, email, name, password string, roleID *int64) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, email, name, string(hash), roleID)
}

func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	pagination := shared.NewPagination(page, perPage, 0)
	items, total, err := s.repo.ListUsers(ctx, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, perPage, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, changes UserChanges) (User, error) {
	if changes.Name != nil {
		trimmed := strings.TrimSpace(*changes.Name)
		changes.Name = &trimmed
	}
	return s.repo.UpdateUser(ctx, id, changes)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}
