package rbac

import (
	"context"
	"errors"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

// OwnerLookup resolves the owning user of a resource instance. It is
// implemented per ownable resource kind, typically by that kind's
// repository. A missing instance reports shared.ErrNotFound.
type OwnerLookup interface {
	OwnerID(ctx context.Context, resourceID int64) (int64, error)
}

// Service answers authorization questions from current role bindings.
// Decisions are stateless and computed fresh on every call; only
// infrastructure faults surface as errors, every normal negative
// outcome is a plain false.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// HasPermission reports whether the user's role grants (resource, action).
// A missing user or a user without a role is denied, never an error.
func (s *Service) HasPermission(ctx context.Context, userID int64, resource, action string) (bool, error) {
	grants, err := s.repo.UserGrants(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, g := range grants {
		if g.Resource == resource && g.Action == action {
			return true, nil
		}
	}
	return false, nil
}

// CanModify decides modify-rights on a specific resource instance by
// combining the "any" permission with ownership plus the "own"
// permission. The "any" grant wins regardless of ownership; ownership
// without the "own" grant yields nothing. A missing instance is denied.
func (s *Service) CanModify(ctx context.Context, userID, resourceID int64, owners OwnerLookup, resource, ownAction, anyAction string) (bool, error) {
	ownerID, err := owners.OwnerID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	anyGrant, err := s.HasPermission(ctx, userID, resource, anyAction)
	if err != nil {
		return false, err
	}
	if anyGrant {
		return true, nil
	}

	if ownerID != userID {
		return false, nil
	}
	return s.HasPermission(ctx, userID, resource, ownAction)
}

// ListPermissions returns the stored permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// RolePermissions returns the permissions currently bound to a role.
func (s *Service) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	return s.repo.RolePermissions(ctx, roleID)
}

// AssignPermission binds a permission to a role. Assigning an already
// held permission is a no-op success.
func (s *Service) AssignPermission(ctx context.Context, roleID, permissionID int64) error {
	return s.repo.AttachPermission(ctx, roleID, permissionID)
}

// RevokePermission removes a binding. Revoking a permission the role
// does not hold surfaces the store's not-found error.
func (s *Service) RevokePermission(ctx context.Context, roleID, permissionID int64) error {
	return s.repo.DetachPermission(ctx, roleID, permissionID)
}
