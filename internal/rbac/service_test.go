package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

type binding struct {
	roleID, permissionID int64
}

// mockRepository keeps roles, permissions, bindings and user role
// assignments in memory.
type mockRepository struct {
	permissions map[int64]Permission
	userRoles   map[int64]int64 // userID -> roleID; absent = no role or no user
	bindings    []binding

	grantsErr error
	attachErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		permissions: make(map[int64]Permission),
		userRoles:   make(map[int64]int64),
	}
}

func (m *mockRepository) addPermission(id int64, resource, action string) Permission {
	p := Permission{ID: id, Name: resource + ":" + action, Resource: resource, Action: action}
	m.permissions[id] = p
	return p
}

func (m *mockRepository) UserGrants(ctx context.Context, userID int64) ([]Permission, error) {
	if m.grantsErr != nil {
		return nil, m.grantsErr
	}
	roleID, ok := m.userRoles[userID]
	if !ok {
		return nil, nil
	}
	var perms []Permission
	for _, b := range m.bindings {
		if b.roleID == roleID {
			perms = append(perms, m.permissions[b.permissionID])
		}
	}
	return perms, nil
}

func (m *mockRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	perms := make([]Permission, 0, len(m.permissions))
	for _, p := range m.permissions {
		perms = append(perms, p)
	}
	return perms, nil
}

func (m *mockRepository) GetPermissionByName(ctx context.Context, name string) (Permission, error) {
	for _, p := range m.permissions {
		if p.Name == name {
			return p, nil
		}
	}
	return Permission{}, shared.ErrNotFound
}

func (m *mockRepository) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	var perms []Permission
	for _, b := range m.bindings {
		if b.roleID == roleID {
			perms = append(perms, m.permissions[b.permissionID])
		}
	}
	return perms, nil
}

func (m *mockRepository) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	if m.attachErr != nil {
		return m.attachErr
	}
	for _, b := range m.bindings {
		if b.roleID == roleID && b.permissionID == permissionID {
			return nil
		}
	}
	m.bindings = append(m.bindings, binding{roleID: roleID, permissionID: permissionID})
	return nil
}

func (m *mockRepository) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	for i, b := range m.bindings {
		if b.roleID == roleID && b.permissionID == permissionID {
			m.bindings = append(m.bindings[:i], m.bindings[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// mockOwners maps post IDs to author IDs.
type mockOwners struct {
	owners    map[int64]int64
	lookupErr error
}

func (m *mockOwners) OwnerID(ctx context.Context, resourceID int64) (int64, error) {
	if m.lookupErr != nil {
		return 0, m.lookupErr
	}
	owner, ok := m.owners[resourceID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return owner, nil
}

const (
	roleEditorID = int64(10)
	roleAdminID  = int64(11)
)

func editorFixture() (*mockRepository, *Service) {
	repo := newMockRepository()
	create := repo.addPermission(1, ResourcePost, ActionCreate)
	read := repo.addPermission(2, ResourcePost, ActionRead)
	updateOwn := repo.addPermission(3, ResourcePost, ActionUpdateOwn)
	deleteOwn := repo.addPermission(4, ResourcePost, ActionDeleteOwn)
	updateAny := repo.addPermission(5, ResourcePost, ActionUpdateAny)
	deleteAny := repo.addPermission(6, ResourcePost, ActionDeleteAny)

	for _, p := range []Permission{create, read, updateOwn, deleteOwn} {
		repo.bindings = append(repo.bindings, binding{roleID: roleEditorID, permissionID: p.ID})
	}
	for _, p := range []Permission{updateAny, deleteAny} {
		repo.bindings = append(repo.bindings, binding{roleID: roleAdminID, permissionID: p.ID})
	}
	return repo, NewService(repo)
}

func TestHasPermissionGranted(t *testing.T) {
	repo, svc := editorFixture()
	repo.userRoles[1] = roleEditorID

	ok, err := svc.HasPermission(context.Background(), 1, ResourcePost, ActionCreate)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasPermissionLacking(t *testing.T) {
	repo, svc := editorFixture()
	repo.userRoles[1] = roleEditorID

	ok, err := svc.HasPermission(context.Background(), 1, ResourcePost, ActionUpdateAny)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermissionUnknownUser(t *testing.T) {
	_, svc := editorFixture()

	ok, err := svc.HasPermission(context.Background(), 99, ResourcePost, ActionRead)
	require.NoError(t, err)
	assert.False(t, ok, "missing user must be a plain deny, not an error")
}

func TestHasPermissionUserWithoutRole(t *testing.T) {
	repo, svc := editorFixture()
	// User exists in the application but never got a role: the mock
	// reports an empty grant set, same as the SQL join would.
	delete(repo.userRoles, 1)

	for _, action := range []string{ActionCreate, ActionRead, ActionUpdateOwn, ActionUpdateAny} {
		ok, err := svc.HasPermission(context.Background(), 1, ResourcePost, action)
		require.NoError(t, err)
		assert.False(t, ok, "action %s", action)
	}
}

func TestHasPermissionEmptyRole(t *testing.T) {
	repo, svc := editorFixture()
	const bareRole = int64(30)
	repo.userRoles[7] = bareRole

	ok, err := svc.HasPermission(context.Background(), 7, ResourcePost, ActionRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermissionStoreError(t *testing.T) {
	repo, svc := editorFixture()
	repo.userRoles[1] = roleEditorID
	repo.grantsErr = errors.New("connection refused")

	ok, err := svc.HasPermission(context.Background(), 1, ResourcePost, ActionRead)
	require.Error(t, err)
	assert.False(t, ok, "infrastructure failure must fail closed")
}

func TestAssignRevokeRoundTrip(t *testing.T) {
	repo, svc := editorFixture()
	repo.userRoles[1] = roleEditorID
	updateAny, err := repo.GetPermissionByName(context.Background(), "post:update_any")
	require.NoError(t, err)

	ok, err := svc.HasPermission(context.Background(), 1, ResourcePost, ActionUpdateAny)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, svc.AssignPermission(context.Background(), roleEditorID, updateAny.ID))
	ok, err = svc.HasPermission(context.Background(), 1, ResourcePost, ActionUpdateAny)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.RevokePermission(context.Background(), roleEditorID, updateAny.ID))
	ok, err = svc.HasPermission(context.Background(), 1, ResourcePost, ActionUpdateAny)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAssignPermissionIdempotent(t *testing.T) {
	repo, svc := editorFixture()
	updateAny, err := repo.GetPermissionByName(context.Background(), "post:update_any")
	require.NoError(t, err)

	before := len(repo.bindings)
	require.NoError(t, svc.AssignPermission(context.Background(), roleEditorID, updateAny.ID))
	require.NoError(t, svc.AssignPermission(context.Background(), roleEditorID, updateAny.ID))
	assert.Equal(t, before+1, len(repo.bindings), "double assign must leave a single binding")
}

func TestRevokeUnboundPermission(t *testing.T) {
	repo, svc := editorFixture()
	deleteAny, err := repo.GetPermissionByName(context.Background(), "post:delete_any")
	require.NoError(t, err)

	err = svc.RevokePermission(context.Background(), roleEditorID, deleteAny.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCanModifyAnyOverridesOwnership(t *testing.T) {
	repo, svc := editorFixture()
	repo.userRoles[1] = roleAdminID
	owners := &mockOwners{owners: map[int64]int64{7: 2}} // post 7 owned by someone else

	ok, err := svc.CanModify(context.Background(), 1, 7, owners, ResourcePost, ActionUpdateOwn, ActionUpdateAny)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanModifyOwnerWithOwnPermission(t *testing.T) {
	repo, svc := editorFixture()
	repo.userRoles[1] = roleEditorID
	owners := &mockOwners{owners: map[int64]int64{7: 1}}

	ok, err := svc.CanModify(context.Background(), 1, 7, owners, ResourcePost, ActionUpdateOwn, ActionUpdateAny)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanModifyOwnerWithoutOwnPermission(t *testing.T) {
	repo, svc := editorFixture()
	const readOnlyRole = int64(20)
	read, err := repo.GetPermissionByName(context.Background(), "post:read")
	require.NoError(t, err)
	repo.bindings = append(repo.bindings, binding{roleID: readOnlyRole, permissionID: read.ID})
	repo.userRoles[1] = readOnlyRole
	owners := &mockOwners{owners: map[int64]int64{7: 1}}

	ok, err := svc.CanModify(context.Background(), 1, 7, owners, ResourcePost, ActionUpdateOwn, ActionUpdateAny)
	require.NoError(t, err)
	assert.False(t, ok, "ownership without the own grant yields nothing")
}

func TestCanModifyNonOwnerWithoutAny(t *testing.T) {
	repo, svc := editorFixture()
	repo.userRoles[2] = roleEditorID
	owners := &mockOwners{owners: map[int64]int64{7: 1}}

	ok, err := svc.CanModify(context.Background(), 2, 7, owners, ResourcePost, ActionUpdateOwn, ActionUpdateAny)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanModifyMissingResource(t *testing.T) {
	repo, svc := editorFixture()
	repo.userRoles[1] = roleAdminID // holds update_any, still denied
	owners := &mockOwners{owners: map[int64]int64{}}

	ok, err := svc.CanModify(context.Background(), 1, 404, owners, ResourcePost, ActionUpdateOwn, ActionUpdateAny)
	require.NoError(t, err)
	assert.False(t, ok, "a missing resource can never be modified")
}

func TestCanModifyOwnerLookupError(t *testing.T) {
	repo, svc := editorFixture()
	repo.userRoles[1] = roleAdminID
	owners := &mockOwners{lookupErr: errors.New("connection refused")}

	ok, err := svc.CanModify(context.Background(), 1, 7, owners, ResourcePost, ActionUpdateOwn, ActionUpdateAny)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestCanModifyDeletePair(t *testing.T) {
	repo, svc := editorFixture()
	repo.userRoles[1] = roleEditorID
	repo.userRoles[2] = roleEditorID
	owners := &mockOwners{owners: map[int64]int64{7: 1}}

	// Editor owns post 7: delete allowed through delete_own.
	ok, err := svc.CanModify(context.Background(), 1, 7, owners, ResourcePost, ActionDeleteOwn, ActionDeleteAny)
	require.NoError(t, err)
	assert.True(t, ok)

	// A different editor with the same role is denied on the same post.
	ok, err = svc.CanModify(context.Background(), 2, 7, owners, ResourcePost, ActionDeleteOwn, ActionDeleteAny)
	require.NoError(t, err)
	assert.False(t, ok)
}
