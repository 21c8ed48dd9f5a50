package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRoleRepo struct {
	roles  map[int64]Role
	nextID int64
}

func newMemoryRoleRepo() *memoryRoleRepo {
	return &memoryRoleRepo{roles: make(map[int64]Role)}
}

func (r *memoryRoleRepo) List(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *memoryRoleRepo) Get(ctx context.Context, id int64) (Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return role, nil
}

func (r *memoryRoleRepo) Create(ctx context.Context, role Role) (Role, error) {
	r.nextID++
	role.ID = r.nextID
	r.roles[role.ID] = role
	return role, nil
}

func (r *memoryRoleRepo) Update(ctx context.Context, role Role) (Role, error) {
	if _, ok := r.roles[role.ID]; !ok {
		return Role{}, ErrNotFound
	}
	r.roles[role.ID] = role
	return role, nil
}

func (r *memoryRoleRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.roles[id]; !ok {
		return ErrNotFound
	}
	delete(r.roles, id)
	return nil
}

func TestCreateFlattensParentPermissions(t *testing.T) {
	repo := newMemoryRoleRepo()
	svc := NewService(repo)

	parent, err := svc.Create(context.Background(), Role{
		Name:        "Content Reviewer",
		Permissions: []string{"edit_content", "view_analytics"},
		IsActive:    true,
	})
	require.NoError(t, err)

	child, err := svc.Create(context.Background(), Role{
		Name:         "Content Publisher",
		Permissions:  []string{"publish_content", "edit_content"},
		ParentRoleID: &parent.ID,
		IsActive:     true,
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"edit_content", "publish_content", "view_analytics"}, child.Permissions)
}

func TestCreateRejectsMissingParent(t *testing.T) {
	repo := newMemoryRoleRepo()
	svc := NewService(repo)

	missing := int64(42)
	_, err := svc.Create(context.Background(), Role{
		Name:         "Orphan",
		ParentRoleID: &missing,
	})
	require.Error(t, err)
}

func TestDeleteRefusesSystemRole(t *testing.T) {
	repo := newMemoryRoleRepo()
	svc := NewService(repo)

	role, err := repo.Create(context.Background(), Role{Name: "Member", IsSystemRole: true, IsActive: true})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), role.ID)
	require.ErrorIs(t, err, ErrSystemRole)

	_, err = repo.Get(context.Background(), role.ID)
	require.NoError(t, err, "system role must still exist")
}

func TestDeleteRemovesRegularRole(t *testing.T) {
	repo := newMemoryRoleRepo()
	svc := NewService(repo)

	role, err := repo.Create(context.Background(), Role{Name: "Temp", IsActive: true})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), role.ID))
	_, err = repo.Get(context.Background(), role.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
