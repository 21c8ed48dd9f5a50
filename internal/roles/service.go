package roles

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// Service handles role business logic.
//
// Permission inheritance is flattened at save time: when a role names a
// parent, the parent's stored permission set is unioned into the role's own
// set once. Evaluation never walks the parent chain.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// Get fetches one role.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new role, flattening inherited permissions.
func (s *Service) Create(ctx context.Context, role Role) (Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	flattened, err := s.flatten(ctx, role)
	if err != nil {
		return Role{}, err
	}
	return s.repo.Create(ctx, flattened)
}

// Update replaces a role's fields, flattening inherited permissions.
func (s *Service) Update(ctx context.Context, role Role) (Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	flattened, err := s.flatten(ctx, role)
	if err != nil {
		return Role{}, err
	}
	return s.repo.Update(ctx, flattened)
}

// Delete removes a role. System roles are refused before touching the store.
func (s *Service) Delete(ctx context.Context, id int64) error {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystemRole {
		return ErrSystemRole
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) flatten(ctx context.Context, role Role) (Role, error) {
	if role.ParentRoleID == nil {
		role.Permissions = dedupe(role.Permissions)
		return role, nil
	}
	parent, err := s.repo.Get(ctx, *role.ParentRoleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Role{}, errors.New("roles: parent role does not exist")
		}
		return Role{}, err
	}
	role.Permissions = dedupe(append(role.Permissions, parent.Permissions...))
	return role, nil
}

func dedupe(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
