package role

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyRoleName     = errors.New("role name cannot be empty")
	ErrRoleNotFound      = errors.New("role not found")
	ErrRoleAlreadyExists = errors.New("role already exists")
	ErrRoleHasUsers      = errors.New("role still has users assigned")
)

// RoleService provides methods for role management
type RoleService struct {
	repo RoleRepository
}

func NewRoleService(repo RoleRepository) *RoleService {
	return &RoleService{
		repo: repo,
	}
}

func (s *RoleService) FindRoles(ctx context.Context) ([]Role, error) {
	return s.repo.FindRoles(ctx)
}

// ListRoles returns every role name in list order
func (s *RoleService) ListRoles(ctx context.Context) ([]string, error) {
	roles, err := s.repo.FindRoles(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}

// CreateRole adds a new role
func (s *RoleService) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	arg.Name = strings.TrimSpace(arg.Name)
	if arg.Name == "" {
		return Role{}, ErrEmptyRoleName
	}
	if arg.DisplayName == "" {
		arg.DisplayName = arg.Name
	}
	return s.repo.CreateRole(ctx, arg)
}

func (s *RoleService) GetRole(ctx context.Context, name string) (Role, error) {
	return s.repo.GetRoleByName(ctx, name)
}

// DeleteRole removes a role that no user holds anymore
func (s *RoleService) DeleteRole(ctx context.Context, name string) error {
	users, err := s.repo.GetRoleUsers(ctx, name)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return ErrRoleHasUsers
	}
	return s.repo.DeleteRole(ctx, name)
}

// GetUserRoles returns the user's role names in list order
func (s *RoleService) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.repo.GetUserRoles(ctx, userID)
}

func (s *RoleService) GetRoleUsers(ctx context.Context, name string) ([]uuid.UUID, error) {
	return s.repo.GetRoleUsers(ctx, name)
}

func (s *RoleService) AddUserToRole(ctx context.Context, name string, userID uuid.UUID) error {
	if name == "" {
		return ErrEmptyRoleName
	}
	return s.repo.AddUserToRole(ctx, name, userID)
}

func (s *RoleService) RemoveUserFromRole(ctx context.Context, name string, userID uuid.UUID) error {
	if name == "" {
		return ErrEmptyRoleName
	}
	return s.repo.RemoveUserFromRole(ctx, name, userID)
}
