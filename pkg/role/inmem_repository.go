package role

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRoleRepository implements RoleRepository using in-memory storage
type InMemoryRoleRepository struct {
	mu        sync.RWMutex
	roles     map[string]Role                   // name -> Role
	roleUsers map[string]map[uuid.UUID]struct{} // name -> set of userID
}

// NewInMemoryRoleRepository creates a new in-memory role repository
func NewInMemoryRoleRepository() *InMemoryRoleRepository {
	return &InMemoryRoleRepository{
		roles:     make(map[string]Role),
		roleUsers: make(map[string]map[uuid.UUID]struct{}),
	}
}

// FindRoles returns all roles in list order
func (r *InMemoryRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.orderedRoles(), nil
}

// CreateRole creates a new role
func (r *InMemoryRoleRepository) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.roles[arg.Name]; exists {
		return Role{}, ErrRoleAlreadyExists
	}

	role := Role{
		ID:          uuid.New(),
		Name:        arg.Name,
		DisplayName: arg.DisplayName,
		Position:    nextPosition(r.orderedRoles(), arg.Position),
		CreatedAt:   time.Now().UTC(),
	}
	r.roles[role.Name] = role
	r.roleUsers[role.Name] = make(map[uuid.UUID]struct{})
	return role, nil
}

func (r *InMemoryRoleRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[name]
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	return role, nil
}

// DeleteRole deletes a role and its assignments
func (r *InMemoryRoleRepository) DeleteRole(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.roles, name)
	delete(r.roleUsers, name)
	return nil
}

func (r *InMemoryRoleRepository) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, role := range r.orderedRoles() {
		if _, ok := r.roleUsers[role.Name][userID]; ok {
			names = append(names, role.Name)
		}
	}
	return names, nil
}

func (r *InMemoryRoleRepository) GetRoleUsers(ctx context.Context, name string) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users, ok := r.roleUsers[name]
	if !ok {
		return nil, ErrRoleNotFound
	}

	result := make([]uuid.UUID, 0, len(users))
	for userID := range users {
		result = append(result, userID)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].String() < result[j].String()
	})
	return result, nil
}

// AddUserToRole adds a user to a role
func (r *InMemoryRoleRepository) AddUserToRole(ctx context.Context, name string, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roles[name]; !ok {
		return ErrRoleNotFound
	}
	r.roleUsers[name][userID] = struct{}{}
	return nil
}

// RemoveUserFromRole removes a user from a role
func (r *InMemoryRoleRepository) RemoveUserFromRole(ctx context.Context, name string, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if users, ok := r.roleUsers[name]; ok {
		delete(users, userID)
	}
	return nil
}

func (r *InMemoryRoleRepository) orderedRoles() []Role {
	roles := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, role)
	}
	sortRoles(roles)
	return roles
}

// sortRoles orders roles by position, then creation time, then name
func sortRoles(roles []Role) {
	sort.SliceStable(roles, func(i, j int) bool {
		if roles[i].Position != roles[j].Position {
			return roles[i].Position < roles[j].Position
		}
		if !roles[i].CreatedAt.Equal(roles[j].CreatedAt) {
			return roles[i].CreatedAt.Before(roles[j].CreatedAt)
		}
		return roles[i].Name < roles[j].Name
	})
}

// nextPosition returns the requested position, or one past the last role.
func nextPosition(ordered []Role, requested *int) int {
	if requested != nil {
		return *requested
	}
	if len(ordered) == 0 {
		return 0
	}
	return ordered[len(ordered)-1].Position + 1
}
