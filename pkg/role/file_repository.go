package role

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileRoleRepository implements RoleRepository using file-based storage
type FileRoleRepository struct {
	dataDir   string
	roles     map[string]*Role
	userRoles map[string]map[uuid.UUID]struct{} // role name -> users
	mutex     sync.RWMutex
}

// roleData represents the structure of data stored in the JSON file
type roleData struct {
	Roles       []*Role          `json:"roles"`
	Assignments []roleAssignment `json:"assignments"`
}

type roleAssignment struct {
	Role   string    `json:"role"`
	UserID uuid.UUID `json:"user_id"`
}

// NewFileRoleRepository creates a new file-based role repository
func NewFileRoleRepository(dataDir string) (*FileRoleRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRoleRepository{
		dataDir:   dataDir,
		roles:     make(map[string]*Role),
		userRoles: make(map[string]map[uuid.UUID]struct{}),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.orderedRoles(), nil
}

func (r *FileRoleRepository) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.roles[arg.Name]; exists {
		return Role{}, ErrRoleAlreadyExists
	}

	role := &Role{
		ID:          uuid.New(),
		Name:        arg.Name,
		DisplayName: arg.DisplayName,
		Position:    nextPosition(r.orderedRoles(), arg.Position),
		CreatedAt:   time.Now().UTC(),
	}
	r.roles[role.Name] = role
	r.userRoles[role.Name] = make(map[uuid.UUID]struct{})

	if err := r.save(); err != nil {
		delete(r.roles, role.Name)
		delete(r.userRoles, role.Name)
		return Role{}, fmt.Errorf("failed to save: %w", err)
	}
	return *role, nil
}

func (r *FileRoleRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	role, exists := r.roles[name]
	if !exists {
		return Role{}, ErrRoleNotFound
	}
	return *role, nil
}

func (r *FileRoleRepository) DeleteRole(ctx context.Context, name string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.roles[name]; !exists {
		return nil
	}
	delete(r.roles, name)
	delete(r.userRoles, name)
	return r.save()
}

func (r *FileRoleRepository) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var names []string
	for _, role := range r.orderedRoles() {
		if _, ok := r.userRoles[role.Name][userID]; ok {
			names = append(names, role.Name)
		}
	}
	return names, nil
}

func (r *FileRoleRepository) GetRoleUsers(ctx context.Context, name string) ([]uuid.UUID, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	users, exists := r.userRoles[name]
	if !exists {
		return nil, ErrRoleNotFound
	}
	result := make([]uuid.UUID, 0, len(users))
	for userID := range users {
		result = append(result, userID)
	}
	return result, nil
}

func (r *FileRoleRepository) AddUserToRole(ctx context.Context, name string, userID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	users, exists := r.userRoles[name]
	if !exists {
		return ErrRoleNotFound
	}
	if _, assigned := users[userID]; assigned {
		return nil
	}
	users[userID] = struct{}{}

	if err := r.save(); err != nil {
		delete(users, userID)
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func (r *FileRoleRepository) RemoveUserFromRole(ctx context.Context, name string, userID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	users, exists := r.userRoles[name]
	if !exists {
		return nil
	}
	if _, assigned := users[userID]; !assigned {
		return nil
	}
	delete(users, userID)

	if err := r.save(); err != nil {
		users[userID] = struct{}{}
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func (r *FileRoleRepository) orderedRoles() []Role {
	roles := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, *role)
	}
	sortRoles(roles)
	return roles
}

// load reads role data from file
func (r *FileRoleRepository) load() error {
	filePath := filepath.Join(r.dataDir, "roles.json")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var rd roleData
	if err := json.Unmarshal(data, &rd); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	for _, role := range rd.Roles {
		r.roles[role.Name] = role
		r.userRoles[role.Name] = make(map[uuid.UUID]struct{})
	}
	for _, a := range rd.Assignments {
		if users, ok := r.userRoles[a.Role]; ok {
			users[a.UserID] = struct{}{}
		}
	}
	return nil
}

// save writes role data to file atomically
func (r *FileRoleRepository) save() error {
	ordered := r.orderedRoles()
	rd := roleData{
		Roles:       make([]*Role, 0, len(ordered)),
		Assignments: make([]roleAssignment, 0),
	}
	for i := range ordered {
		rd.Roles = append(rd.Roles, &ordered[i])
		for userID := range r.userRoles[ordered[i].Name] {
			rd.Assignments = append(rd.Assignments, roleAssignment{Role: ordered[i].Name, UserID: userID})
		}
	}

	jsonData, err := json.MarshalIndent(rd, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	tempFile := filepath.Join(r.dataDir, "roles.json.tmp")
	if err := os.WriteFile(tempFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, filepath.Join(r.dataDir, "roles.json")); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
