package role

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Role is a named permission group. Position fixes the order roles are listed in.
type Role struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateRoleParams struct {
	Name        string
	DisplayName string
	// Position is optional; nil appends the role after the existing ones.
	Position *int
}

// RoleRepository defines the interface for role storage operations
type RoleRepository interface {
	// FindRoles returns all roles ordered by position, then creation time
	FindRoles(ctx context.Context) ([]Role, error)
	CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	DeleteRole(ctx context.Context, name string) error

	// GetUserRoles returns the names of the user's roles in role order
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	GetRoleUsers(ctx context.Context, name string) ([]uuid.UUID, error)
	AddUserToRole(ctx context.Context, name string, userID uuid.UUID) error
	RemoveUserFromRole(ctx context.Context, name string, userID uuid.UUID) error
}

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}
