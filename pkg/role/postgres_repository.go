package role

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRoleRepository implements RoleRepository using PostgreSQL
type PostgresRoleRepository struct {
	db DBTX
}

// NewPostgresRoleRepository creates a new PostgreSQL role repository
func NewPostgresRoleRepository(db DBTX) *PostgresRoleRepository {
	return &PostgresRoleRepository{db: db}
}

func (r *PostgresRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, display_name, position, created_at
		FROM roles
		ORDER BY position, created_at, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.DisplayName, &role.Position, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *PostgresRoleRepository) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	var role Role
	err := r.db.QueryRow(ctx, `
		INSERT INTO roles (id, name, display_name, position, created_at)
		VALUES ($1, $2, $3,
			COALESCE($4::int, (SELECT COALESCE(MAX(position) + 1, 0) FROM roles)),
			NOW() AT TIME ZONE 'UTC')
		RETURNING id, name, display_name, position, created_at
	`, uuid.New(), arg.Name, arg.DisplayName, arg.Position).
		Scan(&role.ID, &role.Name, &role.DisplayName, &role.Position, &role.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Role{}, ErrRoleAlreadyExists
		}
		return Role{}, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

func (r *PostgresRoleRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	var role Role
	err := r.db.QueryRow(ctx, `
		SELECT id, name, display_name, position, created_at
		FROM roles
		WHERE name = $1
	`, name).Scan(&role.ID, &role.Name, &role.DisplayName, &role.Position, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrRoleNotFound
		}
		return Role{}, fmt.Errorf("failed to get role %s: %w", name, err)
	}
	return role, nil
}

func (r *PostgresRoleRepository) DeleteRole(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM roles WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete role %s: %w", name, err)
	}
	return nil
}

func (r *PostgresRoleRepository) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.position, r.created_at, r.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan role name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *PostgresRoleRepository) GetRoleUsers(ctx context.Context, name string) ([]uuid.UUID, error) {
	if _, err := r.GetRoleByName(ctx, name); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT ur.user_id
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE r.name = $1
		ORDER BY ur.user_id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query role users: %w", err)
	}
	defer rows.Close()

	users := make([]uuid.UUID, 0)
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}

func (r *PostgresRoleRepository) AddUserToRole(ctx context.Context, name string, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $2, id FROM roles WHERE name = $1
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, name, userID)
	if err != nil {
		return fmt.Errorf("failed to add user to role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either already assigned or the role is missing.
		if _, err := r.GetRoleByName(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRoleRepository) RemoveUserFromRole(ctx context.Context, name string, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM user_roles
		WHERE user_id = $2 AND role_id = (SELECT id FROM roles WHERE name = $1)
	`, name, userID)
	if err != nil {
		return fmt.Errorf("failed to remove user from role: %w", err)
	}
	return nil
}
