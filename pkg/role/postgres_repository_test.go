package role

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "redirect_db"
	dbUser := "redirect"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../database/migrations", "000001_init.up.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		slog.Error("Failed to start container:", "err", err)
	}
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	fmt.Println("Connection string:", connString)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestPostgresRoleRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewPostgresRoleRepository(pool)
	userID := uuid.New()

	for _, name := range []string{"administrator", "editor", "author"} {
		_, err := repo.CreateRole(ctx, CreateRoleParams{Name: name, DisplayName: name})
		require.NoError(t, err)
	}

	_, err := repo.CreateRole(ctx, CreateRoleParams{Name: "editor"})
	assert.ErrorIs(t, err, ErrRoleAlreadyExists)

	roles, err := repo.FindRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{roles[0].Position, roles[1].Position, roles[2].Position})

	require.NoError(t, repo.AddUserToRole(ctx, "author", userID))
	require.NoError(t, repo.AddUserToRole(ctx, "editor", userID))
	require.NoError(t, repo.AddUserToRole(ctx, "editor", userID))
	assert.ErrorIs(t, repo.AddUserToRole(ctx, "missing", userID), ErrRoleNotFound)

	names, err := repo.GetUserRoles(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"editor", "author"}, names)

	users, err := repo.GetRoleUsers(ctx, "editor")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userID}, users)

	require.NoError(t, repo.RemoveUserFromRole(ctx, "editor", userID))
	require.NoError(t, repo.DeleteRole(ctx, "author"))

	names, err = repo.GetUserRoles(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = repo.GetRoleByName(ctx, "author")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}
