package redirect

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
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

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../database/migrations", "000001_init.up.sql")),
		postgres.WithDatabase("redirect_db"),
		postgres.WithUsername("redirect"),
		postgres.WithPassword("pwd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return pool, cleanup
}

func TestPostgresRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("rules", func(t *testing.T) {
		repo := NewPostgresRuleRepository(pool)

		url, err := repo.GetRedirectURL(ctx, "subscriber", KindNormal)
		require.NoError(t, err)
		assert.Empty(t, url)

		require.NoError(t, repo.SetRedirectURL(ctx, "subscriber", KindNormal, "/members"))
		require.NoError(t, repo.SetRedirectURL(ctx, "subscriber", KindNormal, "/members/home"))
		require.NoError(t, repo.SetRedirectURL(ctx, "subscriber", KindFirstLogin, "/welcome"))

		url, err = repo.GetRedirectURL(ctx, "subscriber", KindNormal)
		require.NoError(t, err)
		assert.Equal(t, "/members/home", url)

		rules, err := repo.FindRules(ctx)
		require.NoError(t, err)
		assert.Len(t, rules, 2)

		require.NoError(t, repo.SetRedirectURL(ctx, "subscriber", KindFirstLogin, "  "))
		url, err = repo.GetRedirectURL(ctx, "subscriber", KindFirstLogin)
		require.NoError(t, err)
		assert.Empty(t, url)

		require.NoError(t, repo.DeleteRedirectURL(ctx, "subscriber", KindNormal))
		rules, err = repo.FindRules(ctx)
		require.NoError(t, err)
		assert.Empty(t, rules)
	})

	t.Run("markers", func(t *testing.T) {
		markers := NewMarkerService(NewPostgresMarkerRepository(pool))
		userID := uuid.New()

		require.NoError(t, markers.Mark(ctx, userID))
		require.NoError(t, markers.Mark(ctx, userID))

		marked, err := markers.IsMarked(ctx, userID)
		require.NoError(t, err)
		assert.True(t, marked)

		const attempts = 8
		var wg sync.WaitGroup
		var consumed atomic.Int32
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := markers.Consume(ctx, userID)
				if err == nil && ok {
					consumed.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), consumed.Load())

		require.NoError(t, markers.Mark(ctx, userID))
		require.NoError(t, markers.Clear(ctx, userID))
		marked, err = markers.IsMarked(ctx, userID)
		require.NoError(t, err)
		assert.False(t, marked)
	})
}
