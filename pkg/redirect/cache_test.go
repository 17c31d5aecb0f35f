package redirect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingRules() *flakyRuleRepository {
	return &flakyRuleRepository{InMemoryRuleRepository: NewInMemoryRuleRepository(), failRoles: map[string]bool{}}
}

func TestCachedRuleRepositoryHits(t *testing.T) {
	ctx := context.Background()
	next := newCountingRules()
	require.NoError(t, next.SetRedirectURL(ctx, "editor", KindNormal, "/editor"))
	cache := NewCachedRuleRepository(next, 16, time.Minute)

	for i := 0; i < 3; i++ {
		url, err := cache.GetRedirectURL(ctx, "editor", KindNormal)
		require.NoError(t, err)
		assert.Equal(t, "/editor", url)
	}
	assert.Equal(t, int32(1), next.reads.Load())

	// Absent rules are cached too
	for i := 0; i < 2; i++ {
		url, err := cache.GetRedirectURL(ctx, "editor", KindFirstLogin)
		require.NoError(t, err)
		assert.Empty(t, url)
	}
	assert.Equal(t, int32(2), next.reads.Load())
}

func TestCachedRuleRepositoryInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	next := newCountingRules()
	cache := NewCachedRuleRepository(next, 16, time.Minute)

	url, err := cache.GetRedirectURL(ctx, "author", KindNormal)
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, cache.SetRedirectURL(ctx, "author", KindNormal, "/author"))
	url, err = cache.GetRedirectURL(ctx, "author", KindNormal)
	require.NoError(t, err)
	assert.Equal(t, "/author", url)

	require.NoError(t, cache.DeleteRedirectURL(ctx, "author", KindNormal))
	url, err = cache.GetRedirectURL(ctx, "author", KindNormal)
	require.NoError(t, err)
	assert.Empty(t, url)

	rules, err := cache.FindRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestCachedRuleRepositoryExpires(t *testing.T) {
	ctx := context.Background()
	next := newCountingRules()
	cache := NewCachedRuleRepository(next, 16, 20*time.Millisecond)

	_, err := cache.GetRedirectURL(ctx, "editor", KindNormal)
	require.NoError(t, err)

	// Edit behind the cache's back
	require.NoError(t, next.SetRedirectURL(ctx, "editor", KindNormal, "/editor"))

	assert.Eventually(t, func() bool {
		url, err := cache.GetRedirectURL(ctx, "editor", KindNormal)
		return err == nil && url == "/editor"
	}, time.Second, 10*time.Millisecond)
}

func TestCachedRuleRepositoryDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	next := newCountingRules()
	next.failRoles["editor"] = true
	cache := NewCachedRuleRepository(next, 0, time.Minute)

	_, err := cache.GetRedirectURL(ctx, "editor", KindNormal)
	assert.Error(t, err)

	delete(next.failRoles, "editor")
	require.NoError(t, next.SetRedirectURL(ctx, "editor", KindNormal, "/editor"))
	url, err := cache.GetRedirectURL(ctx, "editor", KindNormal)
	require.NoError(t, err)
	assert.Equal(t, "/editor", url)

	cache.Purge()
	url, err = cache.GetRedirectURL(ctx, "editor", KindNormal)
	require.NoError(t, err)
	assert.Equal(t, "/editor", url)
	assert.Equal(t, int32(3), next.reads.Load())
}

func TestCachedRuleRepositorySeparatesRolesWithCollidingOptionNames(t *testing.T) {
	ctx := context.Background()
	next := newCountingRules()
	require.NoError(t, next.SetRedirectURL(ctx, "editor", KindFirstLogin, "/welcome-editor"))
	require.NoError(t, next.SetRedirectURL(ctx, "editor_first", KindNormal, "/editor-first-home"))
	cache := NewCachedRuleRepository(next, 16, time.Minute)

	url, err := cache.GetRedirectURL(ctx, "editor", KindFirstLogin)
	require.NoError(t, err)
	assert.Equal(t, "/welcome-editor", url)

	url, err = cache.GetRedirectURL(ctx, "editor_first", KindNormal)
	require.NoError(t, err)
	assert.Equal(t, "/editor-first-home", url)
	assert.Equal(t, int32(2), next.reads.Load())

	// Writing one rule leaves the other cached entry in place
	require.NoError(t, cache.SetRedirectURL(ctx, "editor_first", KindNormal, "/elsewhere"))
	url, err = cache.GetRedirectURL(ctx, "editor", KindFirstLogin)
	require.NoError(t, err)
	assert.Equal(t, "/welcome-editor", url)
	assert.Equal(t, int32(2), next.reads.Load())
}
