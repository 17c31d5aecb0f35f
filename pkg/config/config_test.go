package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectConfigDefaults(t *testing.T) {
	var cfg RedirectConfig
	require.NoError(t, cleanenv.ReadEnv(&cfg))

	assert.Equal(t, "http://localhost:4000/admin/", cfg.AdminURL)
	assert.Equal(t, "memory", cfg.Persistence)
	assert.Equal(t, 512, cfg.CacheSize)
	assert.True(t, cfg.AtomicMarker)
	assert.NoError(t, cfg.Validate())

	ttl, err := cfg.ParseCacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, ttl)
}

func TestRedirectConfigFromEnv(t *testing.T) {
	t.Setenv("REDIRECT_ADMIN_URL", "https://example.com/wp-admin/")
	t.Setenv("REDIRECT_PERSISTENCE", "file")
	t.Setenv("REDIRECT_DATA_DIR", "/var/lib/redirect")
	t.Setenv("REDIRECT_CACHE_TTL", "2m")
	t.Setenv("REDIRECT_ATOMIC_MARKER", "false")

	var cfg RedirectConfig
	require.NoError(t, cleanenv.ReadEnv(&cfg))

	assert.Equal(t, "https://example.com/wp-admin/", cfg.AdminURL)
	assert.Equal(t, "file", cfg.Persistence)
	assert.False(t, cfg.AtomicMarker)
	assert.NoError(t, cfg.Validate())

	ttl, err := cfg.ParseCacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, ttl)
}

func TestRedirectConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RedirectConfig)
		field  string
	}{
		{"missing admin url", func(c *RedirectConfig) { c.AdminURL = "" }, "REDIRECT_ADMIN_URL"},
		{"unknown persistence", func(c *RedirectConfig) { c.Persistence = "redis" }, "REDIRECT_PERSISTENCE"},
		{"file without dir", func(c *RedirectConfig) { c.Persistence = "file"; c.DataDir = "" }, "REDIRECT_DATA_DIR"},
		{"negative cache size", func(c *RedirectConfig) { c.CacheSize = -1 }, "REDIRECT_CACHE_SIZE"},
		{"bad ttl", func(c *RedirectConfig) { c.CacheTTL = "soon" }, "REDIRECT_CACHE_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := RedirectConfig{
				AdminURL:    "http://localhost:4000/admin/",
				Persistence: "memory",
				DataDir:     "./data",
				CacheSize:   512,
				CacheTTL:    "PT30S",
			}
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestParseCacheTTLZeroDisables(t *testing.T) {
	for _, v := range []string{"", "0", "PT0S"} {
		ttl, err := RedirectConfig{CacheTTL: v}.ParseCacheTTL()
		require.NoError(t, err, v)
		assert.Zero(t, ttl, v)
	}
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, RedirectConfig{LogLevel: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, RedirectConfig{LogLevel: "warning"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, RedirectConfig{LogLevel: ""}.SlogLevel())
}

func TestDatabaseConfigURLs(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, Database: "redirect_db", User: "redirect", Password: "pwd", Schema: "public"}

	assert.Equal(t, "postgres://redirect:pwd@db:5433/redirect_db?sslmode=disable&search_path=public,public", d.ToDatabaseURL())
	assert.Equal(t, "pgx5://redirect:pwd@db:5433/redirect_db?sslmode=disable&search_path=public", d.ToMigrateURL())

	dbCfg := d.ToDbConfig()
	assert.Equal(t, uint16(5433), dbCfg.Port)
	assert.Equal(t, "redirect_db", dbCfg.Database)

	assert.NoError(t, d.Validate())
	assert.Error(t, DatabaseConfig{}.Validate())
}

func TestJWTConfig(t *testing.T) {
	var j JWTConfig
	require.NoError(t, cleanenv.ReadEnv(&j))

	expiry, err := j.ParseTokenExpiry()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, expiry)
	assert.Equal(t, AdminRoles{"admin", "superadmin"}, j.AdminRoleNames())
	assert.NoError(t, j.Validate())

	j.TokenExpiry = "forever"
	assert.Error(t, j.Validate())
}

func TestAdminRoles(t *testing.T) {
	roles := ParseAdminRoles(" owner , ,admin ")
	assert.Equal(t, AdminRoles{"owner", "admin"}, roles)
	assert.Equal(t, DefaultAdminRoles, ParseAdminRoles(" , "))

	assert.True(t, roles.Contains("OWNER"))
	assert.False(t, roles.Contains("editor"))
	assert.True(t, roles.AnyOf([]string{"editor", "admin"}))
	assert.False(t, roles.AnyOf(nil))
	assert.Equal(t, "owner", roles.Primary())
	assert.Equal(t, "admin", AdminRoles(nil).Primary())
}

func TestValidateCollectsEveryError(t *testing.T) {
	assert.NoError(t, Validate(nil, RequireNonEmpty("A", "set")))

	err := Validate(RequireNonEmpty("A", ""), nil, RequireValidPort("B", 0))
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 2)
	assert.Equal(t, "A", errs[0].Field)
	assert.Equal(t, "B", errs[1].Field)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a,, b ,"))
	assert.Nil(t, SplitList(""))
}

func TestRequireRedirectTarget(t *testing.T) {
	valid := []string{"", "/dashboard", "/wp-admin/profile.php?x=1", "https://example.com/welcome"}
	for _, v := range valid {
		assert.Nil(t, RequireRedirectTarget("url", v), v)
	}

	invalid := []string{"dashboard", "//evil.example.com", "https://", "http://%zz"}
	for _, v := range invalid {
		assert.NotNil(t, RequireRedirectTarget("url", v), v)
	}
}

func TestPrefixConfig(t *testing.T) {
	p := DefaultV1Prefixes()
	assert.Equal(t, "/api/v1/redirect/decision", p.Decision)
	assert.NoError(t, p.Validate())

	t.Setenv("API_PREFIX_BASE", "/hooks/")
	t.Setenv("API_PREFIX_ROLES", "/admin/roles")
	p = LoadPrefixConfig()
	assert.Equal(t, "/hooks/rules", p.Rules)
	assert.Equal(t, "/admin/roles", p.Roles)

	p.Markers = "markers"
	assert.Error(t, p.Validate())
}
