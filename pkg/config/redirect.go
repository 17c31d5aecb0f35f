package config

import (
	"log/slog"
	"strings"
	"time"
)

var persistenceTypes = []string{"memory", "inmem", "file", "postgres", "postgresql"}

// RedirectConfig holds the login redirect service configuration
type RedirectConfig struct {
	// AdminURL is the host's admin landing page. A requested URL equal to it
	// does not count as an explicit destination.
	AdminURL     string `env:"REDIRECT_ADMIN_URL" env-default:"http://localhost:4000/admin/"`
	Persistence  string `env:"REDIRECT_PERSISTENCE" env-default:"memory"`
	DataDir      string `env:"REDIRECT_DATA_DIR" env-default:"./data"`
	CacheSize    int    `env:"REDIRECT_CACHE_SIZE" env-default:"512"`
	CacheTTL     string `env:"REDIRECT_CACHE_TTL" env-default:"PT30S"`
	AtomicMarker bool   `env:"REDIRECT_ATOMIC_MARKER" env-default:"true"`
	AutoMigrate  bool   `env:"REDIRECT_AUTO_MIGRATE" env-default:"true"`
	LogLevel     string `env:"LOG_LEVEL" env-default:"info"`
}

// ParseCacheTTL parses the rule cache TTL. Zero disables the cache.
func (c RedirectConfig) ParseCacheTTL() (time.Duration, error) {
	if c.CacheTTL == "" || c.CacheTTL == "0" {
		return 0, nil
	}
	return parseDurationISO8601(c.CacheTTL)
}

// UsesPostgres reports whether the configured persistence needs a database pool
func (c RedirectConfig) UsesPostgres() bool {
	return c.Persistence == "postgres" || c.Persistence == "postgresql"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func (c RedirectConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c RedirectConfig) Validate() error {
	checks := []*ValidationError{
		RequireValidURL("REDIRECT_ADMIN_URL", c.AdminURL),
		RequireOneOf("REDIRECT_PERSISTENCE", c.Persistence, persistenceTypes),
		RequireNonNegative("REDIRECT_CACHE_SIZE", c.CacheSize),
		c.validateCacheTTL(),
	}
	if c.Persistence == "file" {
		checks = append(checks, RequireNonEmpty("REDIRECT_DATA_DIR", c.DataDir))
	}
	return Validate(checks...)
}

func (c RedirectConfig) validateCacheTTL() *ValidationError {
	ttl, err := c.ParseCacheTTL()
	if err != nil {
		return invalid("REDIRECT_CACHE_TTL", "invalid duration: %v", err)
	}
	return RequireNonNegativeDuration("REDIRECT_CACHE_TTL", ttl)
}
