package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/login-redirect/pkg/client"
	"github.com/tendant/login-redirect/pkg/config"
	"github.com/tendant/login-redirect/pkg/database"
	"github.com/tendant/login-redirect/pkg/redirect"
	redirectapi "github.com/tendant/login-redirect/pkg/redirect/api"
	"github.com/tendant/login-redirect/pkg/role"
	roleapi "github.com/tendant/login-redirect/pkg/role/api"
)

type Config struct {
	RedirectConfig config.RedirectConfig
	DatabaseConfig config.DatabaseConfig
	JWTConfig      config.JWTConfig
	AppConfig      app.AppConfig
}

// loadEnvFile loads environment variables from .env file if it exists
// Only sets variables that are not already set in the environment
func loadEnvFile() {
	execPath, err := os.Executable()
	if err != nil {
		slog.Error("Failed to get executable path", "error", err)
		return
	}

	envFile := filepath.Join(filepath.Dir(execPath), ".env")

	// Also check current working directory
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		cwd, err := os.Getwd()
		if err != nil {
			slog.Error("Failed to get current working directory", "error", err)
			return
		}
		envFile = filepath.Join(cwd, ".env")
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Debug("No .env file found", "path", envFile)
		return
	}

	if err := godotenv.Load(envFile); err != nil {
		slog.Error("Failed to load .env file", "error", err, "path", envFile)
		return
	}
	slog.Info("Configuration loaded from .env file", "path", envFile)
}

func main() {
	var level slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     &level,
	}))
	slog.SetDefault(logger)

	loadEnvFile()

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(-1)
	}
	level.Set(cfg.RedirectConfig.SlogLevel())

	if err := cfg.RedirectConfig.Validate(); err != nil {
		slog.Error("Invalid redirect configuration", "error", err)
		os.Exit(-1)
	}
	if err := cfg.JWTConfig.Validate(); err != nil {
		slog.Error("Invalid JWT configuration", "error", err)
		os.Exit(-1)
	}

	prefixConfig := config.LoadPrefixConfig()
	if err := prefixConfig.Validate(); err != nil {
		slog.Error("Invalid prefix configuration", "error", err)
		os.Exit(-1)
	}
	slog.Info("API endpoint prefixes configured", "rules", prefixConfig.Rules, "roles", prefixConfig.Roles,
		"decision", prefixConfig.Decision, "registrations", prefixConfig.Registrations, "markers", prefixConfig.Markers)

	ctx := context.Background()
	persistence := cfg.RedirectConfig.Persistence

	var redirectRepoConfig redirect.RepositoryConfig
	var roleRepoConfig role.RepositoryConfig
	redirectRepoConfig.DataDir = cfg.RedirectConfig.DataDir
	roleRepoConfig.DataDir = cfg.RedirectConfig.DataDir

	if cfg.RedirectConfig.UsesPostgres() {
		if err := cfg.DatabaseConfig.Validate(); err != nil {
			slog.Error("Invalid database configuration", "error", err)
			os.Exit(-1)
		}
		if cfg.RedirectConfig.AutoMigrate {
			if err := database.Migrate(cfg.DatabaseConfig); err != nil {
				slog.Error("Failed to migrate database", "error", err)
				os.Exit(-1)
			}
		}
		pool, err := database.Connect(ctx, cfg.DatabaseConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", cfg.DatabaseConfig.Database, "host", cfg.DatabaseConfig.Host,
				"port", cfg.DatabaseConfig.Port, "user", cfg.DatabaseConfig.User, "error", err)
			os.Exit(-1)
		}
		defer pool.Close()
		redirectRepoConfig.DB = pool
		roleRepoConfig.DB = pool
	}

	roleRepo, err := role.NewRoleRepository(persistence, roleRepoConfig)
	if err != nil {
		slog.Error("Failed to create role repository", "persistence", persistence, "error", err)
		os.Exit(-1)
	}
	roleService := role.NewRoleService(roleRepo)

	ruleRepo, markerRepo, err := redirect.NewRepositories(persistence, redirectRepoConfig)
	if err != nil {
		slog.Error("Failed to create redirect repositories", "persistence", persistence, "error", err)
		os.Exit(-1)
	}

	cacheTTL, err := cfg.RedirectConfig.ParseCacheTTL()
	if err != nil {
		slog.Error("Invalid cache TTL", "error", err)
		os.Exit(-1)
	}
	if cacheTTL > 0 {
		ruleRepo = redirect.NewCachedRuleRepository(ruleRepo, cfg.RedirectConfig.CacheSize, cacheTTL)
		slog.Info("Redirect rule cache enabled", "size", cfg.RedirectConfig.CacheSize, "ttl", cacheTTL)
	}

	store := redirect.NewStore(roleService, ruleRepo, logger)
	markerService := redirect.NewMarkerService(markerRepo)
	resolver := redirect.NewResolver(store, roleService, markerService,
		redirect.WithAdminURL(cfg.RedirectConfig.AdminURL),
		redirect.WithAtomicMarker(cfg.RedirectConfig.AtomicMarker),
		redirect.WithLogger(logger),
	)
	hooks := redirect.NewHooks(resolver, markerService)

	redirectHandle := redirectapi.NewHandle(ruleRepo, roleService, hooks, markerService)
	roleHandle := roleapi.NewHandle(roleService)

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)
	server.R.Handle("/metrics", promhttp.Handler())

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JWTConfig.Secret), nil)
	adminRoles := cfg.JWTConfig.AdminRoleNames()

	mountAPI(server.R, prefixConfig, tokenAuth, adminRoles, redirectHandle, roleHandle)

	slog.Info("Login redirect service starting", "persistence", persistence, "admin_url", cfg.RedirectConfig.AdminURL,
		"atomic_marker", cfg.RedirectConfig.AtomicMarker, "admin_roles", adminRoles)
	server.Run()
}

// mountAPI wires the redirect and role APIs behind token verification. Rules,
// markers and roles additionally require an admin role.
func mountAPI(router chi.Router, prefixes config.PrefixConfig, tokenAuth *jwtauth.JWTAuth, adminRoles config.AdminRoles,
	redirectHandle *redirectapi.Handle, roleHandle *roleapi.Handle) {
	router.Group(func(r chi.Router) {
		r.Use(client.Verifier(tokenAuth))
		r.Use(client.AuthUserMiddleware)

		r.Mount(prefixes.Decision, redirectapi.DecisionHandler(redirectHandle))
		r.Mount(prefixes.Registrations, redirectapi.RegistrationsHandler(redirectHandle))

		r.Group(func(r chi.Router) {
			r.Use(client.NewAdminRoleMiddleware(adminRoles))

			r.Mount(prefixes.Rules, redirectapi.RulesHandler(redirectHandle))
			r.Mount(prefixes.Markers, redirectapi.MarkersHandler(redirectHandle))
			r.Mount(prefixes.Roles, roleapi.Handler(roleHandle))
		})
	})
}
