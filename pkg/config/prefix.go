package config

import (
	"strings"
)

// PrefixConfig holds configurable API endpoint prefixes for all route groups.
//
// Example environment variables:
//
//	API_PREFIX_BASE=/api/v1/redirect
//	API_PREFIX_RULES=/api/v1/redirect/rules
//	API_PREFIX_ROLES=/api/v1/redirect/roles
type PrefixConfig struct {
	Rules         string // Redirect rule management (admin)
	Markers       string // First-login marker inspection (admin)
	Roles         string // Role directory management (admin)
	Decision      string // Post-login redirect decision
	Registrations string // New account notifications
}

// DefaultV1Prefixes returns the default v1 prefix configuration.
func DefaultV1Prefixes() PrefixConfig {
	return BuildPrefixesFromBase("/api/v1/redirect")
}

// BuildPrefixesFromBase builds prefix configuration from a base path.
//
//	BuildPrefixesFromBase("/hooks")
//	// Decision: "/hooks/decision", Rules: "/hooks/rules", ...
func BuildPrefixesFromBase(basePath string) PrefixConfig {
	basePath = strings.TrimSuffix(basePath, "/")

	return PrefixConfig{
		Rules:         basePath + "/rules",
		Markers:       basePath + "/markers",
		Roles:         basePath + "/roles",
		Decision:      basePath + "/decision",
		Registrations: basePath + "/registrations",
	}
}

// LoadPrefixConfig loads prefix configuration from environment variables.
//
// API_PREFIX_BASE sets every prefix at once; API_PREFIX_RULES, API_PREFIX_MARKERS,
// API_PREFIX_ROLES, API_PREFIX_DECISION and API_PREFIX_REGISTRATIONS override
// single route groups.
func LoadPrefixConfig() PrefixConfig {
	defaults := DefaultV1Prefixes()
	if basePath := GetEnv("API_PREFIX_BASE"); basePath != "" {
		defaults = BuildPrefixesFromBase(basePath)
	}

	return PrefixConfig{
		Rules:         GetEnvOrDefault("API_PREFIX_RULES", defaults.Rules),
		Markers:       GetEnvOrDefault("API_PREFIX_MARKERS", defaults.Markers),
		Roles:         GetEnvOrDefault("API_PREFIX_ROLES", defaults.Roles),
		Decision:      GetEnvOrDefault("API_PREFIX_DECISION", defaults.Decision),
		Registrations: GetEnvOrDefault("API_PREFIX_REGISTRATIONS", defaults.Registrations),
	}
}

// Validate checks that every prefix is set and starts with /
func (p PrefixConfig) Validate() error {
	return Validate(
		RequireRoutePrefix("API_PREFIX_RULES", p.Rules),
		RequireRoutePrefix("API_PREFIX_MARKERS", p.Markers),
		RequireRoutePrefix("API_PREFIX_ROLES", p.Roles),
		RequireRoutePrefix("API_PREFIX_DECISION", p.Decision),
		RequireRoutePrefix("API_PREFIX_REGISTRATIONS", p.Registrations),
	)
}
