package config

import (
	"time"

	"github.com/sosodev/duration"
)

// JWTConfig holds JWT authentication configuration
type JWTConfig struct {
	Secret      string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer      string `env:"JWT_ISSUER" env-default:"login-redirect"`
	TokenExpiry string `env:"JWT_TOKEN_EXPIRY" env-default:"PT1H"`
	AdminRoles  string `env:"ADMIN_ROLES" env-default:"admin,superadmin"`
}

// ParseTokenExpiry parses the token expiry duration
func (j JWTConfig) ParseTokenExpiry() (time.Duration, error) {
	return parseDurationISO8601(j.TokenExpiry)
}

// AdminRoleNames returns the roles that may use the admin endpoints
func (j JWTConfig) AdminRoleNames() AdminRoles {
	return ParseAdminRoles(j.AdminRoles)
}

func (j JWTConfig) Validate() error {
	return Validate(
		RequireNonEmpty("JWT_SECRET", j.Secret),
		j.validateTokenExpiry(),
	)
}

func (j JWTConfig) validateTokenExpiry() *ValidationError {
	if j.TokenExpiry == "" {
		return nil
	}
	if _, err := j.ParseTokenExpiry(); err != nil {
		return invalid("JWT_TOKEN_EXPIRY", "%v", err)
	}
	return nil
}

// parseDurationISO8601 tries to parse duration as ISO8601 first, then Go duration
func parseDurationISO8601(s string) (time.Duration, error) {
	if d, err := duration.Parse(s); err == nil {
		return d.ToTimeDuration(), nil
	}
	return time.ParseDuration(s)
}
