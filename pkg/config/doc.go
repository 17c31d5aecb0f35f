// Package config provides configuration types and validation for the login redirect service.
//
// Configuration structs carry cleanenv tags and are filled with
// cleanenv.ReadEnv from the process environment (optionally seeded from a
// .env file). Each struct has a Validate method built from the helpers in
// validation.go.
//
// # Overview
//
// The config package provides:
//   - RedirectConfig: admin URL, persistence backend, rule cache and log level
//   - DatabaseConfig: PostgreSQL connection settings (IDM_PG_*)
//   - JWTConfig: token secret, issuer, expiry and admin role names
//   - PrefixConfig: API route prefixes
//   - Validation helpers that collect every problem before failing
//
// # Loading
//
//	var cfg struct {
//		Redirect config.RedirectConfig
//		Database config.DatabaseConfig
//		JWT      config.JWTConfig
//	}
//	if err := cleanenv.ReadEnv(&cfg); err != nil {
//		return err
//	}
//	if err := cfg.Redirect.Validate(); err != nil {
//		return err
//	}
//
// # Durations
//
// Durations accept ISO 8601 ("PT30S", "PT1H") and fall back to Go duration
// strings ("30s", "1h").
//
// # Validation
//
//	func (c MyConfig) Validate() error {
//		return config.Validate(
//			config.RequireNonEmpty("HOST", c.Host),
//			config.RequireValidPort("PORT", c.Port),
//		)
//	}
package config
