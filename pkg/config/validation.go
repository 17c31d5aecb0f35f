package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// ValidationError is a single invalid configuration field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every invalid field so they can be reported together
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	b.WriteString("configuration validation failed:")
	for _, err := range e {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Validate combines check results. Nil checks pass; it returns nil when all pass.
func Validate(checks ...*ValidationError) error {
	var errs ValidationErrors
	for _, check := range checks {
		if check != nil {
			errs = append(errs, *check)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func RequireNonEmpty(field, value string) *ValidationError {
	if value == "" {
		return invalid(field, "is required")
	}
	return nil
}

func RequireNonNegative(field string, value int) *ValidationError {
	if value < 0 {
		return invalid(field, "must be non-negative, got %d", value)
	}
	return nil
}

func RequireNonNegativeDuration(field string, value time.Duration) *ValidationError {
	if value < 0 {
		return invalid(field, "must be non-negative, got %v", value)
	}
	return nil
}

func RequireValidPort(field string, value uint16) *ValidationError {
	if value == 0 {
		return invalid(field, "port must be between 1 and 65535")
	}
	return nil
}

func RequireOneOf(field, value string, allowed []string) *ValidationError {
	if slices.Contains(allowed, value) {
		return nil
	}
	return invalid(field, "must be one of %v, got %q", allowed, value)
}

// RequireValidURL requires an absolute URL with a scheme.
func RequireValidURL(field, value string) *ValidationError {
	if value == "" {
		return invalid(field, "is required")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return invalid(field, "invalid URL: %v", err)
	}
	if parsed.Scheme == "" {
		return invalid(field, "URL must have a scheme (http:// or https://)")
	}
	return nil
}

// RequireRedirectTarget validates a redirect destination. Absolute URLs need
// a host; relative paths must start with a single "/". Empty values are accepted.
func RequireRedirectTarget(field, value string) *ValidationError {
	if value == "" {
		return nil
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return invalid(field, "invalid URL: %v", err)
	}
	if parsed.Scheme == "" {
		if !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") {
			return invalid(field, "relative URL must start with a single /")
		}
		return nil
	}
	if parsed.Host == "" {
		return invalid(field, "absolute URL must have a host")
	}
	return nil
}

// RequireRoutePrefix requires a non-empty path starting with "/".
func RequireRoutePrefix(field, value string) *ValidationError {
	if value == "" {
		return invalid(field, "prefix configuration missing")
	}
	if !strings.HasPrefix(value, "/") {
		return invalid(field, "prefix must start with '/', got %q", value)
	}
	return nil
}
