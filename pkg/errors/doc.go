// Package errors provides structured error codes for the redirect HTTP API.
//
// Errors carry a code, a human-readable message, optional details and an
// optional wrapped cause. Codes map onto HTTP status codes, so handlers can
// return a single error value and let ToResponse pick the status.
//
// # Basic Usage
//
//	import "github.com/tendant/login-redirect/pkg/errors"
//
//	if !kind.Valid() {
//		return errors.New(errors.ErrCodeInvalidKind, "unknown redirect kind")
//	}
//
//	if err := repo.SetRedirectURL(ctx, role, kind, url); err != nil {
//		return errors.Wrap(err, errors.ErrCodeStoreFailed, "failed to save rule")
//	}
//
// # Checking codes
//
//	if errors.IsCode(err, errors.ErrCodeRoleNotFound) {
//		// ...
//	}
//
// The wrapped cause stays reachable through the standard library's errors.Is
// and errors.As.
package errors
