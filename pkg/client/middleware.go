package client

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/login-redirect/pkg/config"
	"github.com/tendant/login-redirect/pkg/errors"
)

// RequireRole lets a request through when its AuthUser holds one of roles
// (case-insensitive). It answers 401 without an AuthUser and 403 without a
// matching role. Must be used after AuthUserMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := config.AdminRoles(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := GetAuthUser(r)
			if !ok {
				writeError(w, r, errors.New(errors.ErrCodeUnauthorized, "authentication required"))
				return
			}

			if !allowed.AnyOf(authUser.ExtraClaims.Roles) {
				slog.Warn("User lacks required role", "user", authUser, "requiredRoles", roles)
				writeError(w, r, errors.New(errors.ErrCodeForbidden, "insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewAdminRoleMiddleware guards the admin routes with the configured admin roles
func NewAdminRoleMiddleware(adminRoles config.AdminRoles) func(http.Handler) http.Handler {
	return RequireRole(adminRoles...)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, response := errors.ToResponse(err)
	render.Status(r, status)
	render.JSON(w, r, response)
}
