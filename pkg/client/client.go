package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/tendant/login-redirect/pkg/config"
	"github.com/tendant/login-redirect/pkg/errors"
)

type ExtraClaims struct {
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

type AuthUser struct {
	UserId      string `json:"user_id,omitempty"`
	UserUuid    uuid.UUID
	ExtraClaims ExtraClaims `json:"extra_claims,omitempty"`
}

func (i AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", i.UserId),
		slog.Any("roles", i.ExtraClaims.Roles),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "redirect context value " + k.name
}

const (
	ACCESS_TOKEN_NAME = "access_token"
)

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

func LoadFromMap[T any](m map[string]interface{}, c *T) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, c)
	}
	return err
}

// AuthUserMiddleware turns verified JWT claims into an AuthUser on the request context.
// Must be used after Verifier.
func AuthUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			writeError(w, r, errors.New(errors.ErrCodeUnauthorized, "missing or invalid token"))
			return
		}
		if claims == nil {
			writeError(w, r, errors.New(errors.ErrCodeUnauthorized, "missing token claims"))
			return
		}

		authUser, err := authUserFromClaims(claims)
		if err != nil {
			slog.Error("failed to parse token claims", "error", err)
			writeError(w, r, errors.New(errors.ErrCodeUnauthorized, "invalid token claims"))
			return
		}
		if authUser.UserId == "" {
			writeError(w, r, errors.New(errors.ErrCodeUnauthorized, "missing user ID in token"))
			return
		}

		slog.Debug("authenticated user", "user", *authUser)

		ctx := context.WithValue(r.Context(), AuthUserKey, authUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authUserFromClaims(claims map[string]interface{}) (*AuthUser, error) {
	authUser := new(AuthUser)

	// Standard claims: user_id, with sub as fallback
	if err := LoadFromMap(claims, authUser); err != nil {
		return nil, err
	}
	if authUser.UserId == "" {
		if sub, ok := claims["sub"].(string); ok {
			authUser.UserId = sub
		}
	}

	if extraClaimsRaw, exists := claims["extra_claims"]; exists {
		extraClaims, ok := extraClaimsRaw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid extra claims format")
		}
		// Tokens minted by an IDM nest the user claims one level deeper
		if nested, ok := extraClaims["extra_claims"].(map[string]interface{}); ok {
			extraClaims = nested
		}
		if err := LoadFromMap(extraClaims, &authUser.ExtraClaims); err != nil {
			return nil, err
		}
	}

	if authUser.UserId != "" {
		userUUID, err := uuid.Parse(authUser.UserId)
		if err != nil {
			slog.Warn("failed to parse user ID as UUID", "userId", authUser.UserId, "error", err)
		} else {
			authUser.UserUuid = userUUID
		}
	}
	return authUser, nil
}

// GetAuthUser returns the AuthUser stored by AuthUserMiddleware
func GetAuthUser(r *http.Request) (*AuthUser, bool) {
	authUser, ok := r.Context().Value(AuthUserKey).(*AuthUser)
	return authUser, ok && authUser != nil
}

func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verify(ja, jwtauth.TokenFromHeader, TokenFromCookie)(next)
	}
}

func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(ACCESS_TOKEN_NAME)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// IsAdminWithRoles checks if the user has any of the specified admin roles
func IsAdminWithRoles(user *AuthUser, adminRoles []string) bool {
	if user == nil {
		return false
	}
	return config.AdminRoles(adminRoles).AnyOf(user.ExtraClaims.Roles)
}
