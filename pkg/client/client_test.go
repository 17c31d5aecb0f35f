package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret-key")

// CreateTestToken creates a JWT token with the specified user ID and extra claims
func CreateTestToken(userID string, extraClaims ExtraClaims, secret []byte) (string, error) {
	tokenAuth := jwtauth.New("HS256", secret, nil)

	claims := map[string]interface{}{
		"sub":     userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"user_id": userID,
		"extra_claims": map[string]interface{}{
			"username": extraClaims.Username,
			"email":    extraClaims.Email,
			"roles":    extraClaims.Roles,
		},
	}

	_, tokenString, err := tokenAuth.Encode(claims)
	return tokenString, err
}

// protected wires Verifier, AuthUserMiddleware and an optional extra middleware
// in front of a handler that records the AuthUser it saw.
func protected(t *testing.T, extra func(http.Handler) http.Handler, seen **AuthUser) http.Handler {
	t.Helper()
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authUser, ok := GetAuthUser(r)
		require.True(t, ok, "Auth user should be in the context")
		*seen = authUser
		w.WriteHeader(http.StatusNoContent)
	})
	if extra != nil {
		h = extra(h)
	}
	return Verifier(jwtauth.New("HS256", testSecret, nil))(AuthUserMiddleware(h))
}

func TestAuthUserMiddleware(t *testing.T) {
	userID := uuid.New()

	testCases := []struct {
		name        string
		extraClaims ExtraClaims
		expectRoles []string
	}{
		{
			name:        "Admin and User Roles",
			extraClaims: ExtraClaims{Username: "admin_user", Email: "admin@example.com", Roles: []string{"admin", "user"}},
			expectRoles: []string{"admin", "user"},
		},
		{
			name:        "No Roles",
			extraClaims: ExtraClaims{Username: "no_role_user"},
			expectRoles: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokenString, err := CreateTestToken(userID.String(), tc.extraClaims, testSecret)
			require.NoError(t, err)

			var seen *AuthUser
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tokenString)
			rec := httptest.NewRecorder()

			protected(t, nil, &seen).ServeHTTP(rec, req)

			require.Equal(t, http.StatusNoContent, rec.Code)
			require.NotNil(t, seen)
			assert.Equal(t, userID.String(), seen.UserId)
			assert.Equal(t, userID, seen.UserUuid)
			assert.Equal(t, tc.extraClaims.Username, seen.ExtraClaims.Username)
			assert.Equal(t, tc.expectRoles, seen.ExtraClaims.Roles)
		})
	}
}

func TestAuthUserMiddlewareNestedClaims(t *testing.T) {
	userID := uuid.New().String()
	tokenAuth := jwtauth.New("HS256", testSecret, nil)
	_, tokenString, err := tokenAuth.Encode(map[string]interface{}{
		"sub": userID,
		"extra_claims": map[string]interface{}{
			"user_id": userID,
			"extra_claims": map[string]interface{}{
				"roles": []string{"editor"},
			},
		},
	})
	require.NoError(t, err)

	var seen *AuthUser
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ACCESS_TOKEN_NAME, Value: tokenString})
	rec := httptest.NewRecorder()

	protected(t, nil, &seen).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, seen.UserId, "sub is used when user_id is absent")
	assert.Equal(t, []string{"editor"}, seen.ExtraClaims.Roles)
}

func TestAuthUserMiddlewareRejects(t *testing.T) {
	otherSecret := jwtauth.New("HS256", []byte("some-other-secret"), nil)
	_, forged, err := otherSecret.Encode(map[string]interface{}{"user_id": uuid.New().String()})
	require.NoError(t, err)

	_, noUser, err := jwtauth.New("HS256", testSecret, nil).Encode(map[string]interface{}{"exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing token", ""},
		{"wrong signature", "Bearer " + forged},
		{"no user id", "Bearer " + noUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *AuthUser
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected(t, nil, &seen).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, seen)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		expected int
	}{
		{"admin", []string{"user", "admin"}, http.StatusNoContent},
		{"case insensitive", []string{"SuperAdmin"}, http.StatusNoContent},
		{"not admin", []string{"editor"}, http.StatusForbidden},
		{"no roles", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenString, err := CreateTestToken(uuid.New().String(), ExtraClaims{Roles: tt.roles}, testSecret)
			require.NoError(t, err)

			var seen *AuthUser
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tokenString)
			rec := httptest.NewRecorder()

			protected(t, NewAdminRoleMiddleware([]string{"admin", "superadmin"}), &seen).ServeHTTP(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
			if tt.expected == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), `"code":"FORBIDDEN"`)
			}
		})
	}
}

func TestRequireRoleWithoutAuthUser(t *testing.T) {
	handler := RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
}

func TestIsAdminWithRoles(t *testing.T) {
	assert.False(t, IsAdminWithRoles(nil, []string{"admin"}))
	assert.True(t, IsAdminWithRoles(&AuthUser{ExtraClaims: ExtraClaims{Roles: []string{"admin"}}}, []string{"admin"}))
}
