package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrCodeInvalidKind, "unknown redirect kind")
	assert.Equal(t, "[INVALID_REDIRECT_KIND] unknown redirect kind", err.Error())

	cause := stderrors.New("connection refused")
	wrapped := Wrap(cause, ErrCodeStoreFailed, "failed to save rule")
	assert.Equal(t, "[STORE_UNAVAILABLE] failed to save rule: connection refused", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, cause))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "nothing"))
}

func TestIsCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", AlreadyExists("role", "editor"))

	assert.True(t, IsCode(err, ErrCodeAlreadyExists))
	assert.False(t, IsCode(err, ErrCodeRoleInUse))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeInternal))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidKind, http.StatusBadRequest},
		{ErrCodeInvalidURL, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeRoleNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeRoleInUse, http.StatusConflict},
		{ErrCodeStoreFailed, http.StatusServiceUnavailable},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.code))
		})
	}
}

func TestToResponse(t *testing.T) {
	status, body := ToResponse(InvalidInput("url", "must be absolute"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrCodeInvalidInput, body.Code)
	require.NotNil(t, body.Details)
	assert.Equal(t, "url", body.Details["field"])

	status, body = ToResponse(stderrors.New("secret dsn in message"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", body.Message)
}
