package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a failure class in API responses
type ErrorCode string

const (
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"

	ErrCodeRoleNotFound ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleInUse    ErrorCode = "ROLE_IN_USE"

	ErrCodeInvalidKind ErrorCode = "INVALID_REDIRECT_KIND"
	ErrCodeInvalidURL  ErrorCode = "INVALID_REDIRECT_URL"
	// ErrCodeStoreFailed means a configuration or marker store could not be reached.
	ErrCodeStoreFailed ErrorCode = "STORE_UNAVAILABLE"
)

var statusByCode = map[ErrorCode]int{
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeInvalidKind:   http.StatusBadRequest,
	ErrCodeInvalidURL:    http.StatusBadRequest,
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeRoleNotFound:  http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeRoleInUse:     http.StatusConflict,
	ErrCodeStoreFailed:   http.StatusServiceUnavailable,
}

// Error is an API error with a code, a client-safe message and an optional cause
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key to the response details
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPStatusCode returns the status for e.Code, 500 for unknown codes
func (e *Error) HTTPStatusCode() int {
	return StatusFor(e.Code)
}

// StatusFor maps an error code to its HTTP status
func StatusFor(code ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// IsCode reports whether any *Error in err's chain has code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func AlreadyExists(resourceType, identifier string) *Error {
	return Newf(ErrCodeAlreadyExists, "%s already exists: %s", resourceType, identifier)
}

// InvalidInput reports a bad request field and names it in the details
func InvalidInput(field, reason string) *Error {
	return Newf(ErrCodeInvalidInput, "invalid %s: %s", field, reason).WithDetail("field", field)
}

func InternalWrap(err error, message string) *Error {
	return Wrap(err, ErrCodeInternal, message)
}

// Response is the JSON body written for a failed API call
type Response struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ToResponse converts any error into a status code and response body.
// Unstructured errors are reported as internal errors without their text.
func ToResponse(err error) (int, Response) {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatusCode(), Response{Code: e.Code, Message: e.Message, Details: e.Details}
	}
	return http.StatusInternalServerError, Response{Code: ErrCodeInternal, Message: "internal error"}
}
