package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so that clones and wrapped copies compare equal to their template.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password.")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "Your account is inactive. Please contact an administrator.")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "Forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "Unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed.")
	ErrBadRequest         = New("BAD_REQUEST", http.StatusBadRequest, "invalid json")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "Something went wrong")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Session and token errors.
var (
	// ErrInvalidToken covers bad signatures, expiry and malformed payloads alike.
	ErrInvalidToken = New("INVALID_TOKEN", http.StatusUnauthorized, "Unauthorized")
	// ErrSessionExpired is the single external shape of every refresh failure.
	ErrSessionExpired = New("SESSION_EXPIRED", http.StatusUnauthorized, "session expired")
	// ErrSessionReuse marks a refresh token whose jti no longer matches the stored one.
	ErrSessionReuse = New("SESSION_REUSE_DETECTED", http.StatusUnauthorized, "session expired")
	// ErrSessionNotFound is returned by the session store for absent records.
	ErrSessionNotFound = New("SESSION_NOT_FOUND", http.StatusUnauthorized, "session expired")
	// ErrRefreshJTIConflict is returned when a compare-and-swap rotation loses.
	ErrRefreshJTIConflict = New("REFRESH_JTI_CONFLICT", http.StatusUnauthorized, "session expired")
	// ErrSessionLifetimeExceeded is returned once a session passes its absolute cutoff.
	ErrSessionLifetimeExceeded = New("SESSION_LIFETIME_EXCEEDED", http.StatusUnauthorized, "session expired")
	// ErrStoreUnavailable wraps transport failures and timeouts of the session store.
	ErrStoreUnavailable = New("STORE_UNAVAILABLE", http.StatusInternalServerError, "Something went wrong")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Unavailable wraps a store failure as ErrStoreUnavailable keeping the cause.
func Unavailable(err error, op string) *Error {
	return Wrap(fmt.Errorf("%s: %w", op, err), ErrStoreUnavailable.Code, ErrStoreUnavailable.Status, ErrStoreUnavailable.Message)
}
