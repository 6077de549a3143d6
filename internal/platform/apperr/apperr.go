package apperr

import (
	"errors"
	"net/http"
)

// AppError is what handlers send back: a stable code, a readable message
// and the HTTP status. It renders as {"error": code, "message": message}.
type AppError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	status  int
}

func New(status int, code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, status: status}
}

var (
	ErrInvalidBody        = New(http.StatusBadRequest, "invalid_input", "invalid body")
	ErrMissingSongID      = New(http.StatusBadRequest, "missing_song_id", "songId is required")
	ErrMissingDeviceID    = New(http.StatusBadRequest, "missing_device_id", "deviceId is required")
	ErrMissingToken       = New(http.StatusUnauthorized, "missing_token", "missing authorization header")
	ErrInvalidToken       = New(http.StatusUnauthorized, "invalid_token", "invalid token")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	ErrAdminDisabled      = New(http.StatusForbidden, "admin_disabled", "admin login is not configured")
	ErrRateLimited        = New(http.StatusTooManyRequests, "rate_limited", "too many requests")
	ErrStoreUnavailable   = New(http.StatusServiceUnavailable, "store_unavailable", "state store not ready")
	ErrInternal           = New(http.StatusInternalServerError, "internal_error", "internal server error")
)

// Wrap returns a copy of e carrying cause. The shared values above are never mutated.
func (e *AppError) Wrap(cause error) *AppError {
	c := *e
	c.Err = cause
	return &c
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError with the same code, so wrapped copies still
// compare equal to the shared values.
func (e *AppError) Is(target error) bool {
	var t *AppError
	return errors.As(target, &t) && t.Code == e.Code
}

func (e *AppError) StatusCode() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

// FromError finds the AppError in err's chain, or reports an internal error.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.Wrap(err)
}
