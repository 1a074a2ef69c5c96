package apperror

import (
	"errors"
	"net/http"
)

// Error is a typed application failure that carries the HTTP status it maps to.
// Two errors are considered the same kind when their Code matches, so wrapped
// copies with extra fields or a custom message still satisfy errors.Is.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e with a different client-facing message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// WithFields returns a copy of e carrying per-field details.
func (e *Error) WithFields(fields map[string]string) *Error {
	c := *e
	c.Fields = fields
	return &c
}

var (
	ErrValidation   = &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: "validation failed"}
	ErrInvalidInput = &Error{Status: http.StatusBadRequest, Code: "invalid_input", Message: "invalid input"}
	ErrBadRequest   = &Error{Status: http.StatusBadRequest, Code: "bad_request", Message: "bad request"}

	ErrDuplicateEmail = &Error{Status: http.StatusConflict, Code: "duplicate_email", Message: "profile with this email already exists"}

	ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "Invalid email or password"}
	ErrMissingCredentials = &Error{Status: http.StatusUnauthorized, Code: "not_authenticated", Message: "Authentication credentials were not provided"}
	ErrInvalidToken       = &Error{Status: http.StatusUnauthorized, Code: "token_not_valid", Message: "Token is invalid"}
	ErrExpiredToken       = &Error{Status: http.StatusUnauthorized, Code: "token_expired", Message: "Token is expired"}
	ErrWrongTokenType     = &Error{Status: http.StatusUnauthorized, Code: "wrong_token_type", Message: "Token has wrong type"}
	ErrUserNotFound       = &Error{Status: http.StatusUnauthorized, Code: "user_not_found", Message: "User not found"}
	ErrUserInactive       = &Error{Status: http.StatusUnauthorized, Code: "user_inactive", Message: "User is inactive"}

	ErrForbidden = &Error{Status: http.StatusForbidden, Code: "permission_denied", Message: "You do not have permission to perform this action"}
	ErrNotFound  = &Error{Status: http.StatusNotFound, Code: "not_found", Message: "Not found."}

	ErrCorruptHash = &Error{Status: http.StatusInternalServerError, Code: "corrupt_hash", Message: "stored password hash is malformed"}
)

// From extracts the first *Error in err's chain.
func From(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, defaulting to 500 for untyped errors.
func StatusOf(err error) int {
	if appErr, ok := From(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
