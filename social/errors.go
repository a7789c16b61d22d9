// social/errors.go
package social

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code. Callers branch on codes,
// never on message text.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Validation
	CodeNameEmpty        Code = "NAME_EMPTY"
	CodeUsernameEmpty    Code = "USERNAME_EMPTY"
	CodeEmailInvalid     Code = "EMAIL_INVALID"
	CodePasswordTooShort Code = "PASSWORD_TOO_SHORT"
	CodeContentEmpty     Code = "CONTENT_EMPTY"
	CodeCommentEmpty     Code = "COMMENT_EMPTY"
	CodeSelfFollow       Code = "SELF_FOLLOW"

	// Auth
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeBadLogin     Code = "BAD_LOGIN"

	// Conflict
	CodeUserConflict    Code = "USER_CONFLICT"
	CodeDuplicateFollow Code = "DUPLICATE_FOLLOW"
	CodeAlreadyLiked    Code = "ALREADY_LIKED"

	// Not found
	CodePostNotFound Code = "POST_NOT_FOUND"
	CodeUserNotFound Code = "USER_NOT_FOUND"
)

// HTTPStatus maps a code to the status the transport edge responds with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNameEmpty, CodeUsernameEmpty, CodeEmailInvalid,
		CodePasswordTooShort, CodeContentEmpty, CodeCommentEmpty,
		CodeSelfFollow:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeBadLogin:
		return http.StatusUnauthorized
	case CodePostNotFound, CodeUserNotFound:
		return http.StatusNotFound
	case CodeUserConflict, CodeDuplicateFollow, CodeAlreadyLiked:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type. Is matches by code so two errors with
// the same code compare equal under errors.Is.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// NewError creates a domain error with a code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError creates a domain error that wraps an underlying cause.
func WrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code from an error chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
