// Package apperr defines the coded errors handlers translate into HTTP
// responses.
package apperr

import (
	"net/http"

	"github.com/samber/oops"
)

// Error codes carried by oops errors.
const (
	CodeValidation         = "VALIDATION"
	CodeNotFound           = "NOT_FOUND"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeHashingFailed      = "HASHING_FAILED"
	CodeInternal           = "INTERNAL"
)

// Public messages that are fixed regardless of the call site.
const (
	MsgNotLoggedIn        = "not logged in"
	MsgInvalidCredentials = "Error: Username or Password is incorrect"
	MsgUsernameTaken      = "Error: username already exists"
	MsgInternal           = "Error: Internal server error"
)

// Validation reports missing or malformed request fields.
func Validation(public string) error {
	return oops.Code(CodeValidation).Public(public).Errorf("%s", public)
}

// Invalid attaches the route's public message to a request that failed
// decoding or schema validation.
func Invalid(err error, public string) error {
	return oops.Code(CodeValidation).Public(public).Wrap(err)
}

// NotFound reports a referenced entity that does not exist.
func NotFound(public string) error {
	return oops.Code(CodeNotFound).Public(public).Errorf("%s", public)
}

// UsernameTaken reports a registration for a username already in use.
func UsernameTaken() error {
	return oops.Code(CodeUsernameTaken).Public(MsgUsernameTaken).Errorf("username already exists")
}

// Unauthorized reports a missing, invalid or stale session. reason is kept for
// logs only.
func Unauthorized(reason string) error {
	return oops.Code(CodeUnauthorized).
		Public(MsgNotLoggedIn).
		With("reason", reason).
		Errorf("unauthorized: %s", reason)
}

// InvalidCredentials is the single error for every failed login.
func InvalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Public(MsgInvalidCredentials).Errorf("invalid username or password")
}

// Internal wraps an unexpected store or hashing failure. The cause is logged,
// never shown.
func Internal(err error, operation string) error {
	return oops.Code(CodeInternal).With("operation", operation).Wrap(err)
}

// Code returns the oops code attached to err, or "" when there is none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// Status maps err to an HTTP status and the message that may be shown to the
// caller. Unknown errors become a generic 500.
func Status(err error) (int, string) {
	switch Code(err) {
	case CodeValidation:
		return http.StatusBadRequest, publicOr(err, "Error: invalid request")
	case CodeNotFound:
		return http.StatusBadRequest, publicOr(err, "Error: not found")
	case CodeUsernameTaken:
		return http.StatusForbidden, MsgUsernameTaken
	case CodeUnauthorized:
		return http.StatusForbidden, MsgNotLoggedIn
	case CodeInvalidCredentials:
		return http.StatusForbidden, MsgInvalidCredentials
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

func publicOr(err error, fallback string) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if msg := oopsErr.Public(); msg != "" {
			return msg
		}
	}
	return fallback
}
