package application

import "errors"

// Error kinds. Match them with errors.Is; the HTTP layer maps each kind to a status.
var (
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
)

// Error carries a caller-safe message plus the kind, and optionally the
// internal cause for logging. Message never includes the cause.
type Error struct {
	Kind    error
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

func conflict(msg string) error     { return &Error{Kind: ErrConflict, Message: msg} }
func unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }
func notFound(msg string) error     { return &Error{Kind: ErrNotFound, Message: msg} }
func badRequest(msg string, cause error) error {
	return &Error{Kind: ErrBadRequest, Message: msg, cause: cause}
}

// Messages shared by every failure path of an operation so callers cannot
// tell which check failed.
const (
	MsgInvalidCredentials  = "Invalid credentials"
	MsgInvalidRefreshToken = "Invalid refresh token"
	MsgEmailTaken          = "User with this email already exists"
	MsgRegistrationFailed  = "Registration failed"
	MsgRegistrationClosed  = "Registration is disabled"
	MsgCurrentPassword     = "Current password is incorrect"
	MsgPasswordChanged     = "Password changed successfully"
	MsgLoggedOut           = "Logged out successfully"
)
