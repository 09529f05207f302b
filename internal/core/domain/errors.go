package domain

import (
	"errors"
	"strings"
)

// ErrorKind enumerates the closed set of authentication failures.
type ErrorKind int

const (
	KindInfrastructure ErrorKind = iota
	KindInvalidCredentials
	KindEmailAlreadyInUse
	KindInvalidToken
	KindUserNotFound
	KindUnauthorized
	KindForbidden
	KindEmailNotVerified
	KindInvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindEmailAlreadyInUse:
		return "email_already_in_use"
	case KindInvalidToken:
		return "invalid_token"
	case KindUserNotFound:
		return "user_not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindEmailNotVerified:
		return "email_not_verified"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "infrastructure"
	}
}

// AuthError is the only error type returned across the auth boundary.
// Messages are fixed per kind and never include passwords, tokens or
// backend identifiers. An infrastructure error keeps its cause for
// server-side logging only.
type AuthError struct {
	Kind    ErrorKind
	message string
	cause   error
}

func (e *AuthError) Error() string {
	return e.message
}

// Unwrap exposes the infrastructure cause, if any.
func (e *AuthError) Unwrap() error {
	return e.cause
}

// Is matches any AuthError of the same kind, so callers can compare with
// the sentinels below regardless of the message.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidCredentials = &AuthError{Kind: KindInvalidCredentials, message: "invalid email or password"}
	ErrEmailAlreadyInUse  = &AuthError{Kind: KindEmailAlreadyInUse, message: "email is already in use"}
	ErrInvalidToken       = &AuthError{Kind: KindInvalidToken, message: "invalid or expired token"}
	ErrUserNotFound       = &AuthError{Kind: KindUserNotFound, message: "user not found"}
	ErrUnauthorized       = &AuthError{Kind: KindUnauthorized, message: "unauthenticated"}
	ErrForbidden          = &AuthError{Kind: KindForbidden, message: "forbidden"}
	ErrEmailNotVerified   = &AuthError{Kind: KindEmailNotVerified, message: "email address is not verified"}
	ErrInfrastructure     = &AuthError{Kind: KindInfrastructure, message: "internal error"}
	ErrInvalidInput       = &AuthError{Kind: KindInvalidInput, message: "invalid input"}
)

// ErrTokenMissing is returned when a protected request carries no bearer token.
var ErrTokenMissing = &AuthError{Kind: KindUnauthorized, message: "authentication token is missing"}

// Forbidden builds a forbidden error naming the roles a route requires.
func Forbidden(required ...Role) *AuthError {
	if len(required) == 0 {
		return ErrForbidden
	}
	names := make([]string, len(required))
	for i, r := range required {
		names[i] = r.String()
	}
	return &AuthError{
		Kind:    KindForbidden,
		message: "forbidden: requires one of roles " + strings.Join(names, ", "),
	}
}

// InvalidInput rejects a caller-supplied field, naming it in the message.
func InvalidInput(field, reason string) *AuthError {
	return &AuthError{Kind: KindInvalidInput, message: "invalid " + field + ": " + reason}
}

// Infrastructure wraps an unexpected failure from outside the subsystem.
func Infrastructure(cause error) *AuthError {
	return &AuthError{Kind: KindInfrastructure, message: ErrInfrastructure.message, cause: cause}
}

// AsAuthError converts any error into an AuthError. Errors that are not
// already part of the taxonomy become infrastructure errors.
func AsAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return Infrastructure(err)
}

// KindOf returns the kind of err, treating foreign errors as infrastructure.
func KindOf(err error) ErrorKind {
	return AsAuthError(err).Kind
}
