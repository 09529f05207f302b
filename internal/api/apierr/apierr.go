// Package apierr maps auth errors onto HTTP responses. It is shared by the
// middleware and the central error handler so both render the same status
// for the same failure.
package apierr

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/core/domain"
)

// Status returns the HTTP status code for an auth error kind.
func Status(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidCredentials, domain.KindInvalidToken, domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindEmailAlreadyInUse, domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindUserNotFound:
		return http.StatusNotFound
	case domain.KindForbidden, domain.KindEmailNotVerified:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// StatusOf is Status for an arbitrary error. Foreign errors map to 500.
func StatusOf(err error) int {
	return Status(domain.KindOf(err))
}

// HTTPError converts err into an echo.HTTPError carrying the fixed auth
// message. The original error is kept as the internal error for logging.
func HTTPError(err error) *echo.HTTPError {
	ae := domain.AsAuthError(err)
	return echo.NewHTTPError(Status(ae.Kind), ae.Error()).SetInternal(ae)
}
