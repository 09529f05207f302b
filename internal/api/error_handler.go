package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/arenaops/tournament-api/internal/api/apierr"
	"github.com/arenaops/tournament-api/internal/core/domain"
)

const genericErrorMessage = "internal server error"

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps auth errors to their HTTP status codes.
//   - Logs infrastructure failures with their cause.
//   - Hides infrastructure causes from clients unless exposeInternal is set.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger, exposeInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c, exposeInternal)

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context, exposeInternal bool) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		var ae *domain.AuthError
		if he.Internal != nil && errors.As(he.Internal, &ae) {
			return resolveAuthError(ae, log, c, exposeInternal)
		}
		if he.Code >= http.StatusInternalServerError {
			logUnexpected(log, c, err)
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ae *domain.AuthError
	if errors.As(err, &ae) {
		return resolveAuthError(ae, log, c, exposeInternal)
	}

	logUnexpected(log, c, err)
	if exposeInternal {
		return http.StatusInternalServerError, err.Error()
	}
	return http.StatusInternalServerError, genericErrorMessage
}

func resolveAuthError(ae *domain.AuthError, log zerolog.Logger, c echo.Context, exposeInternal bool) (int, string) {
	if ae.Kind != domain.KindInfrastructure {
		return apierr.Status(ae.Kind), ae.Error()
	}

	cause := ae.Unwrap()
	logUnexpected(log, c, cause)
	if exposeInternal && cause != nil {
		return http.StatusInternalServerError, cause.Error()
	}
	return http.StatusInternalServerError, genericErrorMessage
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
