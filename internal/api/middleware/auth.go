package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/api/apierr"
	"github.com/arenaops/tournament-api/internal/core/domain"
	"github.com/arenaops/tournament-api/internal/pkg/metrics"
)

// TokenValidator is the slice of the auth facade the middleware needs.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) domain.Result[domain.TokenValidationResponse]
}

// AuthOptions tunes Authenticate.
type AuthOptions struct {
	// Decorate, when set, may rewrite the validated user before it is
	// attached to the request.
	Decorate func(c echo.Context, user domain.AuthenticatedUser) domain.AuthenticatedUser
}

// Authenticate validates the bearer token through the auth facade and
// attaches the resulting user to the request. The next handler runs only for
// valid tokens.
func Authenticate(v TokenValidator, opts AuthOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.RequestRejectionsTotal.WithLabelValues("token_missing").Inc()
				return apierr.HTTPError(domain.ErrTokenMissing)
			}

			res := v.ValidateToken(c.Request().Context(), token)
			if res.IsFailure() {
				metrics.RequestRejectionsTotal.WithLabelValues("validation_error").Inc()
				return apierr.HTTPError(res.Err())
			}

			validation := res.Value()
			if !validation.Valid || validation.User == nil {
				metrics.RequestRejectionsTotal.WithLabelValues("token_invalid").Inc()
				return apierr.HTTPError(domain.ErrInvalidToken)
			}

			user := *validation.User
			if opts.Decorate != nil {
				user = opts.Decorate(c, user)
			}
			setUser(c, user)

			return next(c)
		}
	}
}

// BearerToken extracts the token from an Authorization header value of the
// form "Bearer <token>". The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
