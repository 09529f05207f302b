package middleware

import (
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/api/apierr"
	"github.com/arenaops/tournament-api/internal/core/domain"
	"github.com/arenaops/tournament-api/internal/pkg/metrics"
)

// Authorize decides whether user may pass a gate that admits the given roles.
// Roles match exactly; there is no hierarchy between them.
func Authorize(allowed []domain.Role, user *domain.AuthenticatedUser) error {
	if user == nil {
		return domain.ErrUnauthorized
	}
	if !user.Role.Valid() || !slices.Contains(allowed, user.Role) {
		return domain.Forbidden(allowed...)
	}
	return nil
}

// RequireRoles admits only users holding one of roles. It must run after
// Authenticate.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := slices.Clone(roles)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := CurrentUser(c)
			if err := Authorize(allowed, user); err != nil {
				metrics.RequestRejectionsTotal.WithLabelValues(domain.KindOf(err).String()).Inc()
				return apierr.HTTPError(err)
			}
			return next(c)
		}
	}
}

// RequireVerifiedEmail rejects users whose email address is not verified.
func RequireVerifiedEmail() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				metrics.RequestRejectionsTotal.WithLabelValues("unauthorized").Inc()
				return apierr.HTTPError(domain.ErrUnauthorized)
			}
			if !user.EmailVerified {
				metrics.RequestRejectionsTotal.WithLabelValues("email_not_verified").Inc()
				return apierr.HTTPError(domain.ErrEmailNotVerified)
			}
			return next(c)
		}
	}
}
