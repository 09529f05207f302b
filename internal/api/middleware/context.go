package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/core/domain"
)

// userContextKey is the echo context key holding the authenticated user.
const userContextKey = "auth.user"

type ctxKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user domain.AuthenticatedUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFrom returns the user stored by WithUser. The returned pointer is to a
// copy; mutating it does not affect other readers.
func UserFrom(ctx context.Context) (*domain.AuthenticatedUser, bool) {
	u, ok := ctx.Value(ctxKey{}).(domain.AuthenticatedUser)
	if !ok {
		return nil, false
	}
	return &u, true
}

// CurrentUser returns the user attached by Authenticate, looking at the echo
// context first and the request context second.
func CurrentUser(c echo.Context) (*domain.AuthenticatedUser, bool) {
	if u, ok := c.Get(userContextKey).(domain.AuthenticatedUser); ok {
		return &u, true
	}
	return UserFrom(c.Request().Context())
}

func setUser(c echo.Context, user domain.AuthenticatedUser) {
	c.Set(userContextKey, user)
	c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), user)))
}
