package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/api/apierr"
	"github.com/arenaops/tournament-api/internal/api/middleware"
	"github.com/arenaops/tournament-api/internal/core/domain"
)

// currentUser returns the user attached by the Authenticate middleware.
// Its absence means the route was mounted without the middleware, which
// is reported as unauthenticated rather than trusted.
func currentUser(c echo.Context) (*domain.AuthenticatedUser, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, apierr.HTTPError(domain.ErrUnauthorized)
	}
	return user, nil
}

// bindAndValidate decodes the body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
