//go:build integration

package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/core/domain"
)

// TestRoleHeader lets integration suites act as a different role without
// minting a token per role.
const TestRoleHeader = "x-test-role"

// RoleOverride replaces the validated user's role with the one named in
// TestRoleHeader. Unknown role names are ignored.
func RoleOverride(c echo.Context, user domain.AuthenticatedUser) domain.AuthenticatedUser {
	raw := c.Request().Header.Get(TestRoleHeader)
	if raw == "" {
		return user
	}
	role, err := domain.ParseRole(raw)
	if err != nil {
		return user
	}
	user.Role = role
	return user
}
