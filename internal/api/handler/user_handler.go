package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/api/apierr"
	"github.com/arenaops/tournament-api/internal/core/ports"
)

// UserHandler serves account administration. Routes are mounted behind
// RequireRoles(ADMIN).
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// Get returns any account by id.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	res := h.authService.GetUserByID(c.Request().Context(), c.Param("id"))
	if res.IsFailure() {
		return apierr.HTTPError(res.Err())
	}
	return c.JSON(http.StatusOK, toUserResponse(res.Value()))
}

// Update changes any account, including its role and verification status.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "User ID"
// @Param        body  body      adminUpdateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req adminUpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res := h.authService.UpdateUser(c.Request().Context(), c.Param("id"), req.toDomain())
	if res.IsFailure() {
		return apierr.HTTPError(res.Err())
	}
	return c.JSON(http.StatusOK, toUserResponse(res.Value()))
}
