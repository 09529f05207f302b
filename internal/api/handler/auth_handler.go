package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arenaops/tournament-api/internal/api/apierr"
	"github.com/arenaops/tournament-api/internal/api/middleware"
	"github.com/arenaops/tournament-api/internal/core/domain"
	"github.com/arenaops/tournament-api/internal/core/ports"
)

// AuthHandler exposes the auth facade over HTTP. It only translates between
// JSON and the facade; policy lives in the service.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new player account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res := h.authService.Register(c.Request().Context(), domain.RegistrationData{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
	})
	if res.IsFailure() {
		return apierr.HTTPError(res.Err())
	}

	return c.JSON(http.StatusCreated, toTokenResponse(res.Value()))
}

// Login authenticates with email and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res := h.authService.Login(c.Request().Context(), domain.Credentials{Email: req.Email, Password: req.Password})
	if res.IsFailure() {
		return apierr.HTTPError(res.Err())
	}

	return c.JSON(http.StatusOK, toTokenResponse(res.Value()))
}

// Refresh exchanges a refresh token for a new token pair. Each refresh
// token can be used once.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if res.IsFailure() {
		return apierr.HTTPError(res.Err())
	}

	return c.JSON(http.StatusOK, toTokenResponse(res.Value()))
}

// Logout revokes the caller's access token and, when given, its refresh token.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  logoutRequest  false  "Refresh token to revoke"
// @Success      204
// @Failure      401   {object}  errorResponse
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
	}

	access, _ := middleware.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	res := h.authService.Logout(c.Request().Context(), access, req.RefreshToken)
	if res.IsFailure() {
		return apierr.HTTPError(res.Err())
	}

	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's current account.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	res := h.authService.GetUserByID(c.Request().Context(), user.ID)
	if res.IsFailure() {
		return apierr.HTTPError(res.Err())
	}

	return c.JSON(http.StatusOK, toUserResponse(res.Value()))
}

// UpdateMe changes the caller's name or email.
//
// @Summary      Update current user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateMeRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/me [patch]
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateMeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res := h.authService.UpdateUser(c.Request().Context(), user.ID, req.toDomain())
	if res.IsFailure() {
		return apierr.HTTPError(res.Err())
	}

	return c.JSON(http.StatusOK, toUserResponse(res.Value()))
}
