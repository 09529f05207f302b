package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/arenaops/tournament-api/docs"
	"github.com/arenaops/tournament-api/internal/api/handler"
	"github.com/arenaops/tournament-api/internal/api/middleware"
	"github.com/arenaops/tournament-api/internal/core/domain"
	"github.com/arenaops/tournament-api/internal/core/ports"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Auth   ports.AuthService
	Checks map[string]handler.Check
	Log    zerolog.Logger
	// Env selects environment-specific behaviour: error detail only under
	// "development" and "test", the role override header in integration
	// builds under "test".
	Env string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log, exposesErrorDetail(deps.Env))

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Auth)
	authenticate := middleware.Authenticate(deps.Auth, authOptions(deps.Env))
	anyRole := middleware.RequireRoles(domain.RoleAdmin, domain.RolePlayer)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	v1 := e.Group("/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout, authenticate)
	auth.GET("/me", authHandler.Me, authenticate, anyRole)
	auth.PATCH("/me", authHandler.UpdateMe, authenticate, anyRole)

	// --- User administration ---
	users := v1.Group("/users", authenticate, adminOnly)
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// exposesErrorDetail reports whether env may show infrastructure causes to
// clients. Unknown or empty environments are treated like production.
func exposesErrorDetail(env string) bool {
	switch env {
	case "development", "test":
		return true
	default:
		return false
	}
}
