package router

import (
	"github.com/labstack/echo/v4"

	"github.com/octobees/sift-profiler/internal/auth"
	"github.com/octobees/sift-profiler/internal/config"
	"github.com/octobees/sift-profiler/internal/handler"
	middlewarepkg "github.com/octobees/sift-profiler/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Profiles *handler.ProfilesHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/", handlers.Health.Root)
	e.GET("/healthz", handlers.Health.Healthz)

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	profileRuns := middlewarepkg.NewRateLimit(cfg.RateLimitProfiles, "/generate-profile", "/profiles/create", "/profiles/create-stream")
	limiter := profileRuns.Middleware()
	e.POST("/generate-profile", handlers.Profiles.Generate, limiter)

	// EventSource cannot send headers, so the stream authenticates by query token
	// and reports rejections as an event.
	e.GET("/profiles/create-stream", handlers.Profiles.CreateStream, middlewarepkg.JWTWithConfig(middlewarepkg.JWTConfig{
		Manager:        jwtManager,
		QueryParam:     "token",
		OnUnauthorized: handler.StreamUnauthorized,
	}), profileRuns.MiddlewareWithHandler(handler.StreamRateLimited))

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.GET("/auth/me", handlers.Auth.Me)
	secured.PATCH("/auth/me", handlers.Auth.UpdateMe)

	secured.POST("/profiles/create", handlers.Profiles.Create, limiter)
	secured.GET("/profiles/my-profiles", handlers.Profiles.List)
	secured.GET("/profiles/:id", handlers.Profiles.Get)
	secured.DELETE("/profiles/:id", handlers.Profiles.Delete)
}
